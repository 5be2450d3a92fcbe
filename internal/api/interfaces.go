// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/fetch"
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/wcl"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ConfigHandler reports client-facing settings
type ConfigHandler interface {
	HandleGetConfig(c echo.Context) error
}

// SpellHandler manages the spell filter
type SpellHandler interface {
	HandleListSpells(c echo.Context) error
	HandleAddSpell(c echo.Context) error
	HandleRemoveSpell(c echo.Context) error
	HandleClearSpells(c echo.Context) error
}

// ClassMappingHandler manages class-to-player mappings
type ClassMappingHandler interface {
	HandleListClassMappings(c echo.Context) error
	HandleSetClassMapping(c echo.Context) error
	HandleRemoveClassMapping(c echo.Context) error
	HandleClearClassMappings(c echo.Context) error
}

// WarcraftLogsHandler proxies token and fight lookups
type WarcraftLogsHandler interface {
	HandleGetToken(c echo.Context) error
	HandleGetFights(c echo.Context) error
}

// FetchHandler runs and reports fetch jobs
type FetchHandler interface {
	HandleStartFetch(c echo.Context) error
	HandleGetFetchJob(c echo.Context) error
	HandleFetchJobStream(c echo.Context) error
}

// ConvertHandler runs the text conversions
type ConvertHandler interface {
	HandleFormatCastData(c echo.Context) error
	HandleConvertToNote(c echo.Context) error
	HandleConvertToViserio(c echo.Context) error
	HandleConvertToViserioMsgpack(c echo.Context) error
	HandleConvert(c echo.Context) error
	HandleDecodeViserio(c echo.Context) error
}

// WarcraftLogsClient defines what handlers need from the API client.
// This allows mocking in tests
type WarcraftLogsClient interface {
	Token(ctx context.Context) (*wcl.Token, error)
	FetchFights(ctx context.Context, code string) ([]models.Fight, error)
}

// FetchJobManager defines what handlers need from the job manager
type FetchJobManager interface {
	StartJob(ref wcl.ReportRef) fetch.Job
	GetJob(id string) (fetch.Job, bool)
	JobCount() int
}
