// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/mdt-generator/backend/internal/storage"
	"github.com/mdt-generator/backend/internal/viserio"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store        storage.Store
	Ruleset      *rules.Ruleset
	Encoder      *viserio.Encoder
	WarcraftLogs WarcraftLogsClient
	FetchMgr     FetchJobManager
	Convert      ConvertOptions
	ClientConfig ClientConfig
	Version      string
}

// Handlers holds all handler instances
type Handlers struct {
	Health       HealthHandler
	Config       ConfigHandler
	Spell        SpellHandler
	ClassMapping ClassMappingHandler
	WarcraftLogs WarcraftLogsHandler
	Fetch        FetchHandler
	Convert      ConvertHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	encoder := deps.Encoder
	if encoder == nil {
		encoder = viserio.NewEncoder(deps.Ruleset, nil)
	}
	return &Handlers{
		Health:       NewHealthHandler(deps.Version, deps.FetchMgr),
		Config:       NewConfigHandler(deps.ClientConfig),
		Spell:        NewSpellHandler(deps.Store),
		ClassMapping: NewClassMappingHandler(deps.Store),
		WarcraftLogs: NewWarcraftLogsHandler(deps.WarcraftLogs),
		Fetch:        NewFetchHandler(deps.FetchMgr),
		Convert:      NewConvertHandler(deps.Store, deps.Ruleset, encoder, deps.Convert),
	}
}

// RegisterRoutes registers all API routes under basePath ("" or "/mdt")
func RegisterRoutes(e *echo.Echo, basePath string, handlers *Handlers) {
	api := e.Group(basePath + "/api")

	// Health and client config
	api.GET("/health", handlers.Health.HandleHealth)
	api.GET("/config", handlers.Config.HandleGetConfig)

	// Spell filter routes
	spells := api.Group("/spells")
	spells.GET("", handlers.Spell.HandleListSpells)
	spells.POST("", handlers.Spell.HandleAddSpell)
	spells.DELETE("", handlers.Spell.HandleClearSpells)
	spells.DELETE("/:id", handlers.Spell.HandleRemoveSpell)

	// Class mapping routes
	mappings := api.Group("/class-mappings")
	mappings.GET("", handlers.ClassMapping.HandleListClassMappings)
	mappings.POST("", handlers.ClassMapping.HandleSetClassMapping)
	mappings.DELETE("", handlers.ClassMapping.HandleClearClassMappings)
	mappings.DELETE("/:className", handlers.ClassMapping.HandleRemoveClassMapping)

	// Warcraft Logs routes
	api.GET("/warcraftlogs-token", handlers.WarcraftLogs.HandleGetToken)
	api.GET("/reports/:code/fights", handlers.WarcraftLogs.HandleGetFights)

	// Fetch job routes
	fetch := api.Group("/fetch")
	fetch.POST("", handlers.Fetch.HandleStartFetch)
	fetch.GET("/:jobId", handlers.Fetch.HandleGetFetchJob)
	fetch.GET("/:jobId/status", handlers.Fetch.HandleFetchJobStream)

	// Conversion routes
	api.POST("/format-cast-data", handlers.Convert.HandleFormatCastData)
	api.POST("/convert-to-note", handlers.Convert.HandleConvertToNote)
	api.POST("/convert-to-viserio", handlers.Convert.HandleConvertToViserio)
	api.POST("/convert-to-viserio/msgpack", handlers.Convert.HandleConvertToViserioMsgpack)
	api.POST("/convert", handlers.Convert.HandleConvert)
	api.POST("/viserio/decode", handlers.Convert.HandleDecodeViserio)
}

// IsStreamPath reports whether a request path is a long-lived SSE stream.
// Timeout and gzip middleware skip these.
func IsStreamPath(path string) bool {
	return strings.Contains(path, "/api/fetch/") && strings.HasSuffix(path, "/status")
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
