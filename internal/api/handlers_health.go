// handlers_health.go - Health check and config handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	jobs    FetchJobManager
}

// NewHealthHandler creates a new health handler. jobs may be nil.
func NewHealthHandler(version string, jobs FetchJobManager) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		jobs:    jobs,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	jobCount := 0
	if h.jobs != nil {
		jobCount = h.jobs.JobCount()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"jobs":    jobCount,
	})
}

// ClientConfig is what GET /api/config reports
type ClientConfig struct {
	DBMode             string `json:"dbMode"`
	BasePath           string `json:"basePath"`
	GroupWindowSeconds int    `json:"groupWindowSeconds"`
	FilterEnabled      bool   `json:"filterEnabled"`
}

// ConfigHandlerImpl implements the ConfigHandler interface
type ConfigHandlerImpl struct {
	cfg ClientConfig
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg ClientConfig) ConfigHandler {
	return &ConfigHandlerImpl{cfg: cfg}
}

// HandleGetConfig returns the storage mode and conversion settings
func (h *ConfigHandlerImpl) HandleGetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cfg)
}
