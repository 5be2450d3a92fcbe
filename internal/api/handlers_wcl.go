// handlers_wcl.go - Warcraft Logs proxy handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/wcl"
)

// WarcraftLogsHandlerImpl implements the WarcraftLogsHandler interface
type WarcraftLogsHandlerImpl struct {
	client WarcraftLogsClient
}

// NewWarcraftLogsHandler creates a new Warcraft Logs handler
func NewWarcraftLogsHandler(client WarcraftLogsClient) WarcraftLogsHandler {
	return &WarcraftLogsHandlerImpl{client: client}
}

// HandleGetToken returns the API token for browser-side requests
func (h *WarcraftLogsHandlerImpl) HandleGetToken(c echo.Context) error {
	token, err := h.client.Token(c.Request().Context())
	if err != nil {
		return FromError(err, "failed to obtain token")
	}
	return c.JSON(http.StatusOK, token)
}

// HandleGetFights lists the fights of a report. The code may also be a full report URL.
func (h *WarcraftLogsHandlerImpl) HandleGetFights(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return NewValidationError("code")
	}
	ref, err := wcl.ParseReportURL(code)
	if err != nil {
		return FromError(err, "invalid report code")
	}

	fights, err := h.client.FetchFights(c.Request().Context(), ref.Code)
	if err != nil {
		return FromError(err, "failed to fetch fights")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reportCode": ref.Code,
		"fights":     fights,
	})
}
