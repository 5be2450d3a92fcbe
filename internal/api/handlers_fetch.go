// handlers_fetch.go - Async fetch job handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/wcl"
)

// streamTimeout bounds how long a status stream stays open
var streamTimeout = 5 * time.Minute

type startFetchRequest struct {
	URL     string `json:"url"`
	FightID int    `json:"fightId"`
}

// FetchHandlerImpl implements the FetchHandler interface
type FetchHandlerImpl struct {
	jobs FetchJobManager
}

// NewFetchHandler creates a new fetch job handler
func NewFetchHandler(jobs FetchJobManager) FetchHandler {
	return &FetchHandlerImpl{jobs: jobs}
}

// HandleStartFetch starts fetching one fight in the background.
// Returns immediately with the job; progress is read from the status stream.
func (h *FetchHandlerImpl) HandleStartFetch(c echo.Context) error {
	var req startFetchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.URL == "" {
		return NewValidationError("url")
	}

	ref, err := wcl.ParseReportURL(req.URL)
	if err != nil {
		return FromError(err, "invalid report URL")
	}
	if req.FightID > 0 {
		ref.FightID = req.FightID
		ref.Last = false
	}
	if !ref.HasFight() {
		return NewValidationError("fightId")
	}

	job := h.jobs.StartJob(ref)
	return c.JSON(http.StatusAccepted, job)
}

// HandleGetFetchJob returns the current state of a job
func (h *FetchHandlerImpl) HandleGetFetchJob(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.jobs.GetJob(id)
	if !ok {
		return NewNotFoundError("fetch job", id)
	}
	return c.JSON(http.StatusOK, job)
}

// HandleFetchJobStream streams job progress via SSE until the job finishes
func (h *FetchHandlerImpl) HandleFetchJobStream(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	job, ok := h.jobs.GetJob(id)
	if !ok {
		sendSSEError(c, "job not found")
		return nil
	}
	sendSSEData(c, job)
	if job.Status.Done() {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(streamTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil

		case <-ticker.C:
			job, ok := h.jobs.GetJob(id)
			if !ok {
				sendSSEError(c, "job not found")
				return nil
			}

			sendSSEData(c, job)

			if job.Status.Done() {
				return nil
			}

		case <-timeout.C:
			sendSSEError(c, "stream timeout")
			return nil
		}
	}
}

func sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func sendSSEError(c echo.Context, message string) {
	sendSSEData(c, map[string]string{"error": message})
}
