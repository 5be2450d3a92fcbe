// handlers_convert.go - Cast listing, MRT note and Viserio conversion handlers
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/note"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/mdt-generator/backend/internal/storage"
	"github.com/mdt-generator/backend/internal/viserio"
)

// ConvertOptions holds the server-wide conversion defaults
type ConvertOptions struct {
	GroupWindow   int
	FilterEnabled bool
}

type formatCastDataRequest struct {
	CastData      *models.CastData `json:"castData"`
	FilterEnabled *bool            `json:"filterEnabled"`
}

type convertToNoteRequest struct {
	CastListing   string `json:"castListing"`
	WindowSeconds int    `json:"windowSeconds"`
}

type convertToViserioRequest struct {
	MRTNotes string `json:"mrtNotes"`
}

type convertRequest struct {
	Text          string `json:"text"`
	Format        string `json:"format,omitempty"` // grammar name; detected when empty
	WindowSeconds int    `json:"windowSeconds"`
}

type decodeViserioRequest struct {
	ViserioData string `json:"viserioData"`
}

// viserioResponse is returned by the JSON Viserio endpoints
type viserioResponse struct {
	ViserioData string                 `json:"viserioData"`
	Players     []models.ViserioPlayer `json:"players"`
	Skipped     []viserio.Skipped      `json:"skipped"`
}

// ConvertHandlerImpl implements the ConvertHandler interface
type ConvertHandlerImpl struct {
	store   storage.Store
	ruleset *rules.Ruleset
	encoder *viserio.Encoder
	opts    ConvertOptions
}

// NewConvertHandler creates a new conversion handler
func NewConvertHandler(store storage.Store, rs *rules.Ruleset, encoder *viserio.Encoder, opts ConvertOptions) ConvertHandler {
	if opts.GroupWindow <= 0 {
		opts.GroupWindow = note.DefaultWindowSeconds
	}
	return &ConvertHandlerImpl{
		store:   store,
		ruleset: rs,
		encoder: encoder,
		opts:    opts,
	}
}

// HandleFormatCastData renders fetched cast events as a cast listing
func (h *ConvertHandlerImpl) HandleFormatCastData(c echo.Context) error {
	var req formatCastDataRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	filterEnabled := h.opts.FilterEnabled
	if req.FilterEnabled != nil {
		filterEnabled = *req.FilterEnabled
	}

	opts := note.FormatOptions{FilterEnabled: filterEnabled}
	filters, err := h.store.ListSpells(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to load spell filter", err)
	}
	opts.Filters = filters

	return c.JSON(http.StatusOK, map[string]string{
		"castListing": note.FormatCastData(req.CastData, opts),
	})
}

// HandleConvertToNote groups a cast listing into an MRT note
func (h *ConvertHandlerImpl) HandleConvertToNote(c echo.Context) error {
	var req convertToNoteRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.CastListing) == "" {
		return NewValidationError("castListing")
	}

	mrt, err := h.toNote(c.Request().Context(), req.CastListing, req.WindowSeconds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"note": mrt})
}

// HandleConvertToViserio encodes an MRT note for the planner
func (h *ConvertHandlerImpl) HandleConvertToViserio(c echo.Context) error {
	result, err := h.toViserio(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viserioResponse{
		ViserioData: result.Data,
		Players:     result.Players,
		Skipped:     result.Skipped,
	})
}

// HandleConvertToViserioMsgpack returns the raw MessagePack payload without base64
func (h *ConvertHandlerImpl) HandleConvertToViserioMsgpack(c echo.Context) error {
	result, err := h.toViserio(c)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", result.Raw)
}

// HandleConvert detects the input format and runs the next pipeline stage:
// cast listings become notes, notes become Viserio strings.
func (h *ConvertHandlerImpl) HandleConvert(c echo.Context) error {
	var req convertRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return NewValidationError("text")
	}

	grammar, err := parser.Resolve(req.Format, req.Text)
	if err != nil {
		return NewBadRequestError("unrecognised input format", err)
	}

	switch grammar.Name() {
	case parser.GrammarCastListing:
		mrt, err := h.toNote(c.Request().Context(), req.Text, req.WindowSeconds)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]string{
			"format": grammar.Name(),
			"note":   mrt,
		})
	default:
		result, err := h.encoder.Convert(req.Text)
		if err != nil {
			return FromError(err, "conversion failed")
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"format":      grammar.Name(),
			"viserioData": result.Data,
			"players":     result.Players,
			"skipped":     result.Skipped,
		})
	}
}

// HandleDecodeViserio expands a planner string back into players
func (h *ConvertHandlerImpl) HandleDecodeViserio(c echo.Context) error {
	var req decodeViserioRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.ViserioData) == "" {
		return NewValidationError("viserioData")
	}

	players, err := viserio.Decode(strings.TrimSpace(req.ViserioData))
	if err != nil {
		return NewBadRequestError("invalid Viserio data", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"players": players})
}

func (h *ConvertHandlerImpl) toNote(ctx context.Context, listing string, window int) (string, error) {
	if window <= 0 {
		window = h.opts.GroupWindow
	}

	mappings, err := storage.ClassMappingSnapshot(ctx, h.store)
	if err != nil {
		return "", NewInternalError("failed to load class mappings", err)
	}

	resolver := rules.NewResolver(h.ruleset, mappings)
	mrt, err := note.ConvertToNote(listing, resolver, window)
	if err != nil {
		return "", FromError(err, "conversion failed")
	}
	return mrt, nil
}

func (h *ConvertHandlerImpl) toViserio(c echo.Context) (*viserio.Result, error) {
	var req convertToViserioRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.MRTNotes) == "" {
		return nil, NewValidationError("mrtNotes")
	}

	result, err := h.encoder.Convert(req.MRTNotes)
	if err != nil {
		return nil, FromError(err, "conversion failed")
	}
	if len(result.Skipped) > 0 {
		logger.Info("[Convert] %d note entries skipped without metadata", len(result.Skipped))
	}
	return result, nil
}
