// handlers_spells.go - Spell filter and class mapping handlers
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/storage"
)

// spellID accepts both "740" and 740 in request bodies.
type spellID string

func (s *spellID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = spellID(str)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = spellID(n.String())
	return nil
}

type addSpellRequest struct {
	ID   spellID `json:"id"`
	Name string  `json:"name"`
}

type classMappingRequest struct {
	ClassName  string `json:"className"`
	PlayerName string `json:"playerName"`
}

// SpellHandlerImpl implements the SpellHandler interface
type SpellHandlerImpl struct {
	store storage.Store
}

// NewSpellHandler creates a new spell filter handler
func NewSpellHandler(store storage.Store) SpellHandler {
	return &SpellHandlerImpl{store: store}
}

// HandleListSpells returns the spell filter in insertion order
func (h *SpellHandlerImpl) HandleListSpells(c echo.Context) error {
	spells, err := h.store.ListSpells(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list spells", err)
	}
	return c.JSON(http.StatusOK, spells)
}

// HandleAddSpell adds a spell to the filter, replacing the name if it exists
func (h *SpellHandlerImpl) HandleAddSpell(c echo.Context) error {
	var req addSpellRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	id := strings.TrimSpace(string(req.ID))
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.AddSpell(c.Request().Context(), id, req.Name); err != nil {
		return NewInternalError("failed to add spell", err)
	}
	logger.Debug("[Spells] Added %s (%q)", id, req.Name)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      id,
		"name":    req.Name,
	})
}

// HandleRemoveSpell removes one spell from the filter
func (h *SpellHandlerImpl) HandleRemoveSpell(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.RemoveSpell(c.Request().Context(), id); err != nil {
		return FromError(err, "spell not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// HandleClearSpells empties the filter
func (h *SpellHandlerImpl) HandleClearSpells(c echo.Context) error {
	if err := h.store.ClearSpells(c.Request().Context()); err != nil {
		return NewInternalError("failed to clear spells", err)
	}
	logger.Info("[Spells] Filter cleared")
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ClassMappingHandlerImpl implements the ClassMappingHandler interface
type ClassMappingHandlerImpl struct {
	store storage.Store
}

// NewClassMappingHandler creates a new class mapping handler
func NewClassMappingHandler(store storage.Store) ClassMappingHandler {
	return &ClassMappingHandlerImpl{store: store}
}

// HandleListClassMappings returns all class mappings
func (h *ClassMappingHandlerImpl) HandleListClassMappings(c echo.Context) error {
	mappings, err := h.store.ListClassMappings(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list class mappings", err)
	}
	return c.JSON(http.StatusOK, mappings)
}

// HandleSetClassMapping assigns a player to a class
func (h *ClassMappingHandlerImpl) HandleSetClassMapping(c echo.Context) error {
	var req classMappingRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	req.ClassName = strings.TrimSpace(req.ClassName)
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.ClassName == "" {
		return NewValidationError("className")
	}
	if req.PlayerName == "" {
		return NewValidationError("playerName")
	}

	if err := h.store.SetClassMapping(c.Request().Context(), req.ClassName, req.PlayerName); err != nil {
		return NewInternalError("failed to add class mapping", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":    true,
		"className":  req.ClassName,
		"playerName": req.PlayerName,
	})
}

// HandleRemoveClassMapping removes the mapping for one class
func (h *ClassMappingHandlerImpl) HandleRemoveClassMapping(c echo.Context) error {
	className, err := url.PathUnescape(c.Param("className"))
	if err != nil {
		return NewBadRequestError("invalid class name", err)
	}
	if className == "" {
		return NewValidationError("className")
	}

	if err := h.store.RemoveClassMapping(c.Request().Context(), className); err != nil {
		return FromError(err, "class mapping not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// HandleClearClassMappings removes every mapping
func (h *ClassMappingHandlerImpl) HandleClearClassMappings(c echo.Context) error {
	if err := h.store.ClearClassMappings(c.Request().Context()); err != nil {
		return NewInternalError("failed to clear class mappings", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
