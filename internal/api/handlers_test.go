// handlers_test.go - Tests for the spell, mapping, config and Warcraft Logs handlers
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/testutil"
	"github.com/mdt-generator/backend/internal/wcl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWarcraftLogs is a canned WarcraftLogsClient
type mockWarcraftLogs struct {
	token     *wcl.Token
	tokenErr  error
	fights    []models.Fight
	fightsErr error
	lastCode  string
}

func (m *mockWarcraftLogs) Token(ctx context.Context) (*wcl.Token, error) {
	return m.token, m.tokenErr
}

func (m *mockWarcraftLogs) FetchFights(ctx context.Context, code string) ([]models.Fight, error) {
	m.lastCode = code
	return m.fights, m.fightsErr
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// assertAPIError checks that err is an APIError with the given status and code
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, code, apiErr.Code)
}

func TestSpellHandlers(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStorage()
	h := NewSpellHandler(store)

	// 1. Add by string ID
	rec := httptest.NewRecorder()
	c := e.NewContext(newJSONRequest(http.MethodPost, "/api/spells", `{"id":"740","name":"Tranq"}`), rec)
	require.NoError(t, h.HandleAddSpell(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"id":"740","name":"Tranq"}`, rec.Body.String())

	// 2. Add by numeric ID without a name
	rec = httptest.NewRecorder()
	c = e.NewContext(newJSONRequest(http.MethodPost, "/api/spells", `{"id":64843}`), rec)
	require.NoError(t, h.HandleAddSpell(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// 3. List keeps insertion order
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/spells", nil), rec)
	require.NoError(t, h.HandleListSpells(c))
	var spells []models.SpellFilter
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spells))
	require.Len(t, spells, 2)
	assert.Equal(t, "740", spells[0].ID)
	assert.Equal(t, "64843", spells[1].ID)
	assert.Equal(t, "", spells[1].Name)

	// 4. Remove one
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("740")
	require.NoError(t, h.HandleRemoveSpell(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.SpellCount())

	// 5. Removing again is a 404
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("740")
	assertAPIError(t, h.HandleRemoveSpell(c), http.StatusNotFound, "NOT_FOUND")

	// 6. Clear
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/spells", nil), rec)
	require.NoError(t, h.HandleClearSpells(c))
	assert.Equal(t, 0, store.SpellCount())
}

func TestSpellHandlers_Validation(t *testing.T) {
	e := echo.New()
	h := NewSpellHandler(testutil.NewMockStorage())

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing id", `{"name":"Tranq"}`, "VALIDATION_ERROR"},
		{"blank id", `{"id":"  "}`, "VALIDATION_ERROR"},
		{"malformed body", `{"id":`, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(newJSONRequest(http.MethodPost, "/api/spells", tt.body), httptest.NewRecorder())
			assertAPIError(t, h.HandleAddSpell(c), http.StatusBadRequest, tt.code)
		})
	}
}

func TestSpellHandlers_StoreFailure(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStorage()
	store.Err = errors.New("disk on fire")
	h := NewSpellHandler(store)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/spells", nil), httptest.NewRecorder())
	assertAPIError(t, h.HandleListSpells(c), http.StatusInternalServerError, "INTERNAL_ERROR")
}

func TestClassMappingHandlers(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStorage()
	h := NewClassMappingHandler(store)

	rec := httptest.NewRecorder()
	c := e.NewContext(newJSONRequest(http.MethodPost, "/api/class-mappings", `{"className":"Death Knight","playerName":"Bonechill"}`), rec)
	require.NoError(t, h.HandleSetClassMapping(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Upsert replaces the player
	c = e.NewContext(newJSONRequest(http.MethodPost, "/api/class-mappings", `{"className":"Death Knight","playerName":"Frostbyte"}`), httptest.NewRecorder())
	require.NoError(t, h.HandleSetClassMapping(c))

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/class-mappings", nil), rec)
	require.NoError(t, h.HandleListClassMappings(c))
	assert.JSONEq(t, `[{"className":"Death Knight","playerName":"Frostbyte"}]`, rec.Body.String())

	// Path parameters arrive escaped
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("className")
	c.SetParamValues("Death%20Knight")
	require.NoError(t, h.HandleRemoveClassMapping(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("className")
	c.SetParamValues("Druid")
	assertAPIError(t, h.HandleRemoveClassMapping(c), http.StatusNotFound, "NOT_FOUND")

	c = e.NewContext(newJSONRequest(http.MethodPost, "/api/class-mappings", `{"className":"Druid"}`), httptest.NewRecorder())
	assertAPIError(t, h.HandleSetClassMapping(c), http.StatusBadRequest, "VALIDATION_ERROR")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/class-mappings", nil), rec)
	require.NoError(t, h.HandleClearClassMappings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConfigHandler(t *testing.T) {
	e := echo.New()
	h := NewConfigHandler(ClientConfig{DBMode: "local", BasePath: "/mdt", GroupWindowSeconds: 5, FilterEnabled: true})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/config", nil), rec)
	require.NoError(t, h.HandleGetConfig(c))
	assert.JSONEq(t, `{"dbMode":"local","basePath":"/mdt","groupWindowSeconds":5,"filterEnabled":true}`, rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	h := NewHealthHandler("1.2.3", nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)
	require.NoError(t, h.HandleHealth(c))
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3","jobs":0}`, rec.Body.String())

	jobs := newMockJobManager()
	jobs.StartJob(wcl.ReportRef{Code: "aBc123", FightID: 7})
	h = NewHealthHandler("1.2.3", jobs)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)
	require.NoError(t, h.HandleHealth(c))
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3","jobs":1}`, rec.Body.String())
}

func TestWarcraftLogsHandler_Token(t *testing.T) {
	e := echo.New()
	expires := "2026-12-01T00:00:00Z"
	client := &mockWarcraftLogs{token: &wcl.Token{AccessToken: "abc", ExpiresAt: &expires}}
	h := NewWarcraftLogsHandler(client)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/warcraftlogs-token", nil), rec)
	require.NoError(t, h.HandleGetToken(c))
	assert.JSONEq(t, `{"token":"abc","expires_at":"2026-12-01T00:00:00Z"}`, rec.Body.String())

	client.token, client.tokenErr = nil, wcl.ErrNoToken
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/warcraftlogs-token", nil), httptest.NewRecorder())
	assertAPIError(t, h.HandleGetToken(c), http.StatusNotFound, "NO_TOKEN")
}

func TestWarcraftLogsHandler_Fights(t *testing.T) {
	e := echo.New()
	client := &mockWarcraftLogs{fights: []models.Fight{{ID: 3, Name: "Council", StartTime: 100, EndTime: 2000}}}
	h := NewWarcraftLogsHandler(client)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("code")
	c.SetParamValues("aBc123")
	require.NoError(t, h.HandleGetFights(c))
	assert.Equal(t, "aBc123", client.lastCode)
	assert.Contains(t, rec.Body.String(), `"name":"Council"`)

	client.fightsErr = &wcl.GraphQLError{Message: "This report does not exist."}
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("code")
	c.SetParamValues("aBc123")
	assertAPIError(t, h.HandleGetFights(c), http.StatusBadGateway, "UPSTREAM_ERROR")
}
