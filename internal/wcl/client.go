// Package wcl is a minimal client for the Warcraft Logs v2 GraphQL API:
// token retrieval, fight listing and paginated cast events.
package wcl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/models"
)

// ErrNoToken is returned when neither a static token nor client credentials are configured.
var ErrNoToken = errors.New("no Warcraft Logs token available")

// ErrFightNotFound is returned when the requested fight is not in the report.
var ErrFightNotFound = errors.New("fight not found")

// StatusError is a non-retryable HTTP failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.StatusCode, e.Body)
}

// GraphQLError is the first error message returned by the API.
type GraphQLError struct {
	Message string
}

func (e *GraphQLError) Error() string { return e.Message }

// Config holds client settings.
type Config struct {
	APIURL         string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Token          string // static token, wins over client credentials
	TokenExpires   string
	Timeout        time.Duration
	MaxPages       int
	PageLimit      int
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Token is an access token as served to clients.
type Token struct {
	AccessToken string  `json:"token"`
	ExpiresAt   *string `json:"expires_at"`

	expiry time.Time // zero for static tokens
}

// Client talks to the Warcraft Logs API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu    sync.Mutex
	token *Token
}

// NewClient creates a client, filling zero values with defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 5000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Token returns the static token or a cached client-credentials token.
func (c *Client) Token(ctx context.Context) (*Token, error) {
	if c.cfg.Token != "" {
		t := &Token{AccessToken: c.cfg.Token}
		if c.cfg.TokenExpires != "" {
			expires := c.cfg.TokenExpires
			t.ExpiresAt = &expires
		}
		return t, nil
	}
	if c.cfg.ClientID == "" {
		return nil, ErrNoToken
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && time.Now().Before(c.token.expiry) {
		return c.token, nil
	}

	t, err := c.requestToken(ctx)
	if err != nil {
		return nil, err
	}
	c.token = t
	return t, nil
}

func (c *Client) requestToken(ctx context.Context) (*Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	body := []byte(form.Encode())

	resp, err := c.doRequest(ctx, c.cfg.TokenURL, body, func(req *http.Request) {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	})
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response without access_token")
	}

	expiry := time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	expires := expiry.UTC().Format(time.RFC3339)
	logger.Info("[WCL] Obtained access token, expires %s", expires)

	return &Token{
		AccessToken: tr.AccessToken,
		ExpiresAt:   &expires,
		// refresh a minute early
		expiry: expiry.Add(-time.Minute),
	}, nil
}

const fightsQuery = `query Fights($code: String!) {
  reportData {
    report(code: $code) {
      title
      startTime
      fights { id name startTime endTime encounterID }
    }
  }
}`

const castsQuery = `query Casts($code: String!, $fightIDs: [Int]!, $startTime: Float!, $endTime: Float!, $limit: Int!, $withMaster: Boolean!) {
  reportData {
    report(code: $code) {
      masterData @include(if: $withMaster) {
        abilities { gameID name }
      }
      events(fightIDs: $fightIDs, dataType: Casts, limit: $limit, startTime: $startTime, endTime: $endTime) {
        data
        nextPageTimestamp
      }
    }
  }
}`

type reportInfo struct {
	Title     string         `json:"title"`
	StartTime int64          `json:"startTime"`
	Fights    []models.Fight `json:"fights"`
}

// FetchFights lists the fights of a report.
func (c *Client) FetchFights(ctx context.Context, code string) ([]models.Fight, error) {
	report, err := c.fetchReport(ctx, code)
	if err != nil {
		return nil, err
	}
	return report.Fights, nil
}

func (c *Client) fetchReport(ctx context.Context, code string) (*reportInfo, error) {
	var data struct {
		ReportData struct {
			Report *reportInfo `json:"report"`
		} `json:"reportData"`
	}
	if err := c.query(ctx, fightsQuery, map[string]any{"code": code}, &data); err != nil {
		return nil, err
	}
	if data.ReportData.Report == nil {
		return nil, fmt.Errorf("report %s not found", code)
	}
	return data.ReportData.Report, nil
}

// FindFight resolves a fight reference within a report.
func (c *Client) FindFight(ctx context.Context, ref ReportRef) (*models.Fight, error) {
	report, err := c.fetchReport(ctx, ref.Code)
	if err != nil {
		return nil, err
	}
	fight, err := pickFight(report.Fights, ref)
	if err != nil {
		return nil, err
	}
	return fight, nil
}

func pickFight(fights []models.Fight, ref ReportRef) (*models.Fight, error) {
	if ref.Last {
		if len(fights) == 0 {
			return nil, fmt.Errorf("report %s has no fights: %w", ref.Code, ErrFightNotFound)
		}
		f := fights[len(fights)-1]
		return &f, nil
	}
	for i := range fights {
		if fights[i].ID == ref.FightID {
			f := fights[i]
			return &f, nil
		}
	}
	return nil, fmt.Errorf("fight with ID %d: %w", ref.FightID, ErrFightNotFound)
}

type rawCastEvent struct {
	Timestamp     int64  `json:"timestamp"`
	Type          string `json:"type"`
	SourceID      int    `json:"sourceID"`
	AbilityGameID int    `json:"abilityGameID"`
}

// PageFunc is called after each page with the page number and event total so far.
type PageFunc func(page, totalEvents int)

// FetchCastData fetches up to MaxPages pages of cast events for one fight,
// following nextPageTimestamp. HasMoreEvents is set when the page cap stops
// the walk early.
func (c *Client) FetchCastData(ctx context.Context, ref ReportRef, onPage PageFunc) (*models.CastData, error) {
	report, err := c.fetchReport(ctx, ref.Code)
	if err != nil {
		return nil, err
	}
	fight, err := pickFight(report.Fights, ref)
	if err != nil {
		return nil, err
	}

	abilityNames := make(map[int]string)
	events := make([]models.CastEvent, 0)
	start := fight.StartTime
	hasMore := true
	pages := 0

	for hasMore && pages < c.cfg.MaxPages {
		logger.Debug("[WCL] Fetching page %d of cast data for %s fight %d", pages+1, ref.Code, fight.ID)

		vars := map[string]any{
			"code":       ref.Code,
			"fightIDs":   []int{fight.ID},
			"startTime":  start,
			"endTime":    fight.EndTime,
			"limit":      c.cfg.PageLimit,
			"withMaster": pages == 0,
		}
		var data struct {
			ReportData struct {
				Report struct {
					MasterData *struct {
						Abilities []struct {
							GameID int    `json:"gameID"`
							Name   string `json:"name"`
						} `json:"abilities"`
					} `json:"masterData"`
					Events struct {
						Data              []rawCastEvent `json:"data"`
						NextPageTimestamp *float64       `json:"nextPageTimestamp"`
					} `json:"events"`
				} `json:"report"`
			} `json:"reportData"`
		}
		if err := c.query(ctx, castsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("page %d: %w", pages+1, err)
		}

		r := data.ReportData.Report
		if r.MasterData != nil {
			for _, a := range r.MasterData.Abilities {
				abilityNames[a.GameID] = a.Name
			}
		}
		for _, ev := range r.Events.Data {
			events = append(events, models.CastEvent{
				Timestamp:     ev.Timestamp,
				Type:          ev.Type,
				SourceID:      ev.SourceID,
				AbilityGameID: ev.AbilityGameID,
				AbilityName:   abilityNames[ev.AbilityGameID],
			})
		}

		pages++
		hasMore = r.Events.NextPageTimestamp != nil
		if hasMore {
			start = int64(*r.Events.NextPageTimestamp)
		}
		if onPage != nil {
			onPage(pages, len(events))
		}
	}

	logger.Info("[WCL] Fetched %d pages with %d cast events for %s fight %d", pages, len(events), ref.Code, fight.ID)

	return &models.CastData{
		ReportTitle:     report.Title,
		ReportStartTime: report.StartTime,
		Fight:           *fight,
		CastEvents:      events,
		HasMoreEvents:   hasMore,
		PagesRetrieved:  pages,
	}, nil
}

// query posts a GraphQL request and decodes data into out.
func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, c.cfg.APIURL, body, func(req *http.Request) {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &GraphQLError{Message: envelope.Errors[0].Message}
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("empty response data")
	}
	return json.Unmarshal(envelope.Data, out)
}

// doRequest POSTs body with linear-backoff retry on transport errors and 5xx.
// Any other non-2xx status fails immediately.
func (c *Client) doRequest(ctx context.Context, urlStr string, body []byte, prepare func(*http.Request)) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.cfg.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelayBase * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		prepare(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			logger.Warn("[WCL] Request attempt %d failed: %v", i+1, err)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			logger.Warn("[WCL] Request attempt %d failed: %v", i+1, lastErr)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
