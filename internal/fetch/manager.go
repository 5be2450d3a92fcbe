// Package fetch runs asynchronous cast-data fetch jobs: download from the
// combat-log API, render the cast listing, then convert it to an MRT note.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mdt-generator/backend/internal/logger"
	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/note"
	"github.com/mdt-generator/backend/internal/rules"
	"github.com/mdt-generator/backend/internal/storage"
	"github.com/mdt-generator/backend/internal/wcl"
)

// Status represents the fetch job status.
type Status string

const (
	StatusFetching   Status = "fetching"
	StatusFormatting Status = "formatting"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Done reports whether the job reached a terminal state.
func (s Status) Done() bool {
	return s == StatusComplete || s == StatusError
}

// Job represents an async fetch job.
type Job struct {
	ID            string     `json:"id"`
	ReportCode    string     `json:"reportCode"`
	FightID       int        `json:"fightId,omitempty"`
	Status        Status     `json:"status"`
	Progress      float64    `json:"progress"`
	Stage         string     `json:"stage"`
	Pages         int        `json:"pages"`
	Events        int        `json:"events"`
	HasMoreEvents bool       `json:"hasMoreEvents"`
	CastListing   string     `json:"castListing,omitempty"`
	Note          string     `json:"note,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Source fetches cast data for a fight.
type Source interface {
	FetchCastData(ctx context.Context, ref wcl.ReportRef, onPage wcl.PageFunc) (*models.CastData, error)
}

// Options tune how job output is rendered.
type Options struct {
	MaxPages      int // used for progress only
	GroupWindow   int
	FilterEnabled bool
}

// Manager handles async fetch jobs.
type Manager struct {
	jobs    map[string]*Job
	mu      sync.RWMutex
	source  Source
	store   storage.Store
	ruleset *rules.Ruleset
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a new fetch job manager.
func NewManager(source Source, store storage.Store, rs *rules.Ruleset, opts Options) *Manager {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*Job),
		source:  source,
		store:   store,
		ruleset: rs,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartJob begins async processing of a fetch request.
func (m *Manager) StartJob(ref wcl.ReportRef) Job {
	job := &Job{
		ID:         uuid.New().String(),
		ReportCode: ref.Code,
		FightID:    ref.FightID,
		Status:     StatusFetching,
		Stage:      "fetching cast events",
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.processJob(job, ref)
	}()

	return snapshot
}

// GetJob returns a copy of the job's current state.
func (m *Manager) GetJob(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// JobCount returns the number of tracked jobs.
func (m *Manager) JobCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

func (m *Manager) processJob(job *Job, ref wcl.ReportRef) {
	short := job.ID[:8]
	logger.Info("[FetchJob %s] Starting fetch: report %s", short, ref.Code)

	data, err := m.source.FetchCastData(m.ctx, ref, func(page, total int) {
		m.update(job, func(j *Job) {
			j.Pages = page
			j.Events = total
			j.Progress = float64(page) / float64(m.opts.MaxPages) * 80
			j.Stage = fmt.Sprintf("fetched page %d", page)
		})
	})
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to fetch cast data: %v", err))
		return
	}

	m.update(job, func(j *Job) {
		j.Status = StatusFormatting
		j.Stage = "formatting"
		j.Progress = 80
		j.FightID = data.Fight.ID
		j.HasMoreEvents = data.HasMoreEvents
		j.Events = len(data.CastEvents)
		j.Pages = data.PagesRetrieved
	})

	listing, mrt, err := m.render(data)
	if err != nil {
		m.markJobError(job, err.Error())
		return
	}

	m.update(job, func(j *Job) {
		j.CastListing = listing
		j.Note = mrt
		j.Status = StatusComplete
		j.Stage = "complete"
		j.Progress = 100
		now := time.Now()
		j.CompletedAt = &now
	})
	logger.Info("[FetchJob %s] Complete: %d events over %d pages", short, len(data.CastEvents), data.PagesRetrieved)
}

// render produces the cast listing and the note using the current filter
// and class mappings.
func (m *Manager) render(data *models.CastData) (string, string, error) {
	filters, err := m.store.ListSpells(m.ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to load spell filter: %w", err)
	}
	mappings, err := storage.ClassMappingSnapshot(m.ctx, m.store)
	if err != nil {
		return "", "", fmt.Errorf("failed to load class mappings: %w", err)
	}

	// an empty filter list counts as filtering off
	listing := note.FormatCastData(data, note.FormatOptions{
		FilterEnabled: m.opts.FilterEnabled && len(filters) > 0,
		Filters:       filters,
	})

	resolver := rules.NewResolver(m.ruleset, mappings)
	mrt, err := note.ConvertToNote(listing, resolver, m.opts.GroupWindow)
	if err != nil {
		return listing, "", fmt.Errorf("failed to convert to note: %w", err)
	}
	return listing, mrt, nil
}

// update applies fn to the job under the lock.
func (m *Manager) update(job *Job, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(job)
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, errMsg string) {
	m.update(job, func(j *Job) {
		j.Status = StatusError
		j.Stage = "error"
		j.Error = errMsg
		now := time.Now()
		j.CompletedAt = &now
	})
	logger.Error("[FetchJob %s] Error: %s", job.ID[:8], errMsg)
}

// CleanupOldJobs removes finished jobs older than maxAge.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status.Done() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

// Shutdown cancels running jobs and waits for them to finish.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}
