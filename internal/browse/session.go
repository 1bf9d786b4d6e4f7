// Package browse keeps per-screen browse sessions: the last fetched
// snapshot of a list, the filters applied to it, and the refresh cycle.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
	"localpro/browse/internal/pipeline"
)

// ErrSuperseded is returned by Refresh when a newer refresh started
// before this one finished. Its result has been discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// Fetcher loads one snapshot of a list.
type Fetcher interface {
	FetchListings(ctx context.Context, kind models.Kind, filter models.FetchFilter) ([]models.Listing, error)
}

// Snapshot is what a screen renders.
type Snapshot struct {
	ID         string             `json:"id"`
	Kind       models.Kind        `json:"kind"`
	Items      []models.Listing   `json:"items"`
	Filters    models.FilterState `json:"filters"`
	Loading    bool               `json:"loading"`
	Generation uint64             `json:"generation"`
	Error      string             `json:"error,omitempty"`
	FetchedAt  time.Time          `json:"fetched_at,omitempty"`
}

// Session is the state of one list screen.
type Session struct {
	id      string
	kind    models.Kind
	userID  string
	scope   string // owner filter applied to fetches
	fetcher Fetcher
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	filters    models.FilterState
	items      []models.Listing
	generation uint64
	cancel     context.CancelFunc
	loading    bool
	lastErr    error
	fetchedAt  time.Time
	lastUsed   time.Time
}

// NewSession creates a session of userID for kind. Sessions of personal
// kinds only fetch the user's own records. A zero timeout disables the
// per-fetch deadline.
func NewSession(id string, kind models.Kind, userID string, fetcher Fetcher, timeout time.Duration, logger *zap.Logger) *Session {
	var scope string
	if kind.IsPersonal() {
		scope = userID
	}
	return &Session{
		id:       id,
		kind:     kind,
		userID:   userID,
		scope:    scope,
		fetcher:  fetcher,
		timeout:  timeout,
		logger:   logging.OrNop(logger).With(zap.String("session", id), zap.String("kind", string(kind))),
		items:    []models.Listing{},
		lastUsed: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Kind() models.Kind { return s.kind }

func (s *Session) UserID() string { return s.userID }

// SetFilters replaces the filter state. It does not refetch, but a fetch
// started under the old filters is cancelled and its result discarded.
func (s *Session) SetFilters(f models.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.lastUsed = time.Now()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.generation++
		s.loading = false
	}
}

// Refresh fetches a new snapshot. Starting a refresh cancels the one in
// flight; only the latest refresh may replace the items. A failed fetch
// keeps the previous items and records the error.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	filter := models.FetchFilterFrom(s.filters, s.scope)
	var fetchCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel
	s.loading = true
	s.lastUsed = time.Now()
	s.mu.Unlock()

	items, err := s.fetcher.FetchListings(fetchCtx, s.kind, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if gen != s.generation {
		s.logger.Debug("discarding superseded fetch", zap.Uint64("generation", gen), zap.Uint64("current", s.generation))
		return ErrSuperseded
	}
	s.cancel = nil
	s.loading = false
	if err != nil {
		s.lastErr = err
		s.logger.Warn("fetch failed, keeping previous items", zap.Error(err))
		return fmt.Errorf("failed to fetch %s listings: %w", s.kind, err)
	}
	if items == nil {
		items = []models.Listing{}
	}
	s.items = items
	s.lastErr = nil
	s.fetchedAt = time.Now()
	return nil
}

// View applies the current filters to the current snapshot.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	view := Snapshot{
		ID:         s.id,
		Kind:       s.kind,
		Items:      pipeline.Apply(s.items, s.filters),
		Filters:    s.filters,
		Loading:    s.loading,
		Generation: s.generation,
		FetchedAt:  s.fetchedAt,
	}
	if s.lastErr != nil {
		view.Error = s.lastErr.Error()
	}
	return view
}

// close cancels any in-flight fetch.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
