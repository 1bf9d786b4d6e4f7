package browse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live sessions and expires idle ones.
type Manager struct {
	fetcher      Fetcher
	fetchTimeout time.Duration
	ttl          time.Duration
	logger       *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewManager starts a manager whose janitor removes sessions idle for
// longer than ttl. Call Close to stop it.
func NewManager(fetcher Fetcher, fetchTimeout, ttl time.Duration, logger *zap.Logger) *Manager {
	m := &Manager{
		fetcher:      fetcher,
		fetchTimeout: fetchTimeout,
		ttl:          ttl,
		logger:       logging.OrNop(logger),
		sessions:     make(map[string]*Session),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Create registers a new session of userID for kind.
func (m *Manager) Create(kind models.Kind, userID string) *Session {
	s := NewSession(uuid.NewString(), kind, userID, m.fetcher, m.fetchTimeout, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with id. Sessions belong to the user that
// created them; userID must match.
func (m *Manager) Get(id, userID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and removes a session.
func (m *Manager) Delete(id, userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.UserID() != userID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()
	s.close()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Expire removes sessions idle since before now-ttl and returns how many
// were removed.
func (m *Manager) Expire(now time.Time) int {
	cutoff := now.Add(-m.ttl)
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

func (m *Manager) janitor() {
	defer close(m.done)
	interval := m.ttl / 2
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			if n := m.Expire(now); n > 0 {
				m.logger.Debug("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Close stops the janitor and cancels every in-flight fetch. It waits for
// the janitor to exit or ctx to end.
func (m *Manager) Close(ctx context.Context) error {
	m.once.Do(func() { close(m.stop) })

	m.mu.Lock()
	for id, s := range m.sessions {
		s.close()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
