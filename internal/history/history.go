// Package history keeps a capped, de-duplicated, most-recent-first list of
// a user's search queries in secure storage.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
	"localpro/browse/internal/storage"
)

// MaxEntries is the number of queries kept per history.
const MaxEntries = 10

// Key returns the storage key of a user's history for one kind of list.
func Key(userID string, kind models.Kind) string {
	return fmt.Sprintf("search_history:%s:%s", userID, kind)
}

// Store reads and writes search histories. Storage failures on read are
// logged and treated as an empty history.
type Store struct {
	kv     storage.SecureStorage
	logger *zap.Logger
	mu     sync.Mutex // serialises read-modify-write cycles
}

// NewStore creates a Store over kv.
func NewStore(kv storage.SecureStorage, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: logging.OrNop(logger)}
}

// Load returns the history stored under key, most recent first. It never
// fails: a missing key, a read error or an undecodable value yields an
// empty list.
func (s *Store) Load(ctx context.Context, key string) []string {
	raw, found, err := s.kv.GetItem(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read search history", zap.String("key", key), zap.Error(err))
		return []string{}
	}
	if !found || raw == "" {
		return []string{}
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("discarding corrupt search history", zap.String("key", key), zap.Error(err))
		return []string{}
	}
	return normalize(entries)
}

// Record moves query to the front of the history under key and persists
// the result. Blank queries are ignored. The updated list is returned even
// when the write fails, together with the write error.
func (s *Store) Record(ctx context.Context, key, query string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Load(ctx, key)
	query = strings.TrimSpace(query)
	if query == "" {
		return current, nil
	}

	updated := Prepend(current, query)
	raw, err := json.Marshal(updated)
	if err != nil {
		return updated, fmt.Errorf("failed to encode search history: %w", err)
	}
	if err := s.kv.SetItem(ctx, key, string(raw)); err != nil {
		return updated, fmt.Errorf("failed to persist search history %s: %w", key, err)
	}
	return updated, nil
}

// Clear deletes the history under key.
func (s *Store) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.RemoveItem(ctx, key); err != nil {
		return fmt.Errorf("failed to clear search history %s: %w", key, err)
	}
	return nil
}

// Prepend returns a new list with query first, any earlier copy of it
// removed, truncated to MaxEntries.
func Prepend(entries []string, query string) []string {
	out := make([]string, 0, MaxEntries)
	out = append(out, query)
	for _, e := range entries {
		if len(out) == MaxEntries {
			break
		}
		if e != query {
			out = append(out, e)
		}
	}
	return out
}

// normalize drops duplicates and blanks and enforces the cap on lists read
// back from storage.
func normalize(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
