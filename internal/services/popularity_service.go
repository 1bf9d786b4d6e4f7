package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"localpro/browse/internal/models"
)

// IPopularityService counts submitted searches and keeps the refreshed
// popular-term snapshot served as suggestions.
type IPopularityService interface {
	Increment(ctx context.Context, kind models.Kind, query string) error
	Top(ctx context.Context, kind models.Kind, n int) ([]string, error)
	SetTerms(ctx context.Context, kind models.Kind, terms []string) error
	Terms(ctx context.Context, kind models.Kind) ([]string, bool, error)
}

type popularityService struct {
	rdb redis.Cmdable
}

// NewPopularityService creates a Redis-backed popularity service.
func NewPopularityService(rdb redis.Cmdable) IPopularityService {
	return &popularityService{rdb: rdb}
}

func popularKey(kind models.Kind) string { return "search_popular:" + string(kind) }
func termsKey(kind models.Kind) string   { return "suggest_terms:" + string(kind) }

// Increment bumps the score of query. Queries are compared case-insensitively.
func (s *popularityService) Increment(ctx context.Context, kind models.Kind, query string) error {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if err := s.rdb.ZIncrBy(ctx, popularKey(kind), 1, q).Err(); err != nil {
		return fmt.Errorf("failed to count search %q for %s: %w", q, kind, err)
	}
	return nil
}

// Top returns the n highest scored queries, best first.
func (s *popularityService) Top(ctx context.Context, kind models.Kind, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	terms, err := s.rdb.ZRevRange(ctx, popularKey(kind), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popular searches for %s: %w", kind, err)
	}
	return terms, nil
}

// SetTerms replaces the suggestion snapshot of kind.
func (s *popularityService) SetTerms(ctx context.Context, kind models.Kind, terms []string) error {
	raw, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("failed to encode terms for %s: %w", kind, err)
	}
	if err := s.rdb.Set(ctx, termsKey(kind), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store terms for %s: %w", kind, err)
	}
	return nil
}

// Terms returns the suggestion snapshot of kind; found is false when no
// refresh has run yet.
func (s *popularityService) Terms(ctx context.Context, kind models.Kind) ([]string, bool, error) {
	raw, err := s.rdb.Get(ctx, termsKey(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load terms for %s: %w", kind, err)
	}
	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, false, fmt.Errorf("failed to decode terms for %s: %w", kind, err)
	}
	return terms, true, nil
}
