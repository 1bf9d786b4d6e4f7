package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"localpro/browse/internal/logging"
	"localpro/browse/internal/models"
	"localpro/browse/internal/suggest"
)

// ISuggestionService answers search-as-you-type suggestions.
type ISuggestionService interface {
	Suggest(ctx context.Context, kind models.Kind, query string) []string
}

type suggestionService struct {
	static     suggest.Terms
	popularity IPopularityService
	logger     *zap.Logger
}

// NewSuggestionService creates a suggestion service. popularity may be nil,
// in which case only the static terms are used.
func NewSuggestionService(static suggest.Terms, popularity IPopularityService, logger *zap.Logger) ISuggestionService {
	return &suggestionService{static: static, popularity: popularity, logger: logging.OrNop(logger)}
}

// Suggest matches query against the static terms of kind, followed by the
// admissible entries of the refreshed popular snapshot.
func (s *suggestionService) Suggest(ctx context.Context, kind models.Kind, query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}
	return suggest.Match(query, s.termsFor(ctx, kind))
}

func (s *suggestionService) termsFor(ctx context.Context, kind models.Kind) []string {
	static := s.static.For(kind)
	if s.popularity == nil {
		return static
	}
	popular, found, err := s.popularity.Terms(ctx, kind)
	if err != nil {
		s.logger.Warn("popular suggestion terms unavailable", zap.String("kind", string(kind)), zap.Error(err))
		return static
	}
	if !found {
		return static
	}
	return suggest.Extend(static, popular)
}
