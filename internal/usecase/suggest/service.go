// Package suggest implements best-effort autocomplete suggestions over
// text fields.
package suggest

import (
	"context"

	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/domain/schema"
)

// Suggestion count limits.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Service serves autocomplete suggestions. It is a convenience, not a
// ranked search: any bad input or storage failure yields an empty list,
// never an error.
type Service struct {
	repo   Repository
	schema SchemaReader
	logger *zap.Logger
}

// New creates a suggestion service.
func New(repo Repository, s SchemaReader, logger *zap.Logger) *Service {
	return &Service{repo: repo, schema: s, logger: logger}
}

// Suggest returns up to limit distinct values of a text field containing
// text. Unknown entity or field, a non-text field, or an empty query all
// return an empty list. limit outside [1,50] resets to 10.
func (s *Service) Suggest(ctx context.Context, entity, field, text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	f, ok := s.schema.Describe(entity, field)
	if !ok || f.FieldType() != schema.TypeText {
		return nil
	}

	values, err := s.repo.Distinct(ctx, entity, field, text, limit)
	if err != nil {
		s.logger.Warn("suggestion lookup failed",
			zap.String("entity", entity),
			zap.String("field", field),
			zap.Error(err),
		)
		return nil
	}
	return values
}
