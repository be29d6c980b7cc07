package search

import (
	"context"

	"github.com/adequity/brandflow-search/internal/domain/schema"
	"github.com/adequity/brandflow-search/internal/domain/search/query"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
)

// Repository defines the storage contract for search execution. Count and
// Fetch receive the same predicate; the engine never talks to storage in
// any other way.
type Repository interface {
	Count(ctx context.Context, q *query.CountQuery) (int64, error)
	Fetch(ctx context.Context, q *query.Query) ([]result.Row, error)
}

// SchemaReader exposes the read-only field schema registry.
type SchemaReader interface {
	Registered(entity string) bool
	Entities() []string
	Describe(entity, field string) (schema.Field, bool)
	FieldsFor(entity string) ([]schema.Field, bool)
	TextFields(entity string) []string
}
