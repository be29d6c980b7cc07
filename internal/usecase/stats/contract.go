package stats

import (
	"context"

	"github.com/adequity/brandflow-search/internal/domain/schema"
)

// Repository exposes the aggregations the stats report is built from.
type Repository interface {
	// GroupCount returns row counts grouped by the values of field.
	GroupCount(ctx context.Context, entity, field string) (map[string]int64, error)
	// NumericSummary aggregates a numeric field over non-null rows.
	NumericSummary(ctx context.Context, entity, field string) (Summary, error)
}

// SchemaReader lists the fields a report covers.
type SchemaReader interface {
	FieldsFor(entity string) ([]schema.Field, bool)
}
