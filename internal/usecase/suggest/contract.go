package suggest

import (
	"context"

	"github.com/adequity/brandflow-search/internal/domain/schema"
)

// Repository returns up to limit distinct non-null values of a text field
// containing match, in storage order.
type Repository interface {
	Distinct(ctx context.Context, entity, field, match string, limit int) ([]string, error)
}

// SchemaReader resolves field descriptors for precondition checks.
type SchemaReader interface {
	Describe(entity, field string) (schema.Field, bool)
}
