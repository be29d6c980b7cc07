package search

import "github.com/adequity/brandflow-search/internal/domain/search/predicate"

// TextSearchBuilder builds the free-text predicate: an OR of
// case-insensitive contains matches over the entity's registered free-text
// fields. It is independent of the structured filter list.
type TextSearchBuilder struct {
	schema SchemaReader
}

// NewTextSearchBuilder creates a text search builder.
func NewTextSearchBuilder(s SchemaReader) *TextSearchBuilder {
	return &TextSearchBuilder{schema: s}
}

// Build returns the free-text predicate for queryText, or nil when the
// query is empty or the entity has no free-text fields.
func (b *TextSearchBuilder) Build(entity, queryText string) predicate.Predicate {
	if queryText == "" {
		return nil
	}
	fields := b.schema.TextFields(entity)
	if len(fields) == 0 {
		return nil
	}

	preds := make([]predicate.Predicate, len(fields))
	for i, f := range fields {
		preds[i] = predicate.TextMatch{Field: f, Value: queryText, Mode: predicate.MatchContains}
	}
	if len(preds) == 1 {
		return preds[0]
	}
	return predicate.Or{Preds: preds}
}
