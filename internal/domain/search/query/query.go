// Package query defines the storage-agnostic query objects handed to a
// repository for execution.
package query

import "github.com/adequity/brandflow-search/internal/domain/search/predicate"

// Sort is a single-field sort specification.
type Sort struct {
	Field string
	Desc  bool
}

// Query selects a page of entity rows.
type Query struct {
	Entity           string
	Predicate        predicate.Predicate
	Sort             Sort
	Offset           int
	Limit            int
	IncludeRelations bool
}

// CountQuery counts rows matching a predicate. It must carry the same
// predicate as the data query so the reported total stays consistent with
// the returned page.
type CountQuery struct {
	Entity    string
	Predicate predicate.Predicate
}

// CountQuery derives the count query for q.
func (q *Query) CountQuery() *CountQuery {
	return &CountQuery{Entity: q.Entity, Predicate: q.Predicate}
}
