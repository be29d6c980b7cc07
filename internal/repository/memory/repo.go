// Package memory implements the repository contracts over in-process rows.
// It backs the "memory" storage driver and the engine's unit tests: no
// database is needed to exercise the full search pipeline.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/adequity/brandflow-search/internal/domain/search/query"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
	"github.com/adequity/brandflow-search/internal/usecase/stats"
)

// Relation declares how a denormalized relation summary is attached to a
// row: row[Key] = related row whose "id" equals row[FK].
type Relation struct {
	Key string
	FK  string
}

// Repo is an in-memory storage backend.
type Repo struct {
	mu        sync.RWMutex
	rows      map[string][]result.Row
	relations map[string]Relation
	related   map[string]map[any]result.Row
}

// NewRepo creates an empty in-memory repository.
func NewRepo() *Repo {
	return &Repo{
		rows:      make(map[string][]result.Row),
		relations: make(map[string]Relation),
		related:   make(map[string]map[any]result.Row),
	}
}

// Seed replaces the rows of an entity.
func (r *Repo) Seed(entity string, rows []result.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[entity] = rows
}

// SeedRelation registers a relation for an entity and the related rows it
// resolves against, keyed by their "id" value.
func (r *Repo) SeedRelation(entity string, rel Relation, related []result.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := make(map[any]result.Row, len(related))
	for _, row := range related {
		byID[row["id"]] = row
	}
	r.relations[entity] = rel
	r.related[entity] = byID
}

// Ping always succeeds.
func (r *Repo) Ping(_ context.Context) error { return nil }

// Count returns the number of rows matching the predicate.
func (r *Repo) Count(ctx context.Context, q *query.CountQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, row := range r.rows[q.Entity] {
		if eval(q.Predicate, row) {
			total++
		}
	}
	return total, nil
}

// Fetch returns the matching rows, sorted and paginated.
func (r *Repo) Fetch(ctx context.Context, q *query.Query) ([]result.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []result.Row
	for _, row := range r.rows[q.Entity] {
		if eval(q.Predicate, row) {
			matched = append(matched, row)
		}
	}

	sortRows(matched, q.Sort)

	start := q.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	pageRows := matched[start:end]

	out := make([]result.Row, len(pageRows))
	for i, row := range pageRows {
		clone := make(result.Row, len(row)+1)
		for k, v := range row {
			clone[k] = v
		}
		if q.IncludeRelations {
			if rel, ok := r.relations[q.Entity]; ok {
				if related, found := r.related[q.Entity][row[rel.FK]]; found {
					clone[rel.Key] = related
				}
			}
		}
		out[i] = clone
	}
	return out, nil
}

// Distinct returns up to limit distinct non-null values of field containing
// match (case-insensitive), in insertion order.
func (r *Repo) Distinct(ctx context.Context, entity, field, match string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, row := range r.rows[entity] {
		s, ok := row[field].(string)
		if !ok || s == "" || seen[s] {
			continue
		}
		if !containsFold(s, match) {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// GroupCount returns row counts grouped by field value, skipping nulls.
func (r *Repo) GroupCount(ctx context.Context, entity, field string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64)
	for _, row := range r.rows[entity] {
		v := row[field]
		if v == nil {
			continue
		}
		out[fmt.Sprint(v)]++
	}
	return out, nil
}

// NumericSummary aggregates a numeric field over non-null rows.
func (r *Repo) NumericSummary(ctx context.Context, entity, field string) (stats.Summary, error) {
	if err := ctx.Err(); err != nil {
		return stats.Summary{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum stats.Summary
	var total float64
	for _, row := range r.rows[entity] {
		f, ok := asNumber(row[field])
		if !ok {
			continue
		}
		if sum.Count == 0 || f < sum.Minimum {
			sum.Minimum = f
		}
		if sum.Count == 0 || f > sum.Maximum {
			sum.Maximum = f
		}
		total += f
		sum.Count++
	}
	if sum.Count > 0 {
		sum.Average = total / float64(sum.Count)
	}
	return sum, nil
}

// sortRows orders rows by the sort field; rows missing the field sort last.
func sortRows(rows []result.Row, s query.Sort) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][s.Field], rows[j][s.Field]
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		c, ok := compareRowValues(a, b)
		if !ok {
			return false
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

// compareRowValues orders two stored values of the same column.
func compareRowValues(a, b any) (int, bool) {
	if fa, ok := asNumber(a); ok {
		if fb, ok := asNumber(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			switch {
			case ta.Before(tb):
				return -1, true
			case ta.After(tb):
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
