package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/search/predicate"
	"github.com/adequity/brandflow-search/internal/domain/search/query"
	"github.com/adequity/brandflow-search/internal/domain/search/request"
	"github.com/adequity/brandflow-search/internal/logger"
	"github.com/adequity/brandflow-search/internal/metrics"
)

// DefaultSortField is the fallback sort when the request names no field or
// an unknown one. Both built-in entities carry it.
const DefaultSortField = "created_at"

// Assembler composes filter conditions, the free-text predicate, sort and
// pagination into a data query and its matching count query.
type Assembler struct {
	schema     SchemaReader
	conditions *ConditionBuilder
	text       *TextSearchBuilder
}

// NewAssembler creates a query assembler.
func NewAssembler(s SchemaReader) *Assembler {
	return &Assembler{
		schema:     s,
		conditions: NewConditionBuilder(s),
		text:       NewTextSearchBuilder(s),
	}
}

// Assemble builds the query pair for a request. Invalid filter conditions
// are dropped, each producing one warning; an unknown entity is the only
// error. The count query shares the data query's predicate.
func (a *Assembler) Assemble(
	ctx context.Context, entity string, req request.Request,
) (*query.Query, *query.CountQuery, []string, error) {
	if !a.schema.Registered(entity) {
		return nil, nil, nil, fmt.Errorf("%w: %q", domain.ErrEntityNotRegistered, entity)
	}

	log := logger.FromContext(ctx)

	var preds []predicate.Predicate
	var warnings []string
	for _, c := range req.Filters() {
		p, err := a.conditions.Build(entity, c)
		if err != nil {
			// Soft skip: the rest of the search proceeds without this condition.
			warnings = append(warnings, fmt.Sprintf("dropped filter: %v", err))
			log.Warn("dropped filter condition",
				zap.String("entity", entity),
				zap.String("field", c.Field),
				zap.String("operator", c.Operator),
				zap.Error(err),
			)
			metrics.IncDroppedFilter(entity, dropReason(err))
			continue
		}
		preds = append(preds, p)
	}

	if t := a.text.Build(entity, req.QueryText()); t != nil {
		preds = append(preds, t)
	}

	var combined predicate.Predicate
	switch len(preds) {
	case 0:
		combined = predicate.MatchAll{}
	case 1:
		combined = preds[0]
	default:
		combined = predicate.And{Preds: preds}
	}

	sort := query.Sort{Field: DefaultSortField, Desc: true}
	if by := req.SortBy(); by != "" {
		if _, ok := a.schema.Describe(entity, by); ok {
			sort = query.Sort{Field: by, Desc: req.SortDesc()}
		}
		// Unknown sort field silently falls back to the default.
	}

	q := &query.Query{
		Entity:           entity,
		Predicate:        combined,
		Sort:             sort,
		Offset:           (req.Page() - 1) * req.PageSize(),
		Limit:            req.PageSize(),
		IncludeRelations: req.IncludeRelations(),
	}
	return q, q.CountQuery(), warnings, nil
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, domain.ErrUnsupportedOperator):
		return "unsupported_operator"
	default:
		return "invalid_value"
	}
}
