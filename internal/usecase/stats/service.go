// Package stats builds per-entity search statistics: value distributions
// for enum fields and numeric summaries for number fields.
package stats

import (
	"context"
	"fmt"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
)

// Summary aggregates a numeric field.
type Summary struct {
	Count   int64
	Average float64
	Minimum float64
	Maximum float64
}

// Report holds the statistics of one entity, keyed by field name.
type Report struct {
	Entity        string
	Distributions map[string]map[string]int64
	Numbers       map[string]Summary
}

// Service computes search statistics from the schema registry: every enum
// field gets a distribution, every number field a summary.
type Service struct {
	repo   Repository
	schema SchemaReader
}

// New creates a stats service.
func New(repo Repository, s SchemaReader) *Service {
	return &Service{repo: repo, schema: s}
}

// Report builds the statistics report for an entity.
func (s *Service) Report(ctx context.Context, entity string) (*Report, error) {
	fields, ok := s.schema.FieldsFor(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrEntityNotRegistered, entity)
	}

	rep := &Report{
		Entity:        entity,
		Distributions: make(map[string]map[string]int64),
		Numbers:       make(map[string]Summary),
	}

	for _, f := range fields {
		switch f.FieldType() {
		case schema.TypeEnum:
			dist, err := s.repo.GroupCount(ctx, entity, f.Name())
			if err != nil {
				return nil, fmt.Errorf("group count %s.%s: %w", entity, f.Name(), err)
			}
			rep.Distributions[f.Name()] = dist
		case schema.TypeNumber:
			sum, err := s.repo.NumericSummary(ctx, entity, f.Name())
			if err != nil {
				return nil, fmt.Errorf("numeric summary %s.%s: %w", entity, f.Name(), err)
			}
			rep.Numbers[f.Name()] = sum
		}
	}
	return rep, nil
}
