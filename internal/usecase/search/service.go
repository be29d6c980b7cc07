package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
	"github.com/adequity/brandflow-search/internal/domain/search/request"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
	"github.com/adequity/brandflow-search/internal/metrics"
)

// Quick search limits per entity.
const (
	DefaultQuickLimit = 5
	MaxQuickLimit     = 20
)

// Service is the search facade: it assembles queries, executes them through
// the repository and computes pagination metadata.
type Service struct {
	repo      Repository
	schema    SchemaReader
	assembler *Assembler
	logger    *zap.Logger
}

// New creates a search service.
func New(repo Repository, s SchemaReader, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		schema:    s,
		assembler: NewAssembler(s),
		logger:    logger,
	}
}

// Search runs a full search: count plus one page of rows, under a single
// predicate. Invalid filter conditions are dropped and surfaced as
// warnings; an unknown entity or a storage failure aborts the request.
func (s *Service) Search(ctx context.Context, entity string, req request.Request) (*result.Page, error) {
	start := time.Now()

	// The entity name is caller-controlled; it must never reach a metric
	// label before the registry has vouched for it.
	if !s.schema.Registered(entity) {
		metrics.ObserveSearch(metrics.EntityUnknown, "invalid", time.Since(start))
		return nil, fmt.Errorf("%w: %q", domain.ErrEntityNotRegistered, entity)
	}

	q, cq, warnings, err := s.assembler.Assemble(ctx, entity, req)
	if err != nil {
		metrics.ObserveSearch(entity, "invalid", time.Since(start))
		return nil, err
	}

	total, err := s.repo.Count(ctx, cq)
	if err != nil {
		metrics.ObserveSearch(entity, "error", time.Since(start))
		return nil, fmt.Errorf("count %s: %w", entity, err)
	}

	rows, err := s.repo.Fetch(ctx, q)
	if err != nil {
		metrics.ObserveSearch(entity, "error", time.Since(start))
		return nil, fmt.Errorf("fetch %s: %w", entity, err)
	}

	page := result.NewPage(rows, total, req.Page(), req.PageSize())
	page.Warnings = warnings

	metrics.ObserveSearch(entity, "ok", time.Since(start))
	s.logger.Debug("search executed",
		zap.String("entity", entity),
		zap.Int64("total", total),
		zap.Int("returned", len(rows)),
		zap.Int("dropped_filters", len(warnings)),
		zap.Duration("latency", time.Since(start)),
	)
	return page, nil
}

// SearchableFields returns the field descriptors of an entity.
func (s *Service) SearchableFields(entity string) ([]schema.Field, error) {
	fields, ok := s.schema.FieldsFor(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrEntityNotRegistered, entity)
	}
	return fields, nil
}

// QuickSearch runs the free-text search across several entities at once,
// first page only, without relation embedding. An empty entity set means
// all registered entities. limitPerType outside [1,20] resets to 5.
func (s *Service) QuickSearch(
	ctx context.Context, queryText string, entities []string, limitPerType int,
) (map[string]*result.Page, error) {
	if limitPerType < 1 || limitPerType > MaxQuickLimit {
		limitPerType = DefaultQuickLimit
	}
	if len(entities) == 0 {
		entities = s.schema.Entities()
		sort.Strings(entities)
	}

	out := make(map[string]*result.Page, len(entities))
	for _, entity := range entities {
		req := request.New(queryText, nil, "", "", 1, limitPerType, false)
		page, err := s.Search(ctx, entity, req)
		if err != nil {
			return nil, err
		}
		out[entity] = page
	}
	return out, nil
}
