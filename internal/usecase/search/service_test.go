package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
	"github.com/adequity/brandflow-search/internal/domain/search/query"
	"github.com/adequity/brandflow-search/internal/domain/search/request"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
	"github.com/adequity/brandflow-search/internal/metrics"
)

// mockRepo records the queries it receives and returns canned data.
type mockRepo struct {
	total    int64
	rows     []result.Row
	countErr error
	fetchErr error

	lastQuery *query.Query
	lastCount *query.CountQuery
}

func (m *mockRepo) Count(_ context.Context, q *query.CountQuery) (int64, error) {
	m.lastCount = q
	return m.total, m.countErr
}

func (m *mockRepo) Fetch(_ context.Context, q *query.Query) ([]result.Row, error) {
	m.lastQuery = q
	return m.rows, m.fetchErr
}

func newService(repo *mockRepo) *Service {
	return New(repo, schema.BuiltIn(), zap.NewNop())
}

func TestService_Search(t *testing.T) {
	repo := &mockRepo{
		total: 42,
		rows:  []result.Row{{"name": "Spring Launch"}, {"name": "Summer Sale"}},
	}
	svc := newService(repo)

	req := request.New("", nil, "", "", 2, 20, false)
	page, err := svc.Search(context.Background(), schema.EntityCampaigns, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 42 {
		t.Errorf("total = %d, want 42", page.Total)
	}
	if len(page.Data) != 2 {
		t.Errorf("rows = %d, want 2", len(page.Data))
	}
	if page.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", page.TotalPages)
	}
	if !page.HasNext || !page.HasPrevious {
		t.Errorf("hasNext/hasPrevious = %v/%v, want true/true", page.HasNext, page.HasPrevious)
	}
	if repo.lastQuery == nil || repo.lastQuery.Offset != 20 {
		t.Errorf("offset = %+v, want 20", repo.lastQuery)
	}
}

func TestService_SearchSurfacesWarnings(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(repo)

	filters := []request.FilterCondition{
		{Field: "nonexistent", Operator: "equals", Value: "x"},
	}
	req := request.New("", filters, "", "", 1, 20, false)
	page, err := svc.Search(context.Background(), schema.EntityCampaigns, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", page.Warnings)
	}
}

func TestService_SearchUnknownEntity(t *testing.T) {
	svc := newService(&mockRepo{})
	req := request.New("", nil, "", "", 1, 20, false)
	_, err := svc.Search(context.Background(), "unicorns", req)
	if !errors.Is(err, domain.ErrEntityNotRegistered) {
		t.Fatalf("err = %v, want ErrEntityNotRegistered", err)
	}
}

func TestService_SearchPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")

	svc := newService(&mockRepo{countErr: boom})
	req := request.New("", nil, "", "", 1, 20, false)
	if _, err := svc.Search(context.Background(), schema.EntityCampaigns, req); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped count error", err)
	}

	svc = newService(&mockRepo{fetchErr: boom})
	if _, err := svc.Search(context.Background(), schema.EntityCampaigns, req); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped fetch error", err)
	}
}

func TestService_SearchableFields(t *testing.T) {
	svc := newService(&mockRepo{})

	fields, err := svc.SearchableFields(schema.EntityCampaigns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) == 0 {
		t.Fatal("expected field descriptors")
	}

	if _, err := svc.SearchableFields("unicorns"); !errors.Is(err, domain.ErrEntityNotRegistered) {
		t.Fatalf("err = %v, want ErrEntityNotRegistered", err)
	}
}

func TestService_QuickSearch(t *testing.T) {
	repo := &mockRepo{total: 1, rows: []result.Row{{"name": "Spring Launch"}}}
	svc := newService(repo)

	pages, err := svc.QuickSearch(context.Background(), "spring", nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Empty entity set means all registered entities.
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	for entity, page := range pages {
		if page == nil {
			t.Fatalf("page for %s is nil", entity)
		}
	}
	// Limit outside [1,20] resets to the default.
	if repo.lastQuery.Limit != DefaultQuickLimit {
		t.Errorf("limit = %d, want %d", repo.lastQuery.Limit, DefaultQuickLimit)
	}
	if repo.lastQuery.IncludeRelations {
		t.Error("quick search should not embed relations")
	}
}

func TestService_QuickSearchExplicitEntities(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(repo)

	pages, err := svc.QuickSearch(context.Background(), "spring", []string{schema.EntityCampaigns}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if repo.lastQuery.Limit != 10 {
		t.Errorf("limit = %d, want 10", repo.lastQuery.Limit)
	}

	if _, err := svc.QuickSearch(context.Background(), "spring", []string{"unicorns"}, 5); err == nil {
		t.Fatal("expected error for unknown entity")
	}
}

// Entity names arrive straight from the request path; only registered names
// may become metric label values, everything else collapses into a single
// fixed series.
func TestService_UnregisteredEntityNeverLabelsMetrics(t *testing.T) {
	metrics.RegisterSearchMetrics()
	svc := newService(&mockRepo{})

	const prefix = "made_up_entity_"
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		_, err := svc.QuickSearch(context.Background(), "spring", []string{name}, 5)
		if !errors.Is(err, domain.ErrEntityNotRegistered) {
			t.Fatalf("err = %v, want ErrEntityNotRegistered", err)
		}
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	sawUnknown := false
	for _, mf := range families {
		if mf.GetName() != "brandflow_searches_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() != "entity" {
					continue
				}
				if strings.HasPrefix(lp.GetValue(), prefix) {
					t.Errorf("series labeled with caller-supplied entity %q", lp.GetValue())
				}
				if lp.GetValue() == metrics.EntityUnknown {
					sawUnknown = true
				}
			}
		}
	}
	if !sawUnknown {
		t.Errorf("rejected searches should count under the %q entity label", metrics.EntityUnknown)
	}
}
