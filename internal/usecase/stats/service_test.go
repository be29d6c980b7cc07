package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
)

type mockRepo struct {
	groups    map[string]map[string]int64
	summaries map[string]Summary
	err       error
}

func (m *mockRepo) GroupCount(_ context.Context, _, field string) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.groups[field], nil
}

func (m *mockRepo) NumericSummary(_ context.Context, _, field string) (Summary, error) {
	if m.err != nil {
		return Summary{}, m.err
	}
	return m.summaries[field], nil
}

func TestReport(t *testing.T) {
	repo := &mockRepo{
		groups: map[string]map[string]int64{
			"status": {"active": 3, "completed": 1},
		},
		summaries: map[string]Summary{
			"budget": {Count: 4, Average: 2500, Minimum: 1000, Maximum: 5000},
		},
	}
	svc := New(repo, schema.BuiltIn())

	rep, err := svc.Report(context.Background(), schema.EntityCampaigns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Entity != schema.EntityCampaigns {
		t.Errorf("entity = %q, want campaigns", rep.Entity)
	}
	if rep.Distributions["status"]["active"] != 3 {
		t.Errorf("status distribution = %v, want active:3", rep.Distributions["status"])
	}
	sum := rep.Numbers["budget"]
	if sum.Count != 4 || sum.Average != 2500 || sum.Minimum != 1000 || sum.Maximum != 5000 {
		t.Errorf("budget summary = %+v", sum)
	}
	// Text and date fields never appear in the report.
	if _, ok := rep.Distributions["name"]; ok {
		t.Error("text field should not have a distribution")
	}
	if _, ok := rep.Numbers["created_at"]; ok {
		t.Error("date field should not have a summary")
	}
}

func TestReport_UnknownEntity(t *testing.T) {
	svc := New(&mockRepo{}, schema.BuiltIn())
	_, err := svc.Report(context.Background(), "unicorns")
	if !errors.Is(err, domain.ErrEntityNotRegistered) {
		t.Fatalf("err = %v, want ErrEntityNotRegistered", err)
	}
}

func TestReport_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := New(&mockRepo{err: boom}, schema.BuiltIn())
	if _, err := svc.Report(context.Background(), schema.EntityCampaigns); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped storage error", err)
	}
}
