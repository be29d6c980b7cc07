package memory

import (
	"context"
	"testing"
	"time"

	"github.com/adequity/brandflow-search/internal/domain/search/predicate"
	"github.com/adequity/brandflow-search/internal/domain/search/query"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seededRepo() *Repo {
	r := NewRepo()
	r.Seed("campaigns", []result.Row{
		{
			"id": 1, "name": "Spring Launch", "client_company": "Acme Corp",
			"status": "active", "budget": float64(5000),
			"created_at": date("2026-01-10"), "creator_id": 10,
		},
		{
			"id": 2, "name": "Summer Sale", "client_company": "Globex",
			"status": "active", "budget": float64(12000),
			"created_at": date("2026-02-20"), "creator_id": 11,
		},
		{
			"id": 3, "name": "Winter Clearance", "client_company": "Acme Corp",
			"status": "completed", "budget": float64(800),
			"created_at": date("2026-03-05"), "creator_id": 10,
		},
		{
			"id": 4, "name": "Brand Refresh", "client_company": nil,
			"status": "draft", "budget": nil,
			"created_at": date("2026-03-15"), "creator_id": 12,
		},
	})
	r.SeedRelation("campaigns", Relation{Key: "creator", FK: "creator_id"}, []result.Row{
		{"id": 10, "username": "mina", "role": "manager"},
		{"id": 11, "username": "taylor", "role": "staff"},
	})
	return r
}

func fetchAll(t *testing.T, r *Repo, p predicate.Predicate) []result.Row {
	t.Helper()
	rows, err := r.Fetch(context.Background(), &query.Query{
		Entity:    "campaigns",
		Predicate: p,
		Sort:      query.Sort{Field: "created_at", Desc: true},
		Limit:     100,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	return rows
}

func TestCount(t *testing.T) {
	r := seededRepo()
	total, err := r.Count(context.Background(), &query.CountQuery{
		Entity:    "campaigns",
		Predicate: predicate.FieldEquals{Field: "status", Value: "active"},
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestFetch_TextMatchIsCaseInsensitive(t *testing.T) {
	r := seededRepo()
	rows := fetchAll(t, r, predicate.TextMatch{
		Field: "name", Value: "SPRING", Mode: predicate.MatchContains,
	})
	if len(rows) != 1 || rows[0]["id"] != 1 {
		t.Fatalf("rows = %v, want only Spring Launch", rows)
	}

	rows = fetchAll(t, r, predicate.TextMatch{
		Field: "name", Value: "sale", Mode: predicate.MatchSuffix,
	})
	if len(rows) != 1 || rows[0]["id"] != 2 {
		t.Fatalf("rows = %v, want only Summer Sale", rows)
	}
}

func TestFetch_Range(t *testing.T) {
	r := seededRepo()
	rows := fetchAll(t, r, predicate.FieldRange{
		Field: "budget", Lo: float64(1000), Hi: float64(20000),
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	// Inverted bounds run as-is and match nothing.
	rows = fetchAll(t, r, predicate.FieldRange{
		Field: "budget", Lo: float64(20000), Hi: float64(1000),
	})
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0 for inverted range", len(rows))
	}

	// Exclusive bound drops the boundary row.
	rows = fetchAll(t, r, predicate.FieldRange{
		Field: "budget", Lo: float64(5000), LoExclusive: true,
	})
	if len(rows) != 1 || rows[0]["id"] != 2 {
		t.Fatalf("rows = %v, want only the 12000 budget row", rows)
	}
}

func TestFetch_NullSemantics(t *testing.T) {
	r := seededRepo()

	// A missing value never matches a range.
	rows := fetchAll(t, r, predicate.FieldRange{Field: "budget", Lo: float64(0)})
	for _, row := range rows {
		if row["id"] == 4 {
			t.Error("row with null budget should not match a range")
		}
	}

	// NOT IN mirrors SQL three-valued logic: null is excluded.
	rows = fetchAll(t, r, predicate.FieldNotIn{
		Field: "status", Values: []any{"completed"},
	})
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	rows = fetchAll(t, r, predicate.FieldNotIn{
		Field: "client_company", Values: []any{"Globex"},
	})
	for _, row := range rows {
		if row["id"] == 4 {
			t.Error("row with null client_company should not match NOT IN")
		}
	}
}

func TestFetch_SortAndPagination(t *testing.T) {
	r := seededRepo()
	ctx := context.Background()

	rows, err := r.Fetch(ctx, &query.Query{
		Entity:    "campaigns",
		Predicate: predicate.MatchAll{},
		Sort:      query.Sort{Field: "created_at", Desc: true},
		Offset:    1,
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["id"] != 3 || rows[1]["id"] != 2 {
		t.Errorf("page = [%v, %v], want [3, 2]", rows[0]["id"], rows[1]["id"])
	}

	// Offset past the end yields an empty page, not an error.
	rows, err = r.Fetch(ctx, &query.Query{
		Entity:    "campaigns",
		Predicate: predicate.MatchAll{},
		Sort:      query.Sort{Field: "created_at", Desc: true},
		Offset:    100,
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestFetch_SortAscendingByNumber(t *testing.T) {
	r := seededRepo()
	rows, err := r.Fetch(context.Background(), &query.Query{
		Entity:    "campaigns",
		Predicate: predicate.MatchAll{},
		Sort:      query.Sort{Field: "budget", Desc: false},
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rows[0]["id"] != 3 {
		t.Errorf("first = %v, want the 800 budget row", rows[0]["id"])
	}
	// Rows missing the sort field go last.
	if rows[len(rows)-1]["id"] != 4 {
		t.Errorf("last = %v, want the null budget row", rows[len(rows)-1]["id"])
	}
}

func TestFetch_Relations(t *testing.T) {
	r := seededRepo()
	ctx := context.Background()

	rows, err := r.Fetch(ctx, &query.Query{
		Entity:           "campaigns",
		Predicate:        predicate.FieldEquals{Field: "name", Value: "Spring Launch"},
		Sort:             query.Sort{Field: "created_at", Desc: true},
		Limit:            10,
		IncludeRelations: true,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	creator, ok := rows[0]["creator"].(result.Row)
	if !ok {
		t.Fatalf("creator = %T, want embedded row", rows[0]["creator"])
	}
	if creator["username"] != "mina" {
		t.Errorf("creator = %v, want mina", creator)
	}

	// Without the flag no relation is attached.
	rows, err = r.Fetch(ctx, &query.Query{
		Entity:    "campaigns",
		Predicate: predicate.FieldEquals{Field: "name", Value: "Spring Launch"},
		Sort:      query.Sort{Field: "created_at", Desc: true},
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := rows[0]["creator"]; ok {
		t.Error("creator should not be embedded without IncludeRelations")
	}
}

func TestFetch_AndOr(t *testing.T) {
	r := seededRepo()
	rows := fetchAll(t, r, predicate.And{Preds: []predicate.Predicate{
		predicate.FieldEquals{Field: "status", Value: "active"},
		predicate.FieldRange{Field: "budget", Lo: float64(10000)},
	}})
	if len(rows) != 1 || rows[0]["id"] != 2 {
		t.Fatalf("rows = %v, want only Summer Sale", rows)
	}

	rows = fetchAll(t, r, predicate.Or{Preds: []predicate.Predicate{
		predicate.TextMatch{Field: "name", Value: "spring", Mode: predicate.MatchContains},
		predicate.TextMatch{Field: "name", Value: "winter", Mode: predicate.MatchContains},
	}})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestDistinct(t *testing.T) {
	r := seededRepo()
	ctx := context.Background()

	values, err := r.Distinct(ctx, "campaigns", "client_company", "acme", 10)
	if err != nil {
		t.Fatalf("distinct: %v", err)
	}
	if len(values) != 1 || values[0] != "Acme Corp" {
		t.Fatalf("values = %v, want [Acme Corp]", values)
	}

	// Duplicates collapse, nulls are skipped, the limit caps the output.
	values, err = r.Distinct(ctx, "campaigns", "client_company", "", 1)
	if err != nil {
		t.Fatalf("distinct: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("values = %v, want 1 entry", values)
	}
}

func TestGroupCount(t *testing.T) {
	r := seededRepo()
	dist, err := r.GroupCount(context.Background(), "campaigns", "status")
	if err != nil {
		t.Fatalf("group count: %v", err)
	}
	if dist["active"] != 2 || dist["completed"] != 1 || dist["draft"] != 1 {
		t.Errorf("distribution = %v", dist)
	}
}

func TestNumericSummary(t *testing.T) {
	r := seededRepo()
	sum, err := r.NumericSummary(context.Background(), "campaigns", "budget")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Count != 3 {
		t.Errorf("count = %d, want 3 (null excluded)", sum.Count)
	}
	if sum.Minimum != 800 || sum.Maximum != 12000 {
		t.Errorf("min/max = %v/%v, want 800/12000", sum.Minimum, sum.Maximum)
	}
	wantAvg := (5000.0 + 12000.0 + 800.0) / 3.0
	if sum.Average != wantAvg {
		t.Errorf("average = %v, want %v", sum.Average, wantAvg)
	}
}
