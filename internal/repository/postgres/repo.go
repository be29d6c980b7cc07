// Package postgres implements the repository contracts over PostgreSQL,
// translating predicates into parameterized SQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
	"github.com/adequity/brandflow-search/internal/domain/search/query"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
	"github.com/adequity/brandflow-search/internal/usecase/stats"
)

// relationMeta describes the LEFT JOIN used to embed a related summary row.
type relationMeta struct {
	key      string
	fkColumn string
	table    string
	columns  []string
}

type entityMeta struct {
	table    string
	relation *relationMeta
}

var entities = map[string]entityMeta{
	schema.EntityCampaigns: {
		table: "campaigns",
		relation: &relationMeta{
			key:      "creator",
			fkColumn: "creator_id",
			table:    "users",
			columns:  []string{"id", "username", "role"},
		},
	},
	schema.EntityPurchaseRequests: {
		table: "purchase_requests",
		relation: &relationMeta{
			key:      "requester",
			fkColumn: "requester_id",
			table:    "users",
			columns:  []string{"id", "username", "role"},
		},
	},
}

// Repo is a PostgreSQL storage backend.
type Repo struct {
	db *sql.DB
}

// NewRepo opens a connection pool for the given DSN and verifies it.
func NewRepo(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repo{db: db}, nil
}

// Close releases the connection pool.
func (r *Repo) Close() error { return r.db.Close() }

// Ping checks database availability.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Count returns the number of rows matching the predicate.
func (r *Repo) Count(ctx context.Context, q *query.CountQuery) (int64, error) {
	meta, ok := entities[q.Entity]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrEntityNotRegistered, q.Entity)
	}

	args := &argList{}
	where, err := lower(q.Predicate, args)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	stmt := "SELECT COUNT(*) FROM " + meta.table + " t WHERE " + where
	var total int64
	if err := r.db.QueryRowContext(ctx, stmt, args.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", domain.ErrStorage, q.Entity, err)
	}
	return total, nil
}

// Fetch returns the matching rows, sorted and paginated. When the query asks
// for relations the related summary is joined in and embedded as a nested
// map under the relation key.
func (r *Repo) Fetch(ctx context.Context, q *query.Query) ([]result.Row, error) {
	meta, ok := entities[q.Entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotRegistered, q.Entity)
	}

	args := &argList{}
	where, err := lower(q.Predicate, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	sortCol, err := column(q.Sort.Field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}

	var b strings.Builder
	b.WriteString("SELECT t.*")
	rel := meta.relation
	if !q.IncludeRelations {
		rel = nil
	}
	if rel != nil {
		for _, c := range rel.columns {
			b.WriteString(", r." + c + " AS " + relAlias(c))
		}
	}
	b.WriteString(" FROM " + meta.table + " t")
	if rel != nil {
		b.WriteString(" LEFT JOIN " + rel.table + " r ON r.id = t." + rel.fkColumn)
	}
	b.WriteString(" WHERE " + where)
	b.WriteString(" ORDER BY " + sortCol + " " + dir)
	b.WriteString(" LIMIT " + args.add(q.Limit) + " OFFSET " + args.add(q.Offset))

	rows, err := r.db.QueryContext(ctx, b.String(), args.args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrStorage, q.Entity, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, rel)
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", domain.ErrStorage, q.Entity, err)
	}
	return out, nil
}

// Distinct returns up to limit distinct non-null values of field containing
// match, case-insensitively.
func (r *Repo) Distinct(ctx context.Context, entity, field, match string, limit int) ([]string, error) {
	meta, ok := entities[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotRegistered, entity)
	}
	col, err := column(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	stmt := "SELECT DISTINCT " + col + " FROM " + meta.table + " t" +
		" WHERE " + col + " ILIKE $1 AND " + col + " IS NOT NULL" +
		" ORDER BY " + col + " LIMIT $2"
	pattern := "%" + escapeLike(match) + "%"

	rows, err := r.db.QueryContext(ctx, stmt, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: distinct %s.%s: %v", domain.ErrStorage, entity, field, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: distinct %s.%s: %v", domain.ErrStorage, entity, field, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: distinct %s.%s: %v", domain.ErrStorage, entity, field, err)
	}
	return out, nil
}

// GroupCount returns row counts grouped by field value, skipping nulls.
func (r *Repo) GroupCount(ctx context.Context, entity, field string) (map[string]int64, error) {
	meta, ok := entities[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotRegistered, entity)
	}
	col, err := column(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	stmt := "SELECT " + col + "::text, COUNT(*) FROM " + meta.table + " t" +
		" WHERE " + col + " IS NOT NULL GROUP BY " + col
	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: group count %s.%s: %v", domain.ErrStorage, entity, field, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return nil, fmt.Errorf("%w: group count %s.%s: %v", domain.ErrStorage, entity, field, err)
		}
		out[k] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: group count %s.%s: %v", domain.ErrStorage, entity, field, err)
	}
	return out, nil
}

// NumericSummary aggregates a numeric field over non-null rows.
func (r *Repo) NumericSummary(ctx context.Context, entity, field string) (stats.Summary, error) {
	meta, ok := entities[entity]
	if !ok {
		return stats.Summary{}, fmt.Errorf("%w: %s", domain.ErrEntityNotRegistered, entity)
	}
	col, err := column(field)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	stmt := "SELECT COUNT(" + col + "), COALESCE(AVG(" + col + "), 0)," +
		" COALESCE(MIN(" + col + "), 0), COALESCE(MAX(" + col + "), 0)" +
		" FROM " + meta.table + " t"
	var sum stats.Summary
	err = r.db.QueryRowContext(ctx, stmt).Scan(&sum.Count, &sum.Average, &sum.Minimum, &sum.Maximum)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("%w: summary %s.%s: %v", domain.ErrStorage, entity, field, err)
	}
	return sum, nil
}

func relAlias(col string) string { return "__rel_" + col }

// scanRows materializes generic rows. Joined relation columns are gathered
// into a nested map under the relation key; a NULL relation id means the
// related row does not exist and no map is attached.
func scanRows(rows *sql.Rows, rel *relationMeta) ([]result.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	numeric := make([]bool, len(cols))
	for i, ct := range types {
		numeric[i] = isNumericType(ct.DatabaseTypeName())
	}

	out := make([]result.Row, 0, 16)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(result.Row, len(cols))
		var related result.Row
		for i, name := range cols {
			v := normalizeValue(values[i], numeric[i])
			if rel != nil && strings.HasPrefix(name, "__rel_") {
				if v != nil {
					if related == nil {
						related = make(result.Row, len(rel.columns))
					}
					related[strings.TrimPrefix(name, "__rel_")] = v
				}
				continue
			}
			row[name] = v
		}
		if rel != nil && related != nil && related["id"] != nil {
			row[rel.key] = related
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeValue converts driver types into the value types the rest of the
// engine works with. NUMERIC columns come back from pgx as raw bytes; they
// are parsed into float64 only when the column type says so, never based on
// what the bytes happen to contain.
func normalizeValue(v any, numericColumn bool) any {
	switch t := v.(type) {
	case []byte:
		s := string(t)
		if numericColumn {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return s
	case int64:
		return t
	default:
		return v
	}
}

// isNumericType reports whether a database/sql column type name denotes a
// numeric Postgres column.
func isNumericType(name string) bool {
	switch name {
	case "NUMERIC", "DECIMAL", "INT2", "INT4", "INT8", "FLOAT4", "FLOAT8":
		return true
	}
	return false
}
