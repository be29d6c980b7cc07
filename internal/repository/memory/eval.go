package memory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/adequity/brandflow-search/internal/domain/search/predicate"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
)

// eval reports whether row satisfies p. Semantics mirror what the SQL
// lowering produces: case-insensitive text matching, three-valued NULL
// handling (a missing value never matches, not even NOT IN).
func eval(p predicate.Predicate, row result.Row) bool {
	switch pr := p.(type) {
	case predicate.MatchAll:
		return true
	case predicate.FieldEquals:
		return valueEquals(row[pr.Field], pr.Value)
	case predicate.FieldRange:
		return evalRange(pr, row[pr.Field])
	case predicate.FieldIn:
		return evalIn(pr.Values, row[pr.Field])
	case predicate.FieldNotIn:
		v := row[pr.Field]
		if v == nil {
			return false
		}
		return !evalIn(pr.Values, v)
	case predicate.TextMatch:
		return evalTextMatch(pr, row[pr.Field])
	case predicate.And:
		for _, c := range pr.Preds {
			if !eval(c, row) {
				return false
			}
		}
		return true
	case predicate.Or:
		for _, c := range pr.Preds {
			if eval(c, row) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func evalIn(values []any, v any) bool {
	if v == nil {
		return false
	}
	for _, want := range values {
		if valueEquals(v, want) {
			return true
		}
	}
	return false
}

func evalTextMatch(p predicate.TextMatch, v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	hay := strings.ToLower(s)
	needle := strings.ToLower(p.Value)
	switch p.Mode {
	case predicate.MatchPrefix:
		return strings.HasPrefix(hay, needle)
	case predicate.MatchSuffix:
		return strings.HasSuffix(hay, needle)
	default:
		return strings.Contains(hay, needle)
	}
}

func evalRange(p predicate.FieldRange, v any) bool {
	if v == nil {
		return false
	}
	if p.Lo != nil {
		c, ok := compareValues(v, p.Lo)
		if !ok || c < 0 || (c == 0 && p.LoExclusive) {
			return false
		}
	}
	if p.Hi != nil {
		c, ok := compareValues(v, p.Hi)
		if !ok || c > 0 || (c == 0 && p.HiExclusive) {
			return false
		}
	}
	return true
}

// valueEquals compares a stored value against a coerced predicate scalar
// (float64, time.Time or string).
func valueEquals(v, want any) bool {
	if v == nil {
		return false
	}
	switch w := want.(type) {
	case float64:
		f, ok := asNumber(v)
		return ok && f == w
	case time.Time:
		t, ok := asTime(v)
		return ok && t.Equal(w)
	case string:
		s, ok := v.(string)
		return ok && s == w
	default:
		return v == want
	}
}

// compareValues orders a stored value against a predicate scalar:
// -1, 0 or 1 when comparable.
func compareValues(v, bound any) (int, bool) {
	switch b := bound.(type) {
	case float64:
		f, ok := asNumber(v)
		if !ok {
			return 0, false
		}
		switch {
		case f < b:
			return -1, true
		case f > b:
			return 1, true
		default:
			return 0, true
		}
	case time.Time:
		t, ok := asTime(v)
		if !ok {
			return 0, false
		}
		switch {
		case t.Before(b):
			return -1, true
		case t.After(b):
			return 1, true
		default:
			return 0, true
		}
	case string:
		s, ok := v.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(s, b), true
	default:
		return 0, false
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
