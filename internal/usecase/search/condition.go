package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
	"github.com/adequity/brandflow-search/internal/domain/search/predicate"
	"github.com/adequity/brandflow-search/internal/domain/search/request"
)

// ConditionBuilder turns a single untrusted filter condition into a
// predicate, validating it against the field schema and coercing the value
// to the field type. Failures are soft: the returned error always wraps one
// of domain.ErrUnknownField, domain.ErrUnsupportedOperator or
// domain.ErrInvalidValue, and the caller drops the condition.
type ConditionBuilder struct {
	schema SchemaReader
}

// NewConditionBuilder creates a condition builder.
func NewConditionBuilder(s SchemaReader) *ConditionBuilder {
	return &ConditionBuilder{schema: s}
}

// Build validates and converts one filter condition.
func (b *ConditionBuilder) Build(entity string, c request.FilterCondition) (predicate.Predicate, error) {
	if c.Field == "" || c.Value == nil {
		return nil, fmt.Errorf("%w: condition without field or value", domain.ErrInvalidValue)
	}

	f, ok := b.schema.Describe(entity, c.Field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, c.Field)
	}

	op := schema.Operator(c.Operator)
	if op == "" {
		op = schema.OpEquals
	}
	if !f.Allows(op) {
		return nil, fmt.Errorf("%w: %q on field %q", domain.ErrUnsupportedOperator, op, c.Field)
	}

	switch f.FieldType() {
	case schema.TypeText:
		return buildTextCondition(c.Field, op, c.Value)
	case schema.TypeNumber:
		return buildScalarCondition(c.Field, op, c.Value, coerceNumber)
	case schema.TypeDate:
		return buildScalarCondition(c.Field, op, c.Value, coerceDate)
	case schema.TypeEnum:
		return buildEnumCondition(c.Field, op, c.Value)
	default:
		return nil, fmt.Errorf("%w: field type %q", domain.ErrInvalidValue, f.FieldType())
	}
}

func buildTextCondition(field string, op schema.Operator, value any) (predicate.Predicate, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: field %q expects a string, got %T", domain.ErrInvalidValue, field, value)
	}

	switch op {
	case schema.OpEquals:
		return predicate.FieldEquals{Field: field, Value: s}, nil
	case schema.OpContains:
		return predicate.TextMatch{Field: field, Value: s, Mode: predicate.MatchContains}, nil
	case schema.OpStartsWith:
		return predicate.TextMatch{Field: field, Value: s, Mode: predicate.MatchPrefix}, nil
	case schema.OpEndsWith:
		return predicate.TextMatch{Field: field, Value: s, Mode: predicate.MatchSuffix}, nil
	default:
		return nil, fmt.Errorf("%w: %q on text field %q", domain.ErrUnsupportedOperator, op, field)
	}
}

// buildScalarCondition handles number and date fields; coerce converts one
// raw element into the canonical scalar (float64 or time.Time).
func buildScalarCondition(
	field string, op schema.Operator, value any,
	coerce func(any) (any, error),
) (predicate.Predicate, error) {
	switch op {
	case schema.OpEquals, schema.OpGreaterThan, schema.OpGreaterOrEqual,
		schema.OpLessThan, schema.OpLessOrEqual:
		v, err := coerce(value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", domain.ErrInvalidValue, field, err)
		}
		switch op {
		case schema.OpEquals:
			return predicate.FieldEquals{Field: field, Value: v}, nil
		case schema.OpGreaterThan:
			return predicate.FieldRange{Field: field, Lo: v, LoExclusive: true}, nil
		case schema.OpGreaterOrEqual:
			return predicate.FieldRange{Field: field, Lo: v}, nil
		case schema.OpLessThan:
			return predicate.FieldRange{Field: field, Hi: v, HiExclusive: true}, nil
		default:
			return predicate.FieldRange{Field: field, Hi: v}, nil
		}

	case schema.OpBetween:
		vals, err := coerceList(value, coerce)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", domain.ErrInvalidValue, field, err)
		}
		if len(vals) != 2 {
			return nil, fmt.Errorf(
				"%w: between on field %q requires exactly 2 values, got %d",
				domain.ErrInvalidValue, field, len(vals),
			)
		}
		// lo > hi is executed as-is and yields an empty result.
		return predicate.FieldRange{Field: field, Lo: vals[0], Hi: vals[1]}, nil

	case schema.OpIn, schema.OpNotIn:
		vals, err := coerceList(value, coerce)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", domain.ErrInvalidValue, field, err)
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: field %q: empty value list", domain.ErrInvalidValue, field)
		}
		if op == schema.OpIn {
			return predicate.FieldIn{Field: field, Values: vals}, nil
		}
		return predicate.FieldNotIn{Field: field, Values: vals}, nil

	default:
		return nil, fmt.Errorf("%w: %q on field %q", domain.ErrUnsupportedOperator, op, field)
	}
}

func buildEnumCondition(field string, op schema.Operator, value any) (predicate.Predicate, error) {
	switch op {
	case schema.OpEquals:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a string, got %T", domain.ErrInvalidValue, field, value)
		}
		return predicate.FieldEquals{Field: field, Value: s}, nil

	case schema.OpIn, schema.OpNotIn:
		// A bare string counts as a one-element list.
		vals, err := coerceList(value, coerceEnum)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", domain.ErrInvalidValue, field, err)
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: field %q: empty value list", domain.ErrInvalidValue, field)
		}
		if op == schema.OpIn {
			return predicate.FieldIn{Field: field, Values: vals}, nil
		}
		return predicate.FieldNotIn{Field: field, Values: vals}, nil

	default:
		return nil, fmt.Errorf("%w: %q on enum field %q", domain.ErrUnsupportedOperator, op, field)
	}
}

// coerceList applies coerce to every element of a list value. A scalar is
// treated as a one-element list.
func coerceList(value any, coerce func(any) (any, error)) ([]any, error) {
	raw, ok := asList(value)
	if !ok {
		raw = []any{value}
	}
	out := make([]any, 0, len(raw))
	for _, v := range raw {
		cv, err := coerce(v)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, nil
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// coerceNumber accepts the numeric shapes JSON decoding and Go callers
// produce and normalizes them to float64.
func coerceNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", v.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("not a number: %T", value)
	}
}

// dateLayouts are tried in order. Date-only strings normalize to start of
// day UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// coerceDate parses ISO-8601 date or date-time strings to time.Time.
func coerceDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("not an ISO-8601 date: %q", v)
	default:
		return nil, fmt.Errorf("not a date: %T", value)
	}
}

func coerceEnum(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("not a string: %T", value)
	}
	return s, nil
}
