package schema

import "fmt"

// FieldType is the data type of a searchable field.
type FieldType string

// Field type constants.
const (
	TypeText   FieldType = "text"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
	TypeEnum   FieldType = "enum"
)

// IsValid reports whether t is a known field type.
func (t FieldType) IsValid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeEnum:
		return true
	}
	return false
}

// Operator is a filter comparison operator. The string values are the wire
// names accepted in filter conditions.
type Operator string

// Operator constants.
const (
	OpEquals         Operator = "equals"
	OpContains       Operator = "contains"
	OpStartsWith     Operator = "starts_with"
	OpEndsWith       Operator = "ends_with"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpBetween        Operator = "between"
	OpIn             Operator = "in"
	OpNotIn          Operator = "not_in"
)

// operatorsByType is the full set of operators each field type can carry.
// Individual field descriptors declare a subset of these.
var operatorsByType = map[FieldType][]Operator{
	TypeText: {OpEquals, OpContains, OpStartsWith, OpEndsWith},
	TypeNumber: {
		OpEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual,
		OpBetween, OpIn, OpNotIn,
	},
	TypeDate: {
		OpEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual,
		OpBetween, OpIn, OpNotIn,
	},
	TypeEnum: {OpEquals, OpIn, OpNotIn},
}

// OperatorsFor returns the operators valid for a field type.
func OperatorsFor(t FieldType) []Operator {
	ops := operatorsByType[t]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// Field is an immutable descriptor of a searchable field: its data type and
// the operators filter conditions may use against it.
type Field struct {
	name      string
	fieldType FieldType
	operators []Operator
}

// NewField validates and creates a Field.
// Every operator must be valid for the field type.
func NewField(name string, ft FieldType, operators ...Operator) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if !ft.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	if len(operators) == 0 {
		return Field{}, fmt.Errorf("field %q declares no operators", name)
	}
	valid := make(map[Operator]bool, len(operatorsByType[ft]))
	for _, op := range operatorsByType[ft] {
		valid[op] = true
	}
	for _, op := range operators {
		if !valid[op] {
			return Field{}, fmt.Errorf("operator %q not valid for %s field %q", op, ft, name)
		}
	}
	ops := make([]Operator, len(operators))
	copy(ops, operators)
	return Field{name: name, fieldType: ft, operators: ops}, nil
}

// MustField calls NewField and panics on error. For static registry tables.
func MustField(name string, ft FieldType, operators ...Operator) Field {
	f, err := NewField(name, ft, operators...)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's data type.
func (f Field) FieldType() FieldType { return f.fieldType }

// Operators returns a copy of the allowed operator list.
func (f Field) Operators() []Operator {
	out := make([]Operator, len(f.operators))
	copy(out, f.operators)
	return out
}

// Allows reports whether op is permitted on this field.
func (f Field) Allows(op Operator) bool {
	for _, o := range f.operators {
		if o == op {
			return true
		}
	}
	return false
}
