package domain

import "errors"

// Hard errors abort the whole request.
var (
	// ErrEntityNotRegistered signals an unknown searchable entity name.
	ErrEntityNotRegistered = errors.New("entity not registered")
	// ErrStorage wraps a storage backend failure.
	ErrStorage = errors.New("storage error")
)

// Soft errors cause a single filter condition to be dropped; the search
// itself still succeeds.
var (
	// ErrUnknownField signals a filter on a field the entity does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedOperator signals an operator the field does not allow.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrInvalidValue signals a value that cannot be coerced to the field type.
	ErrInvalidValue = errors.New("invalid value")
)

// IsSoft reports whether err is a drop-the-condition error rather than a
// request-aborting one.
func IsSoft(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrUnsupportedOperator) ||
		errors.Is(err, ErrInvalidValue)
}
