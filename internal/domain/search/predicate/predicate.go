// Package predicate defines the storage-agnostic condition tree produced by
// the search engine. Storage adapters lower a Predicate into their own query
// language; the engine itself never issues storage-specific calls.
package predicate

// Predicate is a boolean condition over the fields of a single entity.
// It is a sealed union: MatchAll, FieldEquals, FieldRange, FieldIn,
// FieldNotIn, TextMatch, And, Or.
//
// Scalar values inside a predicate are already coerced: numbers are float64,
// dates are time.Time, everything else is string. Adapters may type-switch
// on exactly those three.
type Predicate interface {
	pred()
}

// MatchAll matches every row. Produced when a request carries neither
// filters nor query text.
type MatchAll struct{}

// FieldEquals matches rows whose field equals Value exactly.
type FieldEquals struct {
	Field string
	Value any
}

// FieldRange matches rows whose field lies between Lo and Hi. A nil bound
// is open; an exclusive flag turns >= / <= into > / <.
type FieldRange struct {
	Field       string
	Lo, Hi      any
	LoExclusive bool
	HiExclusive bool
}

// FieldIn matches rows whose field equals any of Values.
type FieldIn struct {
	Field  string
	Values []any
}

// FieldNotIn matches rows whose field equals none of Values.
type FieldNotIn struct {
	Field  string
	Values []any
}

// MatchMode anchors a text match.
type MatchMode int

// Text match anchor modes.
const (
	MatchContains MatchMode = iota
	MatchPrefix
	MatchSuffix
)

// TextMatch matches rows whose field contains / starts with / ends with
// Value, case-insensitively.
type TextMatch struct {
	Field string
	Value string
	Mode  MatchMode
}

// And matches rows satisfying every child predicate.
type And struct {
	Preds []Predicate
}

// Or matches rows satisfying at least one child predicate.
type Or struct {
	Preds []Predicate
}

func (MatchAll) pred()    {}
func (FieldEquals) pred() {}
func (FieldRange) pred()  {}
func (FieldIn) pred()     {}
func (FieldNotIn) pred()  {}
func (TextMatch) pred()   {}
func (And) pred()         {}
func (Or) pred()          {}
