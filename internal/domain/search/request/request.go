package request

// Pagination and sort defaults. Out-of-range values are replaced by the
// default rather than clamped to the boundary.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// FilterCondition is a single untrusted filter clause as received from the
// caller. Field and Operator are validated against the schema registry and
// Value is coerced per field type when the condition is built; invalid
// conditions are dropped, never fatal.
type FilterCondition struct {
	Field    string
	Operator string
	Value    any
}

// Request is a normalized search request. Construction never fails:
// invalid paging and sort values are replaced by documented defaults.
type Request struct {
	queryText        string
	filters          []FilterCondition
	sortBy           string
	sortDesc         bool
	page             int
	pageSize         int
	includeRelations bool
}

// New normalizes search parameters.
// page < 1 becomes 1; pageSize outside [1,100] becomes 20; any sortOrder
// other than "asc" sorts descending.
func New(
	queryText string,
	filters []FilterCondition,
	sortBy, sortOrder string,
	page, pageSize int,
	includeRelations bool,
) Request {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	fs := make([]FilterCondition, len(filters))
	copy(fs, filters)

	return Request{
		queryText:        queryText,
		filters:          fs,
		sortBy:           sortBy,
		sortDesc:         sortOrder != OrderAsc,
		page:             page,
		pageSize:         pageSize,
		includeRelations: includeRelations,
	}
}

// QueryText returns the free-text search term ("" when absent).
func (r Request) QueryText() string { return r.queryText }

// Filters returns the raw filter conditions.
func (r Request) Filters() []FilterCondition { return r.filters }

// SortBy returns the requested sort field ("" when absent).
func (r Request) SortBy() string { return r.sortBy }

// SortDesc reports whether the sort is descending.
func (r Request) SortDesc() bool { return r.sortDesc }

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// PageSize returns the normalized page size.
func (r Request) PageSize() int { return r.pageSize }

// IncludeRelations reports whether denormalized relation summaries should
// be embedded in the result rows.
func (r Request) IncludeRelations() bool { return r.includeRelations }
