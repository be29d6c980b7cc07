// Package result defines search result rows and pagination metadata.
package result

// Row is an opaque storage record: column name to value. Relation
// summaries, when requested, appear as nested Rows.
type Row map[string]any

// Page is one page of search results plus pagination metadata.
type Page struct {
	Data        []Row
	Total       int64
	Page        int
	PageSize    int
	TotalPages  int
	HasNext     bool
	HasPrevious bool

	// Warnings lists filter conditions dropped from the predicate set,
	// one message per dropped condition.
	Warnings []string
}

// NewPage computes pagination metadata for a page of data.
// totalPages = ceil(total/pageSize); hasNext = page < totalPages;
// hasPrevious = page > 1.
func NewPage(data []Row, total int64, page, pageSize int) *Page {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Page{
		Data:        data,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
