package chi

import (
	"github.com/adequity/brandflow-search/internal/domain/schema"
	"github.com/adequity/brandflow-search/internal/domain/search/request"
	"github.com/adequity/brandflow-search/internal/domain/search/result"
	"github.com/adequity/brandflow-search/internal/usecase/stats"
)

// searchRequestDTO is the body of POST /api/v1/search/{entity}.
type searchRequestDTO struct {
	QueryText        string               `json:"query_text"`
	Filters          []filterConditionDTO `json:"filters"`
	SortBy           string               `json:"sort_by"`
	SortOrder        string               `json:"sort_order"`
	Page             int                  `json:"page"`
	PageSize         int                  `json:"page_size"`
	IncludeRelations *bool                `json:"include_relations"`
}

type filterConditionDTO struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

func (d searchRequestDTO) toRequest() request.Request {
	filters := make([]request.FilterCondition, len(d.Filters))
	for i, f := range d.Filters {
		filters[i] = request.FilterCondition{
			Field:    f.Field,
			Operator: f.Operator,
			Value:    f.Value,
		}
	}
	includeRelations := true
	if d.IncludeRelations != nil {
		includeRelations = *d.IncludeRelations
	}
	page := d.Page
	if page == 0 {
		page = request.DefaultPage
	}
	pageSize := d.PageSize
	if pageSize == 0 {
		pageSize = request.DefaultPageSize
	}
	return request.New(d.QueryText, filters, d.SortBy, d.SortOrder, page, pageSize, includeRelations)
}

// pageDTO is the paginated search response.
type pageDTO struct {
	Data        []result.Row `json:"data"`
	Total       int64        `json:"total"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
	Warnings    []string     `json:"warnings,omitempty"`
}

func pageToDTO(p *result.Page) pageDTO {
	data := p.Data
	if data == nil {
		data = []result.Row{}
	}
	return pageDTO{
		Data:        data,
		Total:       p.Total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
		Warnings:    p.Warnings,
	}
}

// fieldDTO describes one searchable field.
type fieldDTO struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Operators []string `json:"operators"`
}

func fieldsToDTO(fields []schema.Field) []fieldDTO {
	out := make([]fieldDTO, len(fields))
	for i, f := range fields {
		ops := f.Operators()
		names := make([]string, len(ops))
		for j, op := range ops {
			names[j] = string(op)
		}
		out[i] = fieldDTO{
			Name:      f.Name(),
			Type:      string(f.FieldType()),
			Operators: names,
		}
	}
	return out
}

type fieldsResponseDTO struct {
	Entity string     `json:"entity"`
	Fields []fieldDTO `json:"fields"`
}

type suggestionsResponseDTO struct {
	Suggestions []string `json:"suggestions"`
}

type quickSearchResponseDTO struct {
	Query   string             `json:"query"`
	Results map[string]pageDTO `json:"results"`
}

// statsResponseDTO is the per-entity statistics report.
type statsResponseDTO struct {
	Entity        string                      `json:"entity"`
	Distributions map[string]map[string]int64 `json:"distributions"`
	Numbers       map[string]numericStatsDTO  `json:"numbers"`
}

type numericStatsDTO struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

func statsToDTO(rep *stats.Report) statsResponseDTO {
	numbers := make(map[string]numericStatsDTO, len(rep.Numbers))
	for name, s := range rep.Numbers {
		numbers[name] = numericStatsDTO{
			Count:   s.Count,
			Average: s.Average,
			Minimum: s.Minimum,
			Maximum: s.Maximum,
		}
	}
	return statsResponseDTO{
		Entity:        rep.Entity,
		Distributions: rep.Distributions,
		Numbers:       numbers,
	}
}

// errorResponseDTO is the uniform error body.
type errorResponseDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
