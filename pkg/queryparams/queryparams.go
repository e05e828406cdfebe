// Package queryparams holds list query parameters and pagination results.
package queryparams

import "strings"

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	DefaultSortBy  = "created_at"
	DefaultOrderBy = "desc"
)

// ListParams are the query parameters of a paginated listing.
type ListParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
	SortBy  string `query:"sort_by"`
	OrderBy string `query:"order_by"`
	Name    string `query:"name"`
}

// DefaultListParams returns first-page parameters sorted by sortBy.
func DefaultListParams(sortBy string) ListParams {
	return ListParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		SortBy:  sortBy,
		OrderBy: DefaultOrderBy,
	}
}

// Validate clamps the parameters to their allowed ranges.
func (p *ListParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	p.OrderBy = strings.ToLower(p.OrderBy)
	if p.OrderBy != "asc" && p.OrderBy != "desc" {
		p.OrderBy = DefaultOrderBy
	}
	p.Name = strings.TrimSpace(p.Name)
}

// CalculateOffset returns the row offset of the current page.
func (p ListParams) CalculateOffset() int {
	return (p.Page - 1) * p.PerPage
}

// CalculateTotalPages returns the page count for total rows.
func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// PaginationMeta describes the page a result holds.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

// PaginatedResult is one page of a listing.
type PaginatedResult struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// NewPaginatedResult builds the result of a listing page.
func NewPaginatedResult(data any, total int64, params ListParams) *PaginatedResult {
	return &PaginatedResult{
		Data: data,
		Meta: PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  total,
			TotalPages:  CalculateTotalPages(total, params.PerPage),
		},
	}
}
