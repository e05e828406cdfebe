package queryparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListParams_Validate(t *testing.T) {
	p := ListParams{Page: -3, PerPage: 500, OrderBy: "ASC", Name: "  survey "}
	p.Validate()

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, DefaultSortBy, p.SortBy)
	assert.Equal(t, "asc", p.OrderBy)
	assert.Equal(t, "survey", p.Name)

	p = ListParams{OrderBy: "sideways"}
	p.Validate()
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, DefaultOrderBy, p.OrderBy)
}

func TestCalculateOffset(t *testing.T) {
	assert.Equal(t, 0, DefaultListParams("id").CalculateOffset())
	assert.Equal(t, 40, ListParams{Page: 3, PerPage: 20}.CalculateOffset())
}

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateTotalPages(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

func TestNewPaginatedResult(t *testing.T) {
	params := ListParams{Page: 2, PerPage: 10}
	res := NewPaginatedResult([]int{1, 2}, 25, params)
	assert.Equal(t, PaginationMeta{CurrentPage: 2, PerPage: 10, TotalItems: 25, TotalPages: 3}, res.Meta)
}
