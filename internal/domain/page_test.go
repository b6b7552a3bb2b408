package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input PageRequest
		want  PageRequest
	}{
		{
			name:  "defaults applied to zero request",
			input: PageRequest{},
			want:  PageRequest{Page: 0, Size: 20, SortBy: "created_at", SortDir: SortDesc},
		},
		{
			name:  "negative page clamped to zero",
			input: PageRequest{Page: -3, Size: 10, SortBy: "name", SortDir: "asc"},
			want:  PageRequest{Page: 0, Size: 10, SortBy: "name", SortDir: SortAsc},
		},
		{
			name:  "oversized page size falls back to default",
			input: PageRequest{Page: 1, Size: 500, SortBy: "price", SortDir: "desc"},
			want:  PageRequest{Page: 1, Size: 20, SortBy: "price", SortDir: SortDesc},
		},
		{
			name:  "unknown direction becomes ascending",
			input: PageRequest{Page: 0, Size: 10, SortBy: "price", SortDir: "sideways"},
			want:  PageRequest{Page: 0, Size: 10, SortBy: "price", SortDir: SortAsc},
		},
		{
			name:  "direction case is ignored",
			input: PageRequest{Page: 0, Size: 10, SortBy: "price", SortDir: "DESC"},
			want:  PageRequest{Page: 0, Size: 10, SortBy: "price", SortDir: SortDesc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.input.Normalize())
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 0, Size: 20}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 2, Size: 20}.Offset())
}

func TestNewPage_FloorPageCount(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		size       int
		totalPages int
	}{
		{"exact multiple", 30, 10, 3},
		{"trailing partial page dropped", 25, 10, 2},
		{"single short page", 12, 10, 1},
		{"fewer elements than one page", 5, 10, 0},
		{"empty result", 0, 10, 0},
		{"zero size guarded", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(nil, tt.total, 0, tt.size)
			assert.Equal(t, tt.totalPages, page.TotalPages)
			assert.Equal(t, tt.total, page.TotalElements)
		})
	}
}
