package domain

import "strings"

// Sort directions accepted by PageRequest.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageRequest carries pagination and sorting parameters for listings.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// Normalize clamps page/size into sane bounds and defaults the sort to
// creation time, newest first.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 || p.Size > 100 {
		p.Size = 20
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
		p.SortDir = SortDesc
	}
	if !strings.EqualFold(p.SortDir, SortDesc) {
		p.SortDir = SortAsc
	} else {
		p.SortDir = SortDesc
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of populated products plus its metadata.
type Page struct {
	Items         []*Product `json:"items"`
	TotalElements int64      `json:"total_elements"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalPages    int        `json:"total_pages"`
}

// NewPage builds page metadata for items. The page count is
// floor(total/size), not ceiling: a trailing partial page is not counted.
func NewPage(items []*Product, total int64, page, size int) *Page {
	totalPages := 0
	if size > 0 {
		totalPages = int(total) / size
	}
	return &Page{
		Items:         items,
		TotalElements: total,
		Page:          page,
		Size:          size,
		TotalPages:    totalPages,
	}
}
