package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// PageRequest is a client request for one page of data. Sort names a single
// field; a leading "-" sorts descending.
type PageRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

// Normalize clamps page and page size to the bounds in cfg.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	if r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
}

// Offset is the number of records to skip.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// SortField returns the sort field name and whether it is descending.
func (r PageRequest) SortField() (string, bool) {
	if name, ok := strings.CutPrefix(r.Sort, "-"); ok {
		return name, true
	}
	return r.Sort, false
}

// PageRequestFromQuery parses page, page_size, search, and sort from URL query values.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(values.Get("search")),
		Sort:     strings.TrimSpace(values.Get("sort")),
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult creates a PageResult with calculated total pages.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Slice pages an already filtered and ordered slice held in memory.
func Slice[T any](items []T, req PageRequest) PageResult[T] {
	total := len(items)
	start := min(req.Offset(), total)
	end := min(start+req.PageSize, total)
	return NewPageResult(items[start:end], total, req.Page, req.PageSize)
}
