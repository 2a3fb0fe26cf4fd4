package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/briefer/pkg/pagination"
)

func config(t *testing.T) pagination.Config {
	t.Helper()
	cfg := pagination.Config{DefaultPageSize: 2, MaxPageSize: 3}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := config(t)

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"defaults", "", 1, 2},
		{"explicit", "page=2&page_size=3", 2, 3},
		{"clamped", "page=-4&page_size=50", 1, 3},
		{"garbage", "page=x&page_size=y", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)
			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
		})
	}
}

func TestSortField(t *testing.T) {
	name, desc := pagination.PageRequest{Sort: "-created_at"}.SortField()
	if name != "created_at" || !desc {
		t.Errorf("got %q desc=%v", name, desc)
	}
	name, desc = pagination.PageRequest{Sort: "filename"}.SortField()
	if name != "filename" || desc {
		t.Errorf("got %q desc=%v", name, desc)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		page       int
		want       []int
		totalPages int
	}{
		{1, []int{1, 2}, 3},
		{3, []int{5}, 3},
		{4, []int{}, 3},
	}

	for _, tt := range tests {
		result := pagination.Slice(items, pagination.PageRequest{Page: tt.page, PageSize: 2})
		if len(result.Data) != len(tt.want) {
			t.Fatalf("page %d: data = %v, want %v", tt.page, result.Data, tt.want)
		}
		for i := range tt.want {
			if result.Data[i] != tt.want[i] {
				t.Errorf("page %d: data = %v, want %v", tt.page, result.Data, tt.want)
			}
		}
		if result.Total != 5 || result.TotalPages != tt.totalPages {
			t.Errorf("page %d: total=%d pages=%d", tt.page, result.Total, result.TotalPages)
		}
	}
}

func TestFinalizeRejectsInvertedBounds(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 10, MaxPageSize: 5}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}
}
