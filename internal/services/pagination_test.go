package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name        string
		currentPage int
		totalPages  int
		want        []int
	}{
		{"no pages", 1, 0, nil},
		{"single page", 1, 1, []int{1}},
		{"all pages fit", 3, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{"near the start", 1, 20, []int{1, 2, 3, 4, 5, PageGap, 20}},
		{"start boundary", 4, 20, []int{1, 2, 3, 4, 5, PageGap, 20}},
		{"middle", 10, 20, []int{1, PageGap, 9, 10, 11, PageGap, 20}},
		{"first centred page", 5, 20, []int{1, PageGap, 4, 5, 6, PageGap, 20}},
		{"end boundary", 17, 20, []int{1, PageGap, 16, 17, 18, 19, 20}},
		{"near the end", 20, 20, []int{1, PageGap, 16, 17, 18, 19, 20}},
		{"current clamped low", 0, 20, []int{1, 2, 3, 4, 5, PageGap, 20}},
		{"current clamped high", 99, 20, []int{1, PageGap, 16, 17, 18, 19, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageWindow(tt.currentPage, tt.totalPages))
		})
	}
}

func TestPageWindowInvariants(t *testing.T) {
	for totalPages := 1; totalPages <= 30; totalPages++ {
		for currentPage := 1; currentPage <= totalPages; currentPage++ {
			window := PageWindow(currentPage, totalPages)

			assert.LessOrEqual(t, len(window), 7, "window too long for page %d of %d", currentPage, totalPages)

			found := false
			for _, p := range window {
				if p == currentPage {
					found = true
				}
				if p != PageGap {
					assert.GreaterOrEqual(t, p, 1)
					assert.LessOrEqual(t, p, totalPages)
				}
			}
			assert.True(t, found, "current page %d missing from window of %d pages", currentPage, totalPages)

			if totalPages > 7 {
				assert.Equal(t, 1, window[0])
				assert.Equal(t, totalPages, window[len(window)-1])
			}
		}
	}
}

func TestTotalPages(t *testing.T) {
	// An empty result set still renders one page
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 5, TotalPages(100, 20))
	// Degenerate page size falls back to one entry per page
	assert.Equal(t, 3, TotalPages(3, 0))
}
