package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMetaHasMore(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		limit   int
		total   int64
		hasMore bool
	}{
		{"first of many", 1, 20, 100, true},
		{"last full page", 5, 20, 100, false},
		{"partial last page", 2, 20, 25, false},
		{"one before partial last", 1, 20, 25, true},
		{"exactly one page", 1, 20, 20, false},
		{"empty result", 1, 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPaginationMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.hasMore, meta.HasMore)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.page, meta.Page)
			assert.Equal(t, tt.limit, meta.Limit)
		})
	}
}
