package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name          string
		p             Pagination
		offset, limit int
	}{
		{"página 1", PagePagination{Page: 1, PageSize: 25}, 0, 25},
		{"página 3", PagePagination{Page: 3, PageSize: 10}, 20, 10},
		{"página 0", PagePagination{Page: 0, PageSize: 10}, 0, 10},
		{"offset", OffsetPagination{Offset: 5, Limit: 2}, 5, 2},
		{"nil", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := Window(tt.p)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestPagePagination_ToOffset(t *testing.T) {
	assert.Equal(t, OffsetPagination{Limit: 25, Offset: 50}, PagePagination{Page: 3, PageSize: 25}.ToOffset())
}
