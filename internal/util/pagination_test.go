package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		page, size         int
		wantOffset, wantLt int
	}{
		{name: "defaults", page: 0, size: 0, wantOffset: 0, wantLt: DefaultPageSize},
		{name: "second page", page: 2, size: 10, wantOffset: 10, wantLt: 10},
		{name: "too large", page: 1, size: 1000, wantOffset: 0, wantLt: DefaultPageSize},
	}
	for _, tt := range tests {
		offset, limit := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, offset, tt.name)
		assert.Equal(t, tt.wantLt, limit, tt.name)
	}
}

func TestMeta(t *testing.T) {
	t.Parallel()

	m := Meta(2, 10, 10, 25)
	assert.EqualValues(t, 3, m["total_pages"])
	assert.Equal(t, true, m["has_prev"])
	assert.Equal(t, true, m["has_next"])

	assert.Equal(t, 5, ParseIntDefault("5", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
}
