package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageClamps(t *testing.T) {
	cases := []struct {
		name         string
		number, size int
		want         Page
	}{
		{"in range", 2, 20, Page{2, 20}},
		{"page below one", 0, 10, Page{1, 10}},
		{"negative page", -3, 10, Page{1, 10}},
		{"zero size", 1, 0, Page{1, DefaultPageSize}},
		{"oversized", 1, 1000, Page{1, MaxPageSize}},
		{"upper bound kept", 1, 100, Page{1, 100}},
		{"lower bound kept", 1, 1, Page{1, 1}},
		{"huge page", math.MaxInt, 10, Page{maxPageNumber, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewPage(tc.number, tc.size))
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, NewPage(1, 10).Offset())
	assert.Equal(t, 10, NewPage(2, 10).Offset())
	assert.Equal(t, 200, NewPage(3, 100).Offset())

	for _, number := range []int{math.MaxInt / 5, math.MaxInt / 10, math.MaxInt} {
		for _, size := range []int{1, 10, MaxPageSize} {
			assert.GreaterOrEqual(t, NewPage(number, size).Offset(), 0, "page %d size %d", number, size)
		}
	}
}

func TestPageInfo(t *testing.T) {
	info := NewPage(2, 10).Info(15)
	assert.Equal(t, 2, info.TotalPages)
	assert.True(t, info.HasPrev)
	assert.False(t, info.HasNext)
	if assert.NotNil(t, info.PrevPage) {
		assert.Equal(t, 1, *info.PrevPage)
	}
	assert.Nil(t, info.NextPage)

	empty := NewPage(1, 10).Info(0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasPrev)
	assert.False(t, empty.HasNext)

	first := NewPage(1, 10).Info(30)
	assert.Equal(t, 3, first.TotalPages)
	if assert.NotNil(t, first.NextPage) {
		assert.Equal(t, 2, *first.NextPage)
	}
}

func TestNewWindow(t *testing.T) {
	ptr := func(v int) *int { return &v }

	assert.Equal(t, Window{Limit: DefaultWindowLimit}, NewWindow(nil, nil))
	assert.Equal(t, Window{Limit: MaxPageSize, Offset: 5}, NewWindow(ptr(500), ptr(5)))
	assert.Equal(t, Window{Limit: DefaultPageSize}, NewWindow(ptr(0), ptr(-2)))
	assert.Equal(t, Window{Limit: 20, Offset: 40}, NewWindow(ptr(20), ptr(40)))
}
