package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextListValue(t *testing.T) {
	v, err := TextList{"A: x < y && y > z", "B: 并发"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["A: x < y && y > z","B: 并发"]`, v)

	v, err = TextList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestTextListScan(t *testing.T) {
	var l TextList
	require.NoError(t, l.Scan(`["A","C"]`))
	assert.Equal(t, TextList{"A", "C"}, l)

	require.NoError(t, l.Scan([]byte(`["B"]`)))
	assert.Equal(t, TextList{"B"}, l)

	for _, empty := range []any{nil, "", "null", " "} {
		require.NoError(t, l.Scan(empty))
		assert.Equal(t, TextList{}, l)
	}

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("{not json"))
}
