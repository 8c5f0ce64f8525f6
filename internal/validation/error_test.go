package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(StageStructure, "title_required", "title", "title must not be empty")
	assert.Equal(t, -1, err.Index)
	assert.Equal(t, "validation failed at structure (title_required): title must not be empty", err.Error())

	at := err.At(3)
	assert.Equal(t, 3, at.Index)
	assert.Equal(t, -1, err.Index, "At must not mutate the receiver")
	assert.Contains(t, at.Error(), "item 3")
}

func TestAsUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("create question: %w", New(StageTypeRules, "rights_count", "rights", "bad"))

	verr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, StageTypeRules, verr.Stage)
	assert.Equal(t, "rights_count", verr.Rule)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
