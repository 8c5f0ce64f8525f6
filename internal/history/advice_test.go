package history

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/223nobody/GameAnalysis/internal/ai"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	args := m.Called(ctx, messages, opts)
	return args.String(0), args.Error(1)
}

func TestAdviceWriterTrimsOutput(t *testing.T) {
	client := new(mockCompleter)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []ai.Message) bool {
		return len(msgs) == 2 && msgs[0].Role == "system" && msgs[1].Role == "user"
	}), ai.Options{Temperature: 0.7, MaxTokens: 1500}).Return("\n  ## Core skills\n- aim  \n", nil).Once()

	content, err := NewAdviceWriter(client, zerolog.Nop()).Write(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "## Core skills\n- aim", content)
	client.AssertExpectations(t)
}

func TestAdviceWriterErrors(t *testing.T) {
	client := new(mockCompleter)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("   ", nil).Once()
	_, err := NewAdviceWriter(client, zerolog.Nop()).Write(context.Background())
	assert.ErrorIs(t, err, ai.ErrGeneration)

	upstream := errors.New("boom")
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", upstream).Once()
	_, err = NewAdviceWriter(client, zerolog.Nop()).Write(context.Background())
	assert.ErrorIs(t, err, upstream)
}
