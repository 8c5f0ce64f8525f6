package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	chat "github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/question"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, messages []chat.Message, opts chat.Options) (string, error) {
	args := m.Called(ctx, messages, opts)
	return args.String(0), args.Error(1)
}

func TestParseCandidates(t *testing.T) {
	items, err := ParseCandidates("```json\n[{\"title\":\"Q?\",\"answers\":null,\"rights\":null}]\n```")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Q?", items[0].Title)
	assert.Nil(t, items[0].Answers)

	items, err = ParseCandidates("  ```\n[]\n```  ")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ParseCandidates(`{"questions": []}`)
	assert.ErrorIs(t, err, errNotArray)

	_, err = ParseCandidates(`[{"title": }]`)
	assert.Error(t, err)
}

func TestGeneratorGenerate(t *testing.T) {
	client := new(mockCompleter)
	gen := NewGenerator(client, zerolog.Nop())
	req := question.GenerateRequest{Keyword: "goroutines", Language: "go", Type: question.MultiSelect, Count: 3}

	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []chat.Message) bool {
		return len(msgs) == 2 && msgs[0].Role == "system" &&
			assert.Contains(t, msgs[1].Content, `"goroutines"`) &&
			assert.Contains(t, msgs[1].Content, "Two to four correct answers")
	}), chat.Options{Temperature: 0.3, MaxTokens: 2000}).
		Return(`[{"title":"A?","answers":["A: 1","B: 2","C: 3","D: 4"],"rights":["A","C"]}]`, nil).Once()

	items, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"A", "C"}, items[0].Rights)
	client.AssertExpectations(t)
}

func TestGeneratorWrapsBadReplies(t *testing.T) {
	client := new(mockCompleter)
	gen := NewGenerator(client, zerolog.Nop())
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("sorry, I can't", nil).Once()

	_, err := gen.Generate(context.Background(), question.GenerateRequest{Keyword: "x", Count: 3, Type: question.SingleSelect})
	assert.ErrorIs(t, err, chat.ErrGeneration)
}

func TestGeneratorPassesClientErrors(t *testing.T) {
	client := new(mockCompleter)
	gen := NewGenerator(client, zerolog.Nop())
	boom := errors.Join(chat.ErrGeneration, errors.New("timeout"))
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", boom).Once()

	_, err := gen.Generate(context.Background(), question.GenerateRequest{Keyword: "x", Count: 3, Type: question.Coding})
	assert.ErrorIs(t, err, chat.ErrGeneration)
}
