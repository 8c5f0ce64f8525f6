package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/ai"
)

const (
	adviceTemperature = 0.7
	adviceMaxTokens   = 1500
)

const adviceSystemPrompt = "You are a professional PUBG esports player and strategy expert who gives players " +
	"practical advice and strategic guidance. Return the advice directly without wrapping it in a markdown code block."

const advicePrompt = `Write a PUBG improvement guide of about 500 words for a player who wants to raise their win rate.

Cover these four areas:

1. Core skills: aiming and recoil control, movement, looting efficiency.
2. Tactical decisions: drop spots, rotations and reading the circle, when to fight and when to avoid.
3. Combat details: positioning and cover, peeking, throwables, finishing knocked enemies.
4. Mindset and teamwork: communication, role split, staying calm late game.

Requirements:
- Give 3 to 5 concrete, actionable points per area.
- Use markdown headings and bullet lists.
- Keep the language concise and practical.`

// Completer is the chat completion call the advice writer depends on.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error)
}

// AdviceWriter asks the model for a general PUBG strategy guide.
type AdviceWriter struct {
	client Completer
	logger zerolog.Logger
}

func NewAdviceWriter(client Completer, logger zerolog.Logger) *AdviceWriter {
	return &AdviceWriter{
		client: client,
		logger: logger.With().Str("component", "advice_writer").Logger(),
	}
}

// Write returns trimmed advice text. Empty output counts as a generation
// failure.
func (w *AdviceWriter) Write(ctx context.Context) (string, error) {
	content, err := w.client.Complete(ctx, []ai.Message{
		{Role: "system", Content: adviceSystemPrompt},
		{Role: "user", Content: advicePrompt},
	}, ai.Options{Temperature: adviceTemperature, MaxTokens: adviceMaxTokens})
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty advice", ai.ErrGeneration)
	}
	w.logger.Debug().Int("chars", len(content)).Msg("advice generated")
	return content, nil
}
