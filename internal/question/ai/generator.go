package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	chat "github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/question"
)

// Completer is the chat client the generator drives.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message, opts chat.Options) (string, error)
}

// Generator implements question.Generator on top of a chat completion model.
type Generator struct {
	client Completer
	logger zerolog.Logger
}

var _ question.Generator = (*Generator)(nil)

func NewGenerator(client Completer, logger zerolog.Logger) *Generator {
	return &Generator{
		client: client,
		logger: logger.With().Str("component", "ai_generator").Logger(),
	}
}

const systemPrompt = "You generate programming quiz questions. Follow the requested format exactly and reply with a bare JSON array, no markdown."

// Generate requests req.Count questions and parses the reply. Structural
// checks on the items are left to question.ValidateGenerated.
func (g *Generator) Generate(ctx context.Context, req question.GenerateRequest) ([]question.Candidate, error) {
	content, err := g.client.Complete(ctx, []chat.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(req)},
	}, chat.Options{Temperature: 0.3, MaxTokens: 2000})
	if err != nil {
		return nil, err
	}

	items, err := ParseCandidates(content)
	if err != nil {
		g.logger.Warn().Err(err).Str("keyword", req.Keyword).Msg("unparseable generator reply")
		return nil, fmt.Errorf("%w: %w", chat.ErrGeneration, err)
	}
	return items, nil
}

func buildPrompt(req question.GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d %s questions about %q.\n", req.Count, kindLabel(req.Type), req.Keyword)
	fmt.Fprintf(&b, "- Programming language: %s\n", req.Language)

	switch req.Type {
	case question.SingleSelect:
		b.WriteString("- Exactly one correct answer, chosen from A/B/C/D.\n")
	case question.MultiSelect:
		b.WriteString("- Two to four correct answers, listed in A, B, C, D order with no repeats.\n")
	default:
		b.WriteString("- No options or answers; set answers and rights to null.\n")
	}

	b.WriteString("\nUse exactly this JSON shape:\n")
	b.WriteString(example(req.Type))
	b.WriteString(`

Rules:
1. Multi-select rights are in A, B, C, D order.
2. Single-select has exactly one right.
3. Right letters are unique.
4. Options are prefixed "A:", "B:", "C:", "D:" in order.
5. No duplicate questions or options.
6. Every title is a question ending with "?".`)
	return b.String()
}

func kindLabel(t question.Type) string {
	switch t {
	case question.MultiSelect:
		return "multiple-choice (several answers)"
	case question.Coding:
		return "coding"
	default:
		return "single-choice"
	}
}

func example(t question.Type) string {
	switch t {
	case question.MultiSelect:
		return `[{"title": "Which statements about Python lists are true?", "answers": ["A: comprehensions are usually faster than loops", "B: slicing creates a new list", "C: append modifies the list in place", "D: lists can be dict keys"], "rights": ["A", "B", "C"]}]`
	case question.Coding:
		return `[{"title": "How would you implement depth-first search in C?", "answers": null, "rights": null}]`
	default:
		return `[{"title": "Which statement about Go concurrency is correct?", "answers": ["A: channels only carry basic types", "B: sync.Mutex suits read-heavy workloads", "C: WaitGroup.Add must be called outside the goroutine", "D: concurrent map writes need a lock"], "rights": ["D"]}]`
	}
}

var errNotArray = errors.New("reply is not a JSON array")

// ParseCandidates extracts the JSON array from a model reply, tolerating a
// surrounding markdown code fence.
func ParseCandidates(content string) ([]question.Candidate, error) {
	content = stripFence(strings.TrimSpace(content))
	if !strings.HasPrefix(content, "[") || !strings.HasSuffix(content, "]") {
		return nil, errNotArray
	}
	var items []question.Candidate
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return items, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	body = strings.TrimPrefix(body, "json")
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
