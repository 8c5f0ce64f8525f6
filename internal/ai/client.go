// Package ai talks to an OpenAI-compatible chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// ErrGeneration marks every failure to obtain usable text from the model.
var ErrGeneration = errors.New("text generation failed")

// ErrNotConfigured is returned by features whose model client is absent.
var ErrNotConfigured = errors.New("text generation not configured")

// Config holds connection details for the completions endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Client issues chat completion requests with bounded retries.
type Client struct {
	httpClient *http.Client
	cfg        Config
	endpoint   string
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 2 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		logger:     logger.With().Str("component", "ai_client").Logger(),
	}
}

// Model reports the model name sent with each request.
func (c *Client) Model() string { return c.cfg.Model }

// Complete sends the conversation and returns the first choice's content.
// Transport failures, 429 and 5xx responses and malformed bodies are retried
// with exponential backoff (RetryBase, 2*RetryBase, ...).
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrGeneration, err)
	}

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(c.cfg.RetryBase))
	attempt := 0
	var content string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		out, err := c.do(ctx, body)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("completion attempt failed")
			return err
		}
		content = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w after %d attempt(s): %w", ErrGeneration, attempt, err)
	}
	return content, nil
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("completions returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.RetryableError(statusErr)
		}
		return "", statusErr
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", retry.RetryableError(fmt.Errorf("decode completion: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", retry.RetryableError(errors.New("completion has no choices"))
	}
	return out.Choices[0].Message.Content, nil
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}
