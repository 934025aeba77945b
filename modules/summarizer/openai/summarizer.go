// Package openai implements the conversation summarizer against any
// OpenAI-compatible chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/pkg/message"
)

// Compile-time interface guard.
var _ buffer.Summarizer = (*Summarizer)(nil)

// wire types for JSON serialization.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarizer calls a chat-completions endpoint to digest older messages.
type Summarizer struct {
	cfg    Config
	client *http.Client
}

// New creates a Summarizer from the config.
func New(cfg Config) (*Summarizer, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Summarizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Summarize implements buffer.Summarizer. The caller (the buffer) bounds
// the call with its own timeout and treats any error as a degraded pass.
func (s *Summarizer) Summarize(ctx context.Context, msgs []message.Message) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("summarizer.openai: no messages to summarize")
	}

	body, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(msgs)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarizer.openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("summarizer.openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.apiKey())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarizer.openai: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("summarizer.openai: status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("summarizer.openai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("summarizer.openai: empty choices in response")
	}

	digest := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if digest == "" {
		return "", fmt.Errorf("summarizer.openai: empty summary in response")
	}
	return digest, nil
}

// readErrorBody returns a bounded snippet of an error response body.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "(no body)"
	}
	return string(data)
}
