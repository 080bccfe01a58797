// Package resolver asks an OpenAI-compatible chat-completions endpoint to
// classify utterances the lexical parser could not handle.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/claude/gymchat/internal/models"
	"github.com/claude/gymchat/internal/observability"
)

// ErrUnavailable wraps every network, status and decoding failure.
var ErrUnavailable = errors.New("semantic resolver unavailable")

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Config describes the extraction endpoint.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client resolves utterances through the extraction endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client. A zero Timeout means 30 seconds.
func New(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Resolve classifies text, using last as inheritance context when non-nil.
// It makes exactly one request; failures are returned wrapping ErrUnavailable.
func (c *Client) Resolve(ctx context.Context, text string, last *models.Record) (models.Intent, error) {
	start := time.Now()
	content, err := c.complete(ctx, text, last)
	observability.RecordResolve(err, time.Since(start))
	if err != nil {
		return models.Intent{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	intent, err := decodeIntent(content)
	if err != nil {
		c.log.Warn("resolver returned undecodable content", "error", err, "content", truncate(content, maxErrorBody))
		return models.Intent{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return intent, nil
}

func (c *Client) complete(ctx context.Context, text string, last *models.Record) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: buildPrompt(last)},
			{Role: "user", Content: text},
		},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
