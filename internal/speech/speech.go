// Package speech sends recorded audio to a speech-to-text endpoint.
package speech

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

	"github.com/claude/gymchat/internal/observability"
)

// ErrUnavailable wraps network, status and decoding failures.
var ErrUnavailable = errors.New("speech service unavailable")

// Error is a failure reported by the service inside a well-formed envelope.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("speech service error %d: %s", e.Code, e.Message)
}

// Config describes the transcription endpoint.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client transcribes audio.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client. A zero Timeout means 60 seconds.
func New(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Format      string `json:"format"`
}

type envelope struct {
	ErrCode int    `json:"errCode"`
	ErrMsg  string `json:"errMsg"`
	Data    struct {
		Text string `json:"text"`
	} `json:"data"`
}

// Transcribe returns the text spoken in audioBase64. format names the audio
// container, e.g. "mp3".
func (c *Client) Transcribe(ctx context.Context, audioBase64, format string) (string, error) {
	text, err := c.transcribe(ctx, audioBase64, format)
	observability.RecordTranscription(err)
	if err != nil {
		c.log.Warn("transcription failed", "error", err)
	}
	return text, err
}

func (c *Client) transcribe(ctx context.Context, audioBase64, format string) (string, error) {
	body, err := json.Marshal(transcribeRequest{AudioBase64: audioBase64, Format: format})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", ErrUnavailable, err)
	}
	if env.ErrCode != 0 {
		return "", &Error{Code: env.ErrCode, Message: env.ErrMsg}
	}
	return strings.TrimSpace(env.Data.Text), nil
}
