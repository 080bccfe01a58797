package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/gymchat/internal/interpret"
	"github.com/claude/gymchat/internal/models"
)

// HTTPClient implements DataSource by calling the GymChat REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// may be empty when the server identifies callers through Tailscale.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if uid := UserIDFromContext(ctx); uid != DefaultUserID {
		req.Header.Set("X-User-ID", uid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func periodParams(period models.Period) url.Values {
	v := url.Values{}
	v.Set("period", string(period))
	return v
}

// Interpret posts text to the remote interpreter. The remote server decides
// identity; userID only travels as a header for API-key deployments.
func (c *HTTPClient) Interpret(ctx context.Context, userID, text string) (interpret.Reply, error) {
	var reply interpret.Reply
	err := c.do(WithUserID(ctx, userID), http.MethodPost, "/api/v1/interpret", nil,
		map[string]string{"text": text}, &reply)
	return reply, err
}

func (c *HTTPClient) Summary(ctx context.Context, userID string, period models.Period) (models.PeriodSummary, error) {
	var s models.PeriodSummary
	err := c.do(WithUserID(ctx, userID), http.MethodGet, "/api/v1/summary", periodParams(period), nil, &s)
	return s, err
}

func (c *HTTPClient) Records(ctx context.Context, userID string, period models.Period) ([]models.Record, error) {
	var records []models.Record
	err := c.do(WithUserID(ctx, userID), http.MethodGet, "/api/v1/records", periodParams(period), nil, &records)
	return records, err
}
