package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/ringside/internal/domain/types"
)

// Client talks to the ringside HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func unexpected(method, path string, status int, body []byte) error {
	return fmt.Errorf("%w: %s %s: status %d: %s", ErrRequest, method, path, status, bytes.TrimSpace(body))
}

// Health checks that the service answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// Submit posts one event and reports whether it was a duplicate.
func (c *Client) Submit(ctx context.Context, e Event) (bool, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/events", e)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusAccepted:
		return false, nil
	case http.StatusOK:
		return true, nil
	}
	return false, unexpected(http.MethodPost, "/events", status, body)
}

// Flush asks the server to persist a snapshot row.
func (c *Client) Flush(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodPost, "/flush", nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return unexpected(http.MethodPost, "/flush", status, body)
	}
	return nil
}

// Restart opens a fresh server session and returns its id.
func (c *Client) Restart(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/session/restart", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", unexpected(http.MethodPost, "/session/restart", status, body)
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode restart response: %w", err)
	}
	return resp.SessionID, nil
}

// EndMatch ends the match with winner and returns the selected feedback.
func (c *Client) EndMatch(ctx context.Context, winner int) (types.FeedbackResponse, error) {
	var fb types.FeedbackResponse
	status, body, err := c.do(ctx, http.MethodPost, "/match/end", map[string]int{"winner": winner})
	if err != nil {
		return fb, err
	}
	if status != http.StatusOK {
		return fb, unexpected(http.MethodPost, "/match/end", status, body)
	}
	if err := json.Unmarshal(body, &fb); err != nil {
		return fb, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return fb, nil
}
