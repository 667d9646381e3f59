package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/satindergrewal/voicepad/internal/musicpad"
)

// Client talks to a running voicepad server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Status fetches /api/status.
func (c *Client) Status(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return snap, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return snap, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("status returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode status: %w", err)
	}
	return snap, nil
}

// Start asks the server to play. A host without audio yields
// musicpad.ErrUnsupported together with the reported status.
func (c *Client) Start(ctx context.Context) (musicpad.Status, error) {
	return c.post(ctx, "/api/music/start")
}

// Stop asks the server to fade out.
func (c *Client) Stop(ctx context.Context) (musicpad.Status, error) {
	return c.post(ctx, "/api/music/stop")
}

func (c *Client) post(ctx context.Context, path string) (musicpad.Status, error) {
	var st musicpad.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return st, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusServiceUnavailable:
	default:
		return st, fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return st, musicpad.ErrUnsupported
	}
	return st, nil
}
