// Package backend is the HTTP client for the analytics service's alert and
// rule endpoints. The service is optional: every failure here degrades to
// local-only alerts or the built-in default rules, never a crash.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/logger"
)

// Client talks to the analytics backend.
type Client struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// NewClient creates a backend client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type alertsResponse struct {
	Alerts []alerting.Alert `json:"alerts"`
}

type rulesResponse struct {
	Rules []alerting.AlertRule `json:"rules"`
}

// FetchAlerts returns the server-known alerts for the channel. Non-2xx and
// malformed responses are errors; the caller merges local-only instead.
func (c *Client) FetchAlerts(ctx context.Context, channelID string) ([]alerting.Alert, error) {
	var out alertsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/channels/%s/alerts", channelID), &out); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}

// FetchRules returns the server-side rule definitions for the channel. An
// empty result is valid and means the caller keeps its current rules.
func (c *Client) FetchRules(ctx context.Context, channelID string) ([]alerting.AlertRule, error) {
	var out rulesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/channels/%s/alert-rules", channelID), &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
