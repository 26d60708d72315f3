// Package metricsource supplies channel metric snapshots, either live from
// the analytics backend or simulated when the backend is unreachable.
package metricsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/logger"
)

const (
	// lastGoodTTL is how long a live snapshot stays usable as a seed for
	// the simulated fallback.
	lastGoodTTL = 30 * time.Minute

	cacheSweepInterval = 10 * time.Minute
)

// HTTPSource fetches live metrics from the analytics backend. Successful
// snapshots are cached per channel so the fallback simulator can jitter
// around recent real values instead of inventing a channel from nothing.
type HTTPSource struct {
	baseURL  string
	client   *http.Client
	lastGood *gocache.Cache
	log      logger.Logger
}

// NewHTTPSource creates a live metric source with a bounded fetch timeout.
func NewHTTPSource(baseURL string, timeout time.Duration, log logger.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		lastGood: gocache.New(lastGoodTTL, cacheSweepInterval),
		log:      log,
	}
}

// Fetch retrieves the current snapshot for the channel. Non-2xx responses
// and malformed bodies are errors; callers fall back rather than skip the
// tick.
func (s *HTTPSource) Fetch(ctx context.Context, channelID string) (alerting.MetricSnapshot, error) {
	url := fmt.Sprintf("%s/api/v1/channels/%s/metrics", s.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return alerting.MetricSnapshot{}, fmt.Errorf("building metrics request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return alerting.MetricSnapshot{}, fmt.Errorf("fetching metrics: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return alerting.MetricSnapshot{}, fmt.Errorf("metrics endpoint returned %s", resp.Status)
	}

	var snap alerting.MetricSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return alerting.MetricSnapshot{}, fmt.Errorf("decoding metrics response: %w", err)
	}
	snap = clamp(snap)
	snap.IsFallback = false

	s.lastGood.Set(channelID, snap, gocache.DefaultExpiration)
	return snap, nil
}

// LastKnown returns the most recent live snapshot for the channel, if one
// is still fresh.
func (s *HTTPSource) LastKnown(channelID string) (alerting.MetricSnapshot, bool) {
	v, ok := s.lastGood.Get(channelID)
	if !ok {
		return alerting.MetricSnapshot{}, false
	}
	snap, ok := v.(alerting.MetricSnapshot)
	return snap, ok
}

// clamp floors negative values; rates and counts are non-negative by
// contract and a misbehaving backend should not produce impossible alerts.
func clamp(s alerting.MetricSnapshot) alerting.MetricSnapshot {
	if s.GrowthRate < 0 {
		s.GrowthRate = 0
	}
	if s.EngagementRate < 0 {
		s.EngagementRate = 0
	}
	if s.Subscribers < 0 {
		s.Subscribers = 0
	}
	if s.Views < 0 {
		s.Views = 0
	}
	return s
}
