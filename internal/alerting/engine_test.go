package alerting

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelpulse/channelpulse-go/internal/logger"
)

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

// stubSource returns a fixed snapshot or error.
type stubSource struct {
	snapshot MetricSnapshot
	err      error
}

func (s *stubSource) Fetch(context.Context, string) (MetricSnapshot, error) {
	return s.snapshot, s.err
}

// stubBackend returns fixed alerts/rules or errors.
type stubBackend struct {
	alerts    []Alert
	alertsErr error
	rules     []AlertRule
	rulesErr  error
}

func (b *stubBackend) FetchAlerts(context.Context, string) ([]Alert, error) {
	return b.alerts, b.alertsErr
}

func (b *stubBackend) FetchRules(context.Context, string) ([]AlertRule, error) {
	return b.rules, b.rulesErr
}

// recordingPublisher captures every published collection.
type recordingPublisher struct {
	mu      sync.Mutex
	updates []AlertCollection
}

func (p *recordingPublisher) PublishAlerts(alerts AlertCollection, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, alerts)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

// recordingSink captures fired alerts.
type recordingSink struct {
	mu    sync.Mutex
	fired []Alert
	err   error
}

func (s *recordingSink) RecordFired(_ context.Context, a Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = append(s.fired, a)
	return s.err
}

func growthRule(threshold float64) AlertRule {
	return AlertRule{ID: "r-growth", Name: "Growth spike", Type: RuleTypeGrowth, Condition: ConditionGreaterThan, Threshold: threshold, Enabled: true}
}

func TestEngine_TickFiresMatchingRule(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	pub := &recordingPublisher{}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{
		Surge:     surgeNever,
		Publisher: pub,
	})

	engine.Tick(t.Context())

	alerts := engine.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "r-growth", alerts[0].RuleID)
	assert.Contains(t, alerts[0].Message, "20")
	assert.Contains(t, alerts[0].Message, "15")
	assert.Equal(t, 1, engine.UnreadCount())
	assert.Equal(t, 1, pub.count())
}

func TestEngine_CooldownAcrossTicks(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	now := time.Now()
	clock := now
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{
		Surge:    surgeNever,
		Cooldown: 5 * time.Minute,
		Now:      func() time.Time { return clock },
	})

	engine.Tick(t.Context())
	require.Len(t, engine.Alerts(), 1)

	// 60s later the condition still holds; cooldown suppresses.
	clock = now.Add(60 * time.Second)
	engine.Tick(t.Context())
	assert.Len(t, engine.Alerts(), 1, "refire within cooldown must be suppressed")

	// 310s later the window has passed.
	clock = now.Add(310 * time.Second)
	engine.Tick(t.Context())
	assert.Len(t, engine.Alerts(), 2, "rule may fire again after cooldown")
}

func TestEngine_FetchFailureStillEvaluates(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	// A milestone at 0 triggers even on the empty fallback snapshot,
	// proving evaluation ran despite the failed fetch.
	rule := AlertRule{ID: "r-m", Name: "Any subscribers", Type: RuleTypeSubscribers, Condition: ConditionMilestone, Threshold: 0, Enabled: true}
	engine := NewEngine(source, NewRuleSet([]AlertRule{rule}), testLogger(), Options{Surge: surgeNever})

	engine.Tick(t.Context())

	require.Len(t, engine.Alerts(), 1)
}

func TestEngine_ServerWinsOnMerge(t *testing.T) {
	ts := time.Now()
	source := &stubSource{snapshot: MetricSnapshot{}}
	be := &stubBackend{alerts: []Alert{{ID: "a1", RuleID: "r1", Timestamp: ts, Read: true}}}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(50)}), testLogger(), Options{Surge: surgeNever, Backend: be})

	// Local copy of the same alert, unread.
	engine.publish(AlertCollection{{ID: "a1", RuleID: "r1", Timestamp: ts, Read: false}})
	engine.Tick(t.Context())

	alerts := engine.Alerts()
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Read, "server read state wins on shared id")
	assert.Equal(t, 0, engine.UnreadCount())
}

func TestEngine_BackendFailureKeepsLocalAlerts(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	be := &stubBackend{alertsErr: errors.New("503")}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{Surge: surgeNever, Backend: be})

	engine.Tick(t.Context())

	assert.Len(t, engine.Alerts(), 1, "backend failure must not lose local alerts")
}

func TestEngine_CollectionBounded(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	clock := time.Now()
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{
		Surge:     surgeNever,
		Cooldown:  time.Millisecond,
		MaxAlerts: 5,
		Now:       func() time.Time { return clock },
	})

	for i := 0; i < 10; i++ {
		clock = clock.Add(time.Second)
		engine.Tick(t.Context())
	}

	alerts := engine.Alerts()
	assert.Len(t, alerts, 5)
	for i := 1; i < len(alerts); i++ {
		assert.False(t, alerts[i].Timestamp.After(alerts[i-1].Timestamp))
	}
}

func TestEngine_HistoryRecordedForFreshAlerts(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	sink := &recordingSink{}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{
		Surge:   surgeNever,
		History: sink,
	})

	engine.Tick(t.Context())
	engine.Tick(t.Context()) // suppressed by cooldown, no second record

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.fired, 1)
	assert.Equal(t, "r-growth", sink.fired[0].RuleID)
}

func TestEngine_HistorySinkErrorDoesNotBreakTick(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	sink := &recordingSink{err: errors.New("disk full")}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{
		Surge:   surgeNever,
		History: sink,
	})

	engine.Tick(t.Context())

	assert.Len(t, engine.Alerts(), 1, "history failure is logged, not propagated")
}

func TestEngine_MarkAlertRead(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{Surge: surgeNever})
	engine.Tick(t.Context())

	id := engine.Alerts()[0].ID
	assert.True(t, engine.MarkAlertRead(id))
	assert.Equal(t, 0, engine.UnreadCount())

	assert.False(t, engine.MarkAlertRead("missing"), "unknown id is a no-op")
}

func TestEngine_DeleteAlert(t *testing.T) {
	source := &stubSource{snapshot: MetricSnapshot{GrowthRate: 20}}
	engine := NewEngine(source, NewRuleSet([]AlertRule{growthRule(15)}), testLogger(), Options{Surge: surgeNever})
	engine.Tick(t.Context())

	id := engine.Alerts()[0].ID
	assert.True(t, engine.DeleteAlert(id))
	assert.Empty(t, engine.Alerts())
	assert.False(t, engine.DeleteAlert(id), "second delete is a no-op")
}

func TestEngine_BootstrapLoadsBackendState(t *testing.T) {
	ts := time.Now()
	be := &stubBackend{
		rules:  []AlertRule{{ID: "srv-1", Name: "Server rule", Type: RuleTypeGrowth, Condition: ConditionGreaterThan, Threshold: 5, Enabled: true}},
		alerts: []Alert{{ID: "a1", RuleID: "srv-1", Timestamp: ts}},
	}
	engine := NewEngine(&stubSource{}, NewRuleSet(nil), testLogger(), Options{Surge: surgeNever, Backend: be})

	engine.Bootstrap(t.Context())

	require.Len(t, engine.Rules(), 1)
	assert.Equal(t, "srv-1", engine.Rules()[0].ID)
	require.Len(t, engine.Alerts(), 1)
}

func TestEngine_BootstrapDegradesOnBackendFailure(t *testing.T) {
	be := &stubBackend{rulesErr: errors.New("down"), alertsErr: errors.New("down")}
	engine := NewEngine(&stubSource{}, NewRuleSet(nil), testLogger(), Options{Surge: surgeNever, Backend: be})

	engine.Bootstrap(t.Context())

	assert.Len(t, engine.Rules(), len(DefaultRules()), "defaults survive a dead backend")
	assert.Empty(t, engine.Alerts())
}

func TestEngine_AddRuleValidation(t *testing.T) {
	engine := NewEngine(&stubSource{}, NewRuleSet(nil), testLogger(), Options{Surge: surgeNever})

	_, err := engine.AddRule(AlertRule{Name: "  "})
	assert.ErrorIs(t, err, ErrEmptyRuleName)

	added, err := engine.AddRule(AlertRule{Name: "Big growth", Type: RuleTypeGrowth, Condition: ConditionGreaterThan, Threshold: 30})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.True(t, engine.HasRules())
}
