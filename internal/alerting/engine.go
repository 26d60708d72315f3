package alerting

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/channelpulse/channelpulse-go/internal/logger"
	"github.com/channelpulse/channelpulse-go/internal/telemetry"
)

// saveHistoryTimeout bounds persistence of a fired alert so a slow store
// cannot stall the polling cycle.
const saveHistoryTimeout = 3 * time.Second

// MetricSource supplies a snapshot of current channel metrics. Callers
// substitute a fallback snapshot on error rather than propagating it.
type MetricSource interface {
	Fetch(ctx context.Context, channelID string) (MetricSnapshot, error)
}

// Backend is the optional analytics service that supplies server-computed
// alerts and rule definitions. Unavailable or empty responses degrade to
// local-only alerts and the built-in default rules.
type Backend interface {
	FetchAlerts(ctx context.Context, channelID string) ([]Alert, error)
	FetchRules(ctx context.Context, channelID string) ([]AlertRule, error)
}

// RuleStore persists rule edits across sessions. Optional.
type RuleStore interface {
	SaveRule(ctx context.Context, rule AlertRule) error
	SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error
}

// HistorySink records each fired alert. Optional.
type HistorySink interface {
	RecordFired(ctx context.Context, alert Alert) error
}

// Publisher receives the collection after every publish. Implementations
// must not block; the engine calls this on the tick path.
type Publisher interface {
	PublishAlerts(alerts AlertCollection, unread int)
}

// Options configures an Engine. Zero values fall back to package defaults;
// Backend, RuleStore, History, Publisher, and Telemetry may all be nil.
type Options struct {
	ChannelID string
	Cooldown  time.Duration
	MaxAlerts int
	Surge     SurgeDetector
	Backend   Backend
	RuleStore RuleStore
	History   HistorySink
	Publisher Publisher
	Telemetry *telemetry.Metrics
	Now       func() time.Time
}

// Engine owns the rule set and the live alert collection for one channel
// session, and runs the evaluate→gate→reconcile cycle on every tick. The
// collection is an immutable value swapped atomically on publish; reads
// are lock-free and mutations serialize on an internal mutex.
type Engine struct {
	source MetricSource
	rules  *RuleSet
	log    logger.Logger
	opts   Options

	mu     sync.Mutex
	alerts atomic.Pointer[AlertCollection]
}

// NewEngine creates an engine polling the given source against the rule set.
func NewEngine(source MetricSource, rules *RuleSet, log logger.Logger, opts Options) *Engine {
	if opts.Cooldown == 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.MaxAlerts <= 0 {
		opts.MaxAlerts = DefaultMaxAlerts
	}
	if opts.Surge == nil {
		opts.Surge = NewProbabilisticSurgeDetector()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		source: source,
		rules:  rules,
		log:    log,
		opts:   opts,
	}
	empty := make(AlertCollection, 0)
	e.alerts.Store(&empty)
	return e
}

// Bootstrap pre-seeds rules and alerts from the backend. Every failure is
// logged and degraded, never returned: a dead backend means default rules
// and an empty collection, not a startup error.
func (e *Engine) Bootstrap(ctx context.Context) {
	if e.opts.Backend == nil {
		return
	}
	if rules, err := e.opts.Backend.FetchRules(ctx, e.opts.ChannelID); err != nil {
		e.log.Warn("rule fetch failed, keeping current rule set", logger.Error(err))
	} else if len(rules) > 0 {
		e.rules.Replace(rules)
		e.log.Info("loaded rules from backend", logger.Int("count", len(rules)))
	}
	if alerts, err := e.opts.Backend.FetchAlerts(ctx, e.opts.ChannelID); err != nil {
		e.log.Warn("alert pre-seed failed, starting empty", logger.Error(err))
	} else if len(alerts) > 0 {
		e.publish(Merge(alerts, nil, e.opts.MaxAlerts))
	}
}

// Tick runs one fetch→evaluate→gate→reconcile cycle. It never returns an
// error and never panics: every failure inside the cycle converts to the
// fallback path so rule evaluation still runs each interval.
func (e *Engine) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tick panicked", logger.Any("panic", r))
		}
	}()

	e.opts.Telemetry.TickExecuted()
	now := e.opts.Now()

	snapshot, err := e.source.Fetch(ctx, e.opts.ChannelID)
	if err != nil {
		// The composed fallback source shouldn't fail, but a bare live
		// source can; evaluation still proceeds on an empty fallback.
		e.log.Warn("metric fetch failed, using empty fallback snapshot", logger.Error(err))
		e.opts.Telemetry.FetchFailed()
		snapshot = MetricSnapshot{IsFallback: true}
	}
	if snapshot.IsFallback {
		e.opts.Telemetry.FallbackSnapshot()
	}

	var serverAlerts []Alert
	if e.opts.Backend != nil {
		serverAlerts, err = e.opts.Backend.FetchAlerts(ctx, e.opts.ChannelID)
		if err != nil {
			e.log.Debug("server alert fetch failed, merging local only", logger.Error(err))
			e.opts.Telemetry.FetchFailed()
			serverAlerts = nil
		}
	}

	candidates := Evaluate(snapshot, e.rules.Snapshot(), e.opts.Surge, now)
	e.opts.Telemetry.CandidatesEvaluated(len(candidates))

	e.mu.Lock()
	current := *e.alerts.Load()
	fresh := FilterCooldown(candidates, current, e.opts.Cooldown)
	merged := Merge(serverAlerts, append(fresh, current...), e.opts.MaxAlerts)
	e.alerts.Store(&merged)
	e.mu.Unlock()

	e.opts.Telemetry.AlertsFired(len(fresh))
	e.opts.Telemetry.AlertsSuppressed(len(candidates) - len(fresh))

	for i := range fresh {
		e.log.Info("alert fired",
			logger.String("rule_id", fresh[i].RuleID),
			logger.String("message", fresh[i].Message),
			logger.Bool("fallback_data", snapshot.IsFallback))
		e.recordHistory(fresh[i])
	}

	e.notify(merged)
}

func (e *Engine) recordHistory(alert Alert) {
	if e.opts.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveHistoryTimeout)
	defer cancel()
	if err := e.opts.History.RecordFired(ctx, alert); err != nil {
		e.log.Error("failed to record alert history",
			logger.String("alert_id", alert.ID),
			logger.Error(err))
	}
}

// publish replaces the collection and notifies consumers. Callers must not
// hold e.mu.
func (e *Engine) publish(next AlertCollection) {
	e.mu.Lock()
	e.alerts.Store(&next)
	e.mu.Unlock()
	e.notify(next)
}

func (e *Engine) notify(c AlertCollection) {
	if e.opts.Publisher != nil {
		e.opts.Publisher.PublishAlerts(c, c.UnreadCount())
	}
}

// Alerts returns the current collection snapshot. Lock-free.
func (e *Engine) Alerts() AlertCollection {
	return *e.alerts.Load()
}

// UnreadCount returns the derived unread total of the current collection.
func (e *Engine) UnreadCount() int {
	return e.Alerts().UnreadCount()
}

// MarkAlertRead flags an alert as read. Unknown IDs are a no-op and
// report false.
func (e *Engine) MarkAlertRead(alertID string) bool {
	var found bool
	e.mu.Lock()
	current := *e.alerts.Load()
	for i := range current {
		if current[i].ID == alertID {
			found = true
			break
		}
	}
	next := MarkRead(current, alertID)
	e.alerts.Store(&next)
	e.mu.Unlock()
	e.notify(next)
	return found
}

// DeleteAlert removes an alert from the local working set regardless of
// origin. Unknown IDs are a no-op and report false.
func (e *Engine) DeleteAlert(alertID string) bool {
	e.mu.Lock()
	current := *e.alerts.Load()
	next := Remove(current, alertID)
	removed := len(next) != len(current)
	e.alerts.Store(&next)
	e.mu.Unlock()
	if removed {
		e.notify(next)
	}
	return removed
}

// Rules returns a copy of the current rule list.
func (e *Engine) Rules() []AlertRule {
	return e.rules.Snapshot()
}

// HasRules reports whether there is at least one rule row to evaluate
// against. The scheduler polls only while this holds.
func (e *Engine) HasRules() bool {
	return e.rules.Len() > 0
}

// AddRule validates and appends a rule, persisting it when a store is
// configured. Validation failure is returned to the caller and leaves the
// polling loop untouched.
func (e *Engine) AddRule(rule AlertRule) (AlertRule, error) {
	added, err := e.rules.Add(rule)
	if err != nil {
		return AlertRule{}, err
	}
	if e.opts.RuleStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveHistoryTimeout)
		defer cancel()
		if err := e.opts.RuleStore.SaveRule(ctx, added); err != nil {
			e.log.Error("failed to persist rule", logger.String("rule_id", added.ID), logger.Error(err))
		}
	}
	return added, nil
}

// ToggleRule flips a rule's enabled flag. Unknown IDs are a silent no-op.
func (e *Engine) ToggleRule(ruleID string) bool {
	toggled := e.rules.Toggle(ruleID)
	if toggled && e.opts.RuleStore != nil {
		var enabled bool
		for _, r := range e.rules.Snapshot() {
			if r.ID == ruleID {
				enabled = r.Enabled
				break
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveHistoryTimeout)
		defer cancel()
		if err := e.opts.RuleStore.SetRuleEnabled(ctx, ruleID, enabled); err != nil {
			e.log.Error("failed to persist rule toggle", logger.String("rule_id", ruleID), logger.Error(err))
		}
	}
	return toggled
}
