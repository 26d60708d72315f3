package alerting

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/channelpulse/channelpulse-go/internal/logger"
	"github.com/channelpulse/channelpulse-go/internal/telemetry"
)

// TickDriver is what the scheduler drives once per interval. Satisfied by
// *Engine; tests substitute counters.
type TickDriver interface {
	Tick(ctx context.Context)
	HasRules() bool
}

// Scheduler drives the periodic polling cycle. Two states: idle (no timer)
// and polling (interval timer active). On Start an immediate tick fires
// before the first interval elapses, so the first alert opportunity is not
// delayed. The loop returns to idle when the rule list becomes empty or
// Stop is called; Stop waits for the loop goroutine, so no tick runs after
// it returns.
type Scheduler struct {
	driver   TickDriver
	interval time.Duration
	log      logger.Logger
	tel      *telemetry.Metrics

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	inFlight atomic.Bool
}

// NewScheduler creates a scheduler in the idle state.
func NewScheduler(driver TickDriver, interval time.Duration, log logger.Logger, tel *telemetry.Metrics) *Scheduler {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Scheduler{
		driver:   driver,
		interval: interval,
		log:      log,
		tel:      tel,
	}
}

// Start transitions idle→polling. Starting while already polling, or with
// an empty rule list, is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	if !s.driver.HasRules() {
		s.log.Debug("scheduler start skipped, no rules configured")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.log.Info("polling started", logger.Duration("interval", s.interval))
	go s.run(ctx, done)
}

// Stop transitions polling→idle and blocks until the loop goroutine has
// exited; the pending timer is cancelled immediately and no tick fires
// afterward. Safe to call repeatedly and while idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("polling stopped")
}

// Running reports whether the scheduler is in the polling state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.driver.HasRules() {
				s.log.Info("rule list empty, scheduler going idle")
				s.goIdle()
				return
			}
			s.tick(ctx)
		}
	}
}

// goIdle clears the lifecycle fields when the loop exits on its own, so a
// later Start works. Stop concurrently draining the same fields is fine:
// whichever side sees them first clears them.
func (s *Scheduler) goIdle() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.done = nil
	}
	s.mu.Unlock()
}

// tick runs one cycle with an overlap guard: a timer firing while a
// previous tick is still in flight (slow metric fetch) is skipped rather
// than stacked.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.tel.TickSkipped()
		s.log.Debug("tick skipped, previous cycle still in flight")
		return
	}
	defer s.inFlight.Store(false)

	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()
	s.driver.Tick(tickCtx)
}
