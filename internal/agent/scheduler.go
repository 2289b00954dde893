package agent

import (
	"context"
	"sync"
	"time"

	"tradeagent/internal/observ"
)

// Scheduler owns the single recurring cycle timer. Reschedule replaces the
// timer in place, so a config change to enabled or check_interval takes
// effect without restarting the process.
type Scheduler struct {
	run        func(context.Context)
	cycleLimit time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	enabled  bool
	gen      int
}

// NewScheduler wraps the function invoked on every tick. Each invocation
// gets a context bounded by cycleLimit.
func NewScheduler(run func(context.Context), cycleLimit time.Duration) *Scheduler {
	if cycleLimit <= 0 {
		cycleLimit = 2 * time.Minute
	}
	return &Scheduler{run: run, cycleLimit: cycleLimit}
}

// Reschedule stops any armed timer and, when enabled with a positive
// interval, arms a fresh one. Safe to call from any goroutine.
func (s *Scheduler) Reschedule(enabled bool, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.enabled = enabled && interval > 0
	s.interval = interval
	if s.enabled {
		gen := s.gen
		s.timer = time.AfterFunc(interval, func() { s.fire(gen) })
		observ.Log("scheduler_armed", map[string]any{"interval_s": interval.Seconds()})
	} else {
		observ.Log("scheduler_stopped", nil)
	}
}

// Stop disarms the timer.
func (s *Scheduler) Stop() { s.Reschedule(false, 0) }

// Active reports whether the recurring timer is armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Scheduler) fire(gen int) {
	s.mu.Lock()
	if gen != s.gen || !s.enabled {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cycleLimit)
	s.run(ctx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.enabled {
		// rescheduled or stopped while the cycle ran
		return
	}
	s.timer = time.AfterFunc(s.interval, func() { s.fire(gen) })
}
