package agent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_FiresAndStops(t *testing.T) {
	var runs atomic.Int64
	s := NewScheduler(func(context.Context) { runs.Add(1) }, time.Second)

	s.Reschedule(true, 10*time.Millisecond)
	if !s.Active() {
		t.Fatalf("scheduler should report active after Reschedule(true)")
	}
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatalf("scheduler never fired")
	}

	s.Stop()
	if s.Active() {
		t.Fatalf("scheduler should report inactive after Stop")
	}
	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got > settled+1 {
		t.Fatalf("scheduler kept firing after Stop: %d -> %d", settled, got)
	}
}

func TestScheduler_DisabledNeverFires(t *testing.T) {
	var runs atomic.Int64
	s := NewScheduler(func(context.Context) { runs.Add(1) }, time.Second)

	s.Reschedule(false, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("disabled scheduler fired %d times", runs.Load())
	}
}
