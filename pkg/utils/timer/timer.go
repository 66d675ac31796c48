// Package timer measures total and per-stage durations of a command run.
package timer

import (
	"sync"
	"time"
)

// Timer tracks elapsed time across the stages of a run.
type Timer interface {
	// Start resets the timer and begins the first stage.
	Start()
	// NewStage ends the current stage and begins the next one.
	NewStage()
	// GetTiming returns the total elapsed time and the current stage's elapsed time.
	GetTiming() (time.Duration, time.Duration)
	// Stop freezes the timer; later GetTiming calls return the values at Stop.
	Stop()
}

// Impl is the default Timer.
type Impl struct {
	mu         sync.Mutex
	now        func() time.Time
	start      time.Time
	stageStart time.Time
	stoppedAt  time.Time
}

// New returns a Timer backed by the wall clock.
func New() *Impl {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Timer that reads time from now.
func NewWithClock(now func() time.Time) *Impl {
	return &Impl{now: now}
}

// Start implements Timer.
func (t *Impl) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.start = now
	t.stageStart = now
	t.stoppedAt = time.Time{}
}

// NewStage implements Timer.
func (t *Impl) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		t.start = t.now()
	}

	t.stageStart = t.now()
}

// GetTiming implements Timer. An unstarted timer reports zero durations.
func (t *Impl) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return 0, 0
	}

	end := t.stoppedAt
	if end.IsZero() {
		end = t.now()
	}

	return end.Sub(t.start), end.Sub(t.stageStart)
}

// Stop implements Timer.
func (t *Impl) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stoppedAt.IsZero() {
		t.stoppedAt = t.now()
	}
}
