package core

// write_limiter.go bounds the number of merge transactions running at once.
//
// Merges hold a pooled connection for the whole batch, so unbounded merges
// could starve match requests of connections. Callers that cannot get a slot
// within maxWait fail with ErrTooManyWrites. WaitForDrain lets shutdown wait
// for in-flight merges to commit.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyWrites is returned when every merge slot stays busy for the
// whole wait period. Clients should retry after a short delay.
var ErrTooManyWrites = errors.New("too many concurrent merges, please try again later")

const (
	// DefaultMaxConcurrentWrites is used when the configured limit is not positive.
	DefaultMaxConcurrentWrites = 4

	// DefaultMaxWriteWait is used when the configured wait is not positive.
	DefaultMaxWriteWait = 10 * time.Second
)

// WriteLimiter is a counting semaphore for merge transactions.
type WriteLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewWriteLimiter allows at most maxConcurrent simultaneous holders.
func NewWriteLimiter(maxConcurrent int, maxWait time.Duration) *WriteLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentWrites
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWriteWait
	}
	return &WriteLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. The caller must Release it.
func (l *WriteLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyWrites
	}
}

// Release returns a slot taken by Acquire.
func (l *WriteLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// ActiveCount returns the number of held slots.
func (l *WriteLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no slot is held or ctx ends.
func (l *WriteLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteLimiterStatus is a snapshot of the limiter.
type WriteLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *WriteLimiter) Status() WriteLimiterStatus {
	active := l.ActiveCount()
	return WriteLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
