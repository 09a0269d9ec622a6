package core

// limiter.go keeps audits from overlapping.
//
// The engine is strictly sequential: one audit walks every file of every
// category before the next may start. Callers that can receive several audit
// requests at once (the report server) acquire the single slot first. When it
// is taken, Acquire waits up to maxWait before failing with ErrAuditBusy.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAuditBusy is returned when another audit holds the slot and the wait
// timeout expires.
var ErrAuditBusy = errors.New("audit already running, please try again later")

// DefaultMaxWaitTime is how long to wait for the slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// AuditLimiter serialises audits using a one-slot semaphore.
type AuditLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu      sync.RWMutex
	running bool
	since   time.Time
}

// NewAuditLimiter creates a limiter. Requests that cannot acquire the slot
// within maxWait receive ErrAuditBusy.
func NewAuditLimiter(maxWait time.Duration) *AuditLimiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &AuditLimiter{
		semaphore: make(chan struct{}, 1),
		maxWait:   maxWait,
	}
}

// Acquire waits for the audit slot.
// The caller MUST call Release() when the audit completes (use defer).
func (l *AuditLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.markRunning(true)
		return nil

	case <-waitCtx.Done():
		// Distinguish the caller going away from our own wait timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrAuditBusy
	}
}

// TryAcquire takes the slot without blocking.
func (l *AuditLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.markRunning(true)
		return true
	default:
		return false
	}
}

// Release frees the slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *AuditLimiter) Release() {
	l.markRunning(false)
	<-l.semaphore
}

// AuditLimiterStatus is a snapshot of the limiter's state.
type AuditLimiterStatus struct {
	Running bool      `json:"running"`
	Since   time.Time `json:"since,omitzero"`
}

// Status returns the current limiter state for monitoring/debugging.
func (l *AuditLimiter) Status() AuditLimiterStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return AuditLimiterStatus{Running: l.running, Since: l.since}
}

// WaitForDrain blocks until no audit is running or ctx is done.
// Used for graceful shutdown.
func (l *AuditLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Status().Running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *AuditLimiter) markRunning(running bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = running
	if running {
		l.since = time.Now()
	} else {
		l.since = time.Time{}
	}
}
