package lister

import (
	"sync"
	"time"
)

// RateStatus is a snapshot of GitHub's X-RateLimit-* headers
type RateStatus struct {
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"`
	Reset     *time.Time `json:"reset"`
	// ObservedAt is nil until a response carrying rate headers was seen
	ObservedAt *time.Time `json:"observed_at"`
}

// rateTracker records the last rate limit reported by GitHub.
// It never delays or retries a request.
type rateTracker struct {
	mu     sync.Mutex
	status RateStatus
}

// Update records a rate limit from API response headers
func (r *rateTracker) Update(limit, remaining int, reset time.Time) {
	if limit <= 0 {
		// response carried no rate headers
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.status = RateStatus{
		Limit:      limit,
		Remaining:  remaining,
		ObservedAt: &now,
	}
	if !reset.IsZero() {
		r.status.Reset = &reset
	}
}

// Snapshot returns the current rate limit status
func (r *rateTracker) Snapshot() RateStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
