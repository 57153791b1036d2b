package facebook

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window call counter. The Graph API allows roughly
// 200 calls per hour per user, so the client refuses to go over locally
// instead of burning the budget on guaranteed 429s.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window}
}

func (r *rateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.calls[:0]
	for _, t := range r.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.calls = kept
}

// allow records a call if the window still has room.
func (r *rateLimiter) allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	if len(r.calls) >= r.limit {
		return false
	}
	r.calls = append(r.calls, now)
	return true
}

// usage reports calls made in the current window and when the oldest one
// falls out of it.
func (r *rateLimiter) usage(now time.Time) (made int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	made = len(r.calls)
	if made > 0 {
		resetTime = r.calls[0].Add(r.window)
	} else {
		resetTime = now
	}
	return made, resetTime
}
