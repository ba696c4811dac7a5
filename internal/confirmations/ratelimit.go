package confirmations

import "time"

const (
	rateLimitWindow = 60 * time.Second
	rateLimitMax    = 5
)

// RateLimiter bounds confirmation submissions per client identifier with a
// fixed sliding window: at most rateLimitMax accepted attempts per rolling
// rateLimitWindow. Eviction happens only at check time.
//
// The limiter carries no lock of its own. It shares the store's critical
// section: CheckAndRecord must only be called from inside a store
// transaction, alongside the duplicate check and append it protects.
type RateLimiter struct {
	attempts map[string][]time.Time
}

// NewRateLimiter returns a limiter with empty attempt history.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{attempts: make(map[string][]time.Time)}
}

// CheckAndRecord evicts attempts older than the window for clientID,
// then either records now and returns true, or returns false without
// recording when the client is already at the cap.
func (l *RateLimiter) CheckAndRecord(clientID string, now time.Time) bool {
	history := l.attempts[clientID]
	cutoff := now.Add(-rateLimitWindow)
	for len(history) > 0 && !history[0].After(cutoff) {
		history = history[1:]
	}
	if len(history) >= rateLimitMax {
		l.attempts[clientID] = history
		return false
	}
	l.attempts[clientID] = append(history, now)
	return true
}
