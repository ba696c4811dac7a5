package confirmations

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToMaximum(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Unix(1700000000, 0)

	for attempt := 0; attempt < rateLimitMax; attempt++ {
		if !limiter.CheckAndRecord("client-1", now.Add(time.Duration(attempt)*time.Second)) {
			t.Fatalf("attempt %d should be allowed", attempt+1)
		}
	}
	if limiter.CheckAndRecord("client-1", now.Add(10*time.Second)) {
		t.Fatalf("attempt %d should be rejected", rateLimitMax+1)
	}
}

func TestRateLimiterRejectionDoesNotRecord(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Unix(1700000000, 0)

	for attempt := 0; attempt < rateLimitMax; attempt++ {
		limiter.CheckAndRecord("client-1", now)
	}
	limiter.CheckAndRecord("client-1", now.Add(time.Second))

	// Once the original attempts age out, the client is back to a clean
	// window; the rejected attempt must not count against it.
	later := now.Add(rateLimitWindow + time.Second)
	for attempt := 0; attempt < rateLimitMax; attempt++ {
		if !limiter.CheckAndRecord("client-1", later) {
			t.Fatalf("attempt %d after window should be allowed", attempt+1)
		}
	}
}

func TestRateLimiterEvictsAgedAttempts(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Unix(1700000000, 0)

	for attempt := 0; attempt < rateLimitMax; attempt++ {
		limiter.CheckAndRecord("client-1", now)
	}
	if limiter.CheckAndRecord("client-1", now.Add(30*time.Second)) {
		t.Fatalf("submission inside the window should be rejected")
	}
	if !limiter.CheckAndRecord("client-1", now.Add(rateLimitWindow+time.Second)) {
		t.Fatalf("submission after the oldest attempt aged out should be allowed")
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	limiter := NewRateLimiter()
	now := time.Unix(1700000000, 0)

	for attempt := 0; attempt < rateLimitMax; attempt++ {
		limiter.CheckAndRecord("client-1", now)
	}
	if !limiter.CheckAndRecord("client-2", now) {
		t.Fatalf("a different client must not share the window")
	}
}
