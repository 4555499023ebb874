package spacetraveling

import (
	"sync"
	"time"
)

// RequestLimiter rate-limits requests per IP address with a sliding window.
// It guards preview activation, which costs a content API round trip.
type RequestLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
}

// NewRequestLimiter creates a RequestLimiter that allows max requests per window.
func NewRequestLimiter(max int, window time.Duration) *RequestLimiter {
	l := &RequestLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
	go l.cleanup()
	return l
}

func (l *RequestLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	for range ticker.C {
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for ip := range l.attempts {
			if kept := l.pruneLocked(ip, cutoff); len(kept) == 0 {
				delete(l.attempts, ip)
			}
		}
		l.mu.Unlock()
	}
}

// pruneLocked drops hits older than cutoff and returns the rest.
func (l *RequestLimiter) pruneLocked(ip string, cutoff time.Time) []time.Time {
	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts[ip] = kept
	return kept
}

// Allow checks the limit for ip and records the request when allowed.
func (l *RequestLimiter) Allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pruneLocked(ip, now.Add(-l.window))) >= l.max {
		return false
	}
	l.attempts[ip] = append(l.attempts[ip], now)
	return true
}

// Check returns true if ip has not exceeded the limit, without recording.
func (l *RequestLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pruneLocked(ip, time.Now().Add(-l.window))) < l.max
}
