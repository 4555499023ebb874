package spacetraveling

import (
	"sync"
	"time"

	"github.com/eringen/spacetraveling/feed"
)

// FeedRegistry keeps one feed.Feed per reader session so "load more"
// continues the list the reader is looking at. Entries expire after ttl
// without use.
type FeedRegistry struct {
	mu    sync.Mutex
	feeds map[string]*feedEntry
	ttl   time.Duration
	now   func() time.Time
}

type feedEntry struct {
	feed     *feed.Feed
	lastSeen time.Time
}

// NewFeedRegistry creates an empty registry.
func NewFeedRegistry(ttl time.Duration) *FeedRegistry {
	return &FeedRegistry{
		feeds: make(map[string]*feedEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores f for the reader id, replacing any previous feed.
func (r *FeedRegistry) Put(id string, f *feed.Feed) {
	r.mu.Lock()
	r.feeds[id] = &feedEntry{feed: f, lastSeen: r.now()}
	r.mu.Unlock()
}

// Get returns the live feed of reader id and marks it as used.
func (r *FeedRegistry) Get(id string) (*feed.Feed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.feeds[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(e.lastSeen) >= r.ttl {
		delete(r.feeds, id)
		return nil, false
	}
	e.lastSeen = now
	return e.feed, true
}

// Len returns the number of registered feeds, expired or not.
func (r *FeedRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

// sweep drops expired feeds and returns how many were removed.
func (r *FeedRegistry) sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.feeds {
		if !e.lastSeen.After(cutoff) {
			delete(r.feeds, id)
			removed++
		}
	}
	return removed
}

// StartCleanup sweeps expired feeds every interval until the returned stop
// function is called.
func (r *FeedRegistry) StartCleanup(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
