// Package feed implements the growing list of post summaries behind the
// "load more" button.
package feed

import (
	"context"
	"sync"

	"github.com/eringen/spacetraveling/content"
)

// Fetcher loads the page a cursor points at.
type Fetcher interface {
	FetchPage(ctx context.Context, cursor string) (content.PostPage, error)
}

// Feed holds the summaries shown to one reader and the cursor of the next
// page. Items are append-only and keep the order they were received in.
// A post whose UID is already listed is not appended again.
type Feed struct {
	mu      sync.Mutex
	fetcher Fetcher
	items   []content.PostSummary
	seen    map[string]struct{}
	cursor  string
}

// New creates an empty Feed that loads pages with f.
func New(f Fetcher) *Feed {
	return &Feed{fetcher: f, seen: make(map[string]struct{})}
}

// Initialize replaces the feed contents with the first page.
func (f *Feed) Initialize(page content.PostPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.seen = make(map[string]struct{}, len(page.Items))
	f.appendLocked(page.Items)
	f.cursor = page.NextCursor
}

// LoadMore fetches the next page and appends its items. It returns the items
// that were actually appended. With no next page it does nothing. On error
// the feed is left unchanged. Calls are serialized: a second caller waits
// for the first fetch to finish and then continues from the new cursor.
func (f *Feed) LoadMore(ctx context.Context) ([]content.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cursor == "" {
		return nil, nil
	}
	page, err := f.fetcher.FetchPage(ctx, f.cursor)
	if err != nil {
		return nil, err
	}
	added := f.appendLocked(page.Items)
	f.cursor = page.NextCursor
	return added, nil
}

func (f *Feed) appendLocked(items []content.PostSummary) []content.PostSummary {
	var added []content.PostSummary
	for _, p := range items {
		if p.UID != "" {
			if _, dup := f.seen[p.UID]; dup {
				continue
			}
			f.seen[p.UID] = struct{}{}
		}
		f.items = append(f.items, p)
		added = append(added, p)
	}
	return added
}

// HasMore reports whether LoadMore would fetch another page.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor != ""
}

// Cursor returns the cursor of the next page, or "" when there is none.
func (f *Feed) Cursor() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Items returns a copy of the current summaries.
func (f *Feed) Items() []content.PostSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]content.PostSummary(nil), f.items...)
}

// Len returns the number of summaries held.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
