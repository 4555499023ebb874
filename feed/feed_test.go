package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eringen/spacetraveling/content"
)

// pageFetcher serves pages keyed by cursor and records every call.
type pageFetcher struct {
	mu    sync.Mutex
	pages map[string]content.PostPage
	errs  map[string]error
	calls []string
}

func (p *pageFetcher) FetchPage(ctx context.Context, cursor string) (content.PostPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, cursor)
	if err := p.errs[cursor]; err != nil {
		return content.PostPage{}, err
	}
	page, ok := p.pages[cursor]
	if !ok {
		return content.PostPage{}, errors.New("unknown cursor " + cursor)
	}
	return page, nil
}

func summaries(uids ...string) []content.PostSummary {
	out := make([]content.PostSummary, len(uids))
	for i, uid := range uids {
		out[i] = content.PostSummary{UID: uid, Title: "Post " + uid}
	}
	return out
}

func uidsOf(items []content.PostSummary) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.UID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadMoreAppendsUntilExhausted(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string]content.PostPage{
		"url2": {Items: summaries("p4", "p5"), NextCursor: ""},
	}}
	f := New(fetcher)
	f.Initialize(content.PostPage{Items: summaries("p1", "p2", "p3"), NextCursor: "url2"})

	if !f.HasMore() {
		t.Fatal("expected more pages after initialize")
	}
	added, err := f.LoadMore(context.Background())
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if !equal(uidsOf(added), []string{"p4", "p5"}) {
		t.Errorf("added = %v, want [p4 p5]", uidsOf(added))
	}
	if !equal(uidsOf(f.Items()), []string{"p1", "p2", "p3", "p4", "p5"}) {
		t.Errorf("items = %v", uidsOf(f.Items()))
	}
	if f.HasMore() {
		t.Error("expected no more pages")
	}

	added, err = f.LoadMore(context.Background())
	if err != nil || added != nil {
		t.Errorf("LoadMore without cursor = (%v, %v), want no-op", added, err)
	}
	if f.Len() != 5 {
		t.Errorf("len = %d after no-op, want 5", f.Len())
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("fetch calls = %v, want exactly one", fetcher.calls)
	}
}

func TestLoadMoreIsConcatenationOfPages(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string]content.PostPage{
		"c2": {Items: summaries("b1", "b2"), NextCursor: "c3"},
		"c3": {Items: summaries("c1"), NextCursor: "c4"},
		"c4": {Items: summaries("d1", "d2", "d3"), NextCursor: ""},
	}}
	f := New(fetcher)
	f.Initialize(content.PostPage{Items: summaries("a1"), NextCursor: "c2"})

	want := []string{"a1"}
	prev := f.Len()
	for _, next := range [][]string{{"b1", "b2"}, {"c1"}, {"d1", "d2", "d3"}} {
		if _, err := f.LoadMore(context.Background()); err != nil {
			t.Fatalf("LoadMore: %v", err)
		}
		want = append(want, next...)
		if f.Len() < prev {
			t.Fatalf("length decreased from %d to %d", prev, f.Len())
		}
		prev = f.Len()
		if !equal(uidsOf(f.Items()), want) {
			t.Fatalf("items = %v, want %v", uidsOf(f.Items()), want)
		}
	}
}

func TestLoadMoreFailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("network down")
	fetcher := &pageFetcher{errs: map[string]error{"url2": boom}}
	f := New(fetcher)
	f.Initialize(content.PostPage{Items: summaries("p1"), NextCursor: "url2"})

	added, err := f.LoadMore(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if added != nil {
		t.Errorf("added = %v on failure", added)
	}
	if f.Len() != 1 || f.Cursor() != "url2" {
		t.Errorf("state changed on failure: len=%d cursor=%q", f.Len(), f.Cursor())
	}
}

func TestLoadMoreSkipsDuplicates(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string]content.PostPage{
		"url2": {Items: summaries("p3", "p4"), NextCursor: ""},
	}}
	f := New(fetcher)
	f.Initialize(content.PostPage{Items: summaries("p1", "p2", "p3"), NextCursor: "url2"})

	added, err := f.LoadMore(context.Background())
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if !equal(uidsOf(added), []string{"p4"}) {
		t.Errorf("added = %v, want [p4]", uidsOf(added))
	}
	if !equal(uidsOf(f.Items()), []string{"p1", "p2", "p3", "p4"}) {
		t.Errorf("items = %v", uidsOf(f.Items()))
	}
}

func TestInitializeResetsFeed(t *testing.T) {
	f := New(&pageFetcher{})
	f.Initialize(content.PostPage{Items: summaries("p1", "p2"), NextCursor: "x"})
	f.Initialize(content.PostPage{Items: summaries("p2")})
	if !equal(uidsOf(f.Items()), []string{"p2"}) || f.HasMore() {
		t.Errorf("items = %v hasMore = %v after reinitialize", uidsOf(f.Items()), f.HasMore())
	}
}

func TestConcurrentLoadMoreIsSerialized(t *testing.T) {
	fetcher := &pageFetcher{pages: map[string]content.PostPage{
		"c2": {Items: summaries("b1", "b2"), NextCursor: "c3"},
		"c3": {Items: summaries("c1", "c2"), NextCursor: ""},
	}}
	f := New(fetcher)
	f.Initialize(content.PostPage{Items: summaries("a1"), NextCursor: "c2"})

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.LoadMore(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("LoadMore: %v", err)
	}

	if !equal(uidsOf(f.Items()), []string{"a1", "b1", "b2", "c1", "c2"}) {
		t.Errorf("items = %v", uidsOf(f.Items()))
	}
	if !equal(fetcher.calls, []string{"c2", "c3"}) {
		t.Errorf("fetch calls = %v, want [c2 c3]", fetcher.calls)
	}
}
