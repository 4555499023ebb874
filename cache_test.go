package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/content"
)

// fakeSource is an in-memory ContentSource.
type fakeSource struct {
	mu       sync.Mutex
	posts    []content.PostSummary
	details  map[string]content.PostDetail
	err      error
	queries  int
	catalogs int
}

func (f *fakeSource) QueryPosts(ctx context.Context, ref string) (content.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return content.PostPage{}, f.err
	}
	page := content.PostPage{Items: f.posts}
	if len(f.posts) > 1 {
		page = content.PostPage{Items: f.posts[:1], NextCursor: "c2"}
	}
	return page, nil
}

func (f *fakeSource) FetchPage(ctx context.Context, cursor string) (content.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return content.PostPage{}, f.err
	}
	return content.PostPage{Items: f.posts[1:]}, nil
}

func (f *fakeSource) Catalog(ctx context.Context, ref string) ([]content.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogs++
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

func (f *fakeSource) GetByUID(ctx context.Context, ref, uid string) (content.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return content.PostDetail{}, f.err
	}
	d, ok := f.details[uid]
	if !ok {
		return content.PostDetail{}, errors.New("not found")
	}
	return d, nil
}

func (f *fakeSource) GetByID(ctx context.Context, ref, id string) (content.PostDetail, error) {
	return content.PostDetail{}, errors.New("not implemented")
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries, f.catalogs
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		posts: []content.PostSummary{
			{UID: "a", Title: "A"},
			{UID: "b", Title: "B"},
		},
	}
}

func TestCatalogCacheLoadsOnce(t *testing.T) {
	src := newFakeSource()
	c := NewCatalogCache(src, time.Minute)
	ctx := context.Background()

	page, err := c.FirstPage(ctx)
	if err != nil {
		t.Fatalf("FirstPage: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "c2" {
		t.Errorf("unexpected first page %+v", page)
	}
	catalog, err := c.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Errorf("catalog has %d posts, want 2", len(catalog))
	}

	if q, cat := src.calls(); q != 1 || cat != 1 {
		t.Errorf("content source called %d/%d times, want 1/1", q, cat)
	}
}

func TestCatalogCacheInvalidate(t *testing.T) {
	src := newFakeSource()
	c := NewCatalogCache(src, time.Minute)
	ctx := context.Background()

	if _, err := c.Catalog(ctx); err != nil {
		t.Fatal(err)
	}
	c.Invalidate()
	if _, err := c.Catalog(ctx); err != nil {
		t.Fatal(err)
	}
	if _, cat := src.calls(); cat != 2 {
		t.Errorf("catalog loaded %d times, want 2", cat)
	}
}

func TestCatalogCacheExpires(t *testing.T) {
	src := newFakeSource()
	c := NewCatalogCache(src, 10*time.Millisecond)
	ctx := context.Background()

	if _, err := c.FirstPage(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.FirstPage(ctx); err != nil {
		t.Fatal(err)
	}
	if q, _ := src.calls(); q != 2 {
		t.Errorf("first page loaded %d times, want 2", q)
	}
}

func TestCatalogCacheErrorNotCached(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("boom")
	c := NewCatalogCache(src, time.Minute)
	ctx := context.Background()

	if _, err := c.Catalog(ctx); err == nil {
		t.Fatal("expected error")
	}
	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	catalog, err := c.Catalog(ctx)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(catalog) != 2 {
		t.Errorf("catalog has %d posts, want 2", len(catalog))
	}
}

func TestCatalogCacheEmptyCatalogIsCached(t *testing.T) {
	src := &fakeSource{}
	c := NewCatalogCache(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		catalog, err := c.Catalog(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if catalog == nil || len(catalog) != 0 {
			t.Fatalf("expected empty catalog, got %#v", catalog)
		}
	}
	if _, cat := src.calls(); cat != 1 {
		t.Errorf("catalog loaded %d times, want 1", cat)
	}
}
