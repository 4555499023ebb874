package spacetraveling

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "snapshots.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePost(uid string) content.PostDetail {
	published := time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)
	updated := published.Add(48 * time.Hour)
	return content.PostDetail{
		ID:               "doc-" + uid,
		UID:              uid,
		FirstPublishedAt: &published,
		LastUpdatedAt:    &updated,
		Title:            "Como utilizar Hooks",
		Subtitle:         "Pensando em sincronização em vez de ciclos de vida",
		BannerURL:        "https://images.prismic.io/banner.png",
		Author:           "Joseph Oliveira",
		Sections: []content.Section{{
			Heading: "Proin et varius",
			Body: []richtext.Block{{
				Type:  richtext.TypeParagraph,
				Text:  "Nullam dolor sapien",
				Spans: []richtext.Span{{Start: 0, End: 6, Type: "strong"}},
			}},
		}},
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetSnapshot(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost("como-utilizar-hooks")

	if err := s.SaveSnapshot(Snapshot{Slug: p.UID, Post: p}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := s.GetSnapshot(p.UID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.Slug != p.UID {
		t.Errorf("slug = %q, want %q", got.Slug, p.UID)
	}
	if got.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
	if !got.Post.FirstPublishedAt.Equal(*p.FirstPublishedAt) || !got.Post.LastUpdatedAt.Equal(*p.LastUpdatedAt) {
		t.Errorf("dates not preserved: %v %v", got.Post.FirstPublishedAt, got.Post.LastUpdatedAt)
	}
	got.Post.FirstPublishedAt, got.Post.LastUpdatedAt = nil, nil
	p.FirstPublishedAt, p.LastUpdatedAt = nil, nil
	if !reflect.DeepEqual(got.Post, p) {
		t.Errorf("post = %+v, want %+v", got.Post, p)
	}
}

func TestSnapshotKeepsAbsentContent(t *testing.T) {
	s := setupTestStore(t)

	absent := content.PostDetail{UID: "absent", Title: "Absent"}
	empty := content.PostDetail{UID: "empty", Title: "Empty", Sections: []content.Section{}}
	for _, p := range []content.PostDetail{absent, empty} {
		if err := s.SaveSnapshot(Snapshot{Slug: p.UID, Post: p}); err != nil {
			t.Fatalf("SaveSnapshot(%s) failed: %v", p.UID, err)
		}
	}

	got, err := s.GetSnapshot("absent")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.Post.Sections != nil {
		t.Errorf("absent content should stay nil, got %#v", got.Post.Sections)
	}

	got, err = s.GetSnapshot("empty")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.Post.Sections == nil || len(got.Post.Sections) != 0 {
		t.Errorf("empty content should stay empty, got %#v", got.Post.Sections)
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetSnapshot("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveSnapshotReplaces(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost("hooks")
	if err := s.SaveSnapshot(Snapshot{Slug: "hooks", Post: p}); err != nil {
		t.Fatal(err)
	}
	p.Title = "Updated"
	if err := s.SaveSnapshot(Snapshot{Slug: "hooks", Post: p}); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSnapshot("hooks")
	if err != nil {
		t.Fatal(err)
	}
	if got.Post.Title != "Updated" {
		t.Errorf("title = %q, want Updated", got.Post.Title)
	}
	slugs, err := s.ListSlugs()
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 1 {
		t.Errorf("expected 1 snapshot, got %v", slugs)
	}
}

func TestListAndDeleteSnapshots(t *testing.T) {
	s := setupTestStore(t)
	for _, slug := range []string{"b", "a", "c"} {
		if err := s.SaveSnapshot(Snapshot{Slug: slug, Post: samplePost(slug)}); err != nil {
			t.Fatal(err)
		}
	}

	slugs, err := s.ListSlugs()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(slugs, want) {
		t.Errorf("ListSlugs = %v, want %v", slugs, want)
	}

	if err := s.DeleteSnapshot("b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSnapshot("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted snapshot to be gone, got %v", err)
	}

	n, err := s.DeleteAll()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DeleteAll removed %d, want 2", n)
	}
	slugs, err = s.ListSlugs()
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 0 {
		t.Errorf("expected no snapshots, got %v", slugs)
	}
}
