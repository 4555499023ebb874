package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/post"
)

func TestReadTimeLabel(t *testing.T) {
	tests := []struct {
		rt     post.ReadTime
		locale language.Tag
		want   string
	}{
		{post.ReadTime{State: post.Ready, Minutes: 4}, language.BrazilianPortuguese, "4 min"},
		{post.ReadTime{State: post.Pending}, language.BrazilianPortuguese, "..."},
		{post.ReadTime{State: post.Unavailable}, language.AmericanEnglish, ""},
	}
	for _, tt := range tests {
		if got := ReadTimeLabel(tt.rt, tt.locale); got != tt.want {
			t.Errorf("ReadTimeLabel(%v) = %q, want %q", tt.rt, got, tt.want)
		}
	}
}

func TestPostListButton(t *testing.T) {
	published := time.Date(2021, 3, 15, 19, 25, 28, 0, time.UTC)
	v := spacetraveling.PostListView{
		Posts: []content.PostSummary{{
			UID:              "como-utilizar-hooks",
			Title:            "Como <utilizar> Hooks",
			FirstPublishedAt: &published,
			Author:           "Joseph Oliveira",
		}},
		HasMore: true,
		Cursor:  "https://repo.cdn.prismic.io/api/v2/documents/search?page=2",
		Locale:  language.BrazilianPortuguese,
	}

	var buf bytes.Buffer
	if err := PostList(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		`href="/post/como-utilizar-hooks/"`,
		"Como &lt;utilizar&gt; Hooks",
		"15 mar 2021",
		`hx-sync="this:drop"`,
		"page=2",
		"Carregar mais posts",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PostList missing %q in %s", want, got)
		}
	}

	v.HasMore = false
	buf.Reset()
	if err := PostList(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "<button") {
		t.Error("no button expected without more pages")
	}
}

func TestPostPendingShell(t *testing.T) {
	v := spacetraveling.PostView{
		Slug:     "como-utilizar-hooks",
		ReadTime: post.ReadTimeFor(nil, true),
		Locale:   language.AmericanEnglish,
	}
	var buf bytes.Buffer
	if err := PostPending(v).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := buf.String()
	for _, want := range []string{`hx-trigger="load"`, "Loading...", `data-state="pending"`, `lang="en-US"`} {
		if !strings.Contains(got, want) {
			t.Errorf("pending shell missing %q", want)
		}
	}
}
