package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/i18n"
)

// Home renders the full home page.
func Home(v spacetraveling.HomeView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<main class="container posts">`)
		if v.Preview {
			previewBanner(h, v.Locale)
		}
		h.raw(`<div id="posts">`)
		h.component(PostList(v.List))
		h.raw("</div></main>")
		return h.err
	})
	return Layout(v.Site, v.Meta, v.Locale, spacetraveling.WebsiteJsonLD(v.Site), body)
}

// PostList renders post summaries followed by the load-more button while
// more pages exist. The button swaps itself for the next run of the list.
func PostList(v spacetraveling.PostListView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		for _, p := range v.Posts {
			h.raw(`<a class="post"`)
			h.attr("href", "/post/"+spacetraveling.PathEscape(p.UID)+"/")
			h.raw("><strong>")
			h.text(p.Title)
			h.raw("</strong>")
			if p.Subtitle != "" {
				h.raw("<p>")
				h.text(p.Subtitle)
				h.raw("</p>")
			}
			h.raw(`<div class="info">`)
			if p.FirstPublishedAt != nil {
				t := p.FirstPublishedAt
				if v.Location != nil {
					t = ptr(t.In(v.Location))
				}
				h.raw("<time")
				h.attr("datetime", t.Format("2006-01-02"))
				h.raw(">")
				h.text(i18n.FormatDate(*t, v.Locale))
				h.raw("</time>")
			}
			if p.Author != "" {
				h.raw(`<span class="author">`)
				h.text(p.Author)
				h.raw("</span>")
			}
			h.raw("</div></a>")
		}
		if v.Failed {
			h.raw(`<p class="load-more-error" role="alert">`)
			h.text(T(v.Locale, i18n.MsgLoadFailed))
			h.raw("</p>")
		}
		if v.HasMore {
			h.raw(`<button type="button" class="load-more" hx-get="/posts/more/" hx-target="this" hx-swap="outerHTML" hx-sync="this:drop"`)
			h.attr("hx-vals", loadMoreVals(v.Cursor, v.Locale))
			h.raw(">")
			h.text(T(v.Locale, i18n.MsgLoadMore))
			h.raw("</button>")
		}
		return h.err
	})
}

func ptr[T any](v T) *T {
	return &v
}
