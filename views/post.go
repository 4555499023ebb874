package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/i18n"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/richtext"
)

// Post renders the full post page.
func Post(v spacetraveling.PostView) templ.Component {
	return Layout(v.Site, v.Meta, v.Locale, spacetraveling.BlogPostingJsonLD(v.Post, v.Site), PostPartial(v))
}

// PostPartial renders the post body without the document shell. htmx swaps
// it over the pending shell.
func PostPartial(v spacetraveling.PostView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<main id="post">`)
		if v.Preview {
			previewBanner(h, v.Locale)
		}
		if v.BannerSrc != "" {
			h.raw(`<img class="banner"`)
			h.attr("src", v.BannerSrc)
			h.attr("alt", v.Post.Title)
			h.raw("/>")
		}
		h.raw(`<article class="container post">`)
		h.raw("<h1>")
		h.text(v.Post.Title)
		h.raw("</h1>")
		postInfo(h, v)
		if v.LastEdited != "" {
			h.raw(`<p class="edited">`)
			h.text(v.LastEdited)
			h.raw("</p>")
		}
		for _, s := range v.Post.Sections {
			h.raw(`<section class="content">`)
			if s.Heading != "" {
				h.raw("<h2>")
				h.text(s.Heading)
				h.raw("</h2>")
			}
			h.raw(`<div class="body">`)
			h.component(richtext.Component(s.Body))
			h.raw("</div></section>")
		}
		h.raw("</article>")
		navigation(h, v)
		if v.Comments.Enabled() {
			h.raw(`<section class="container comments"><h2>`)
			h.text(T(v.Locale, i18n.MsgComments))
			h.raw(`</h2><div id="comments"`)
			h.attr("data-repo", v.Comments.Repo)
			h.attr("data-issue-term", v.Comments.IssueTerm)
			h.attr("data-theme", v.Comments.Theme)
			h.raw(`></div></section><script src="/public/comments.js" defer></script>`)
		}
		h.raw("</main>")
		return h.err
	})
}

// PostPending renders the shell shown while a post that was not prebuilt is
// fetched. On load it requests the post partial and swaps it in.
func PostPending(v spacetraveling.PostView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<main id="post" hx-trigger="load" hx-target="this" hx-swap="outerHTML"`)
		h.attr("hx-get", "/post/"+spacetraveling.PathEscape(v.Slug)+"/?partial=post")
		h.raw(`><article class="container post pending"><p class="loading">`)
		h.text(T(v.Locale, i18n.MsgLoading))
		h.raw("</p>")
		postInfo(h, v)
		h.raw("</article></main>")
		return h.err
	})
	return Layout(v.Site, v.Meta, v.Locale, "", body)
}

func postInfo(h *htmlWriter, v spacetraveling.PostView) {
	h.raw(`<div class="info">`)
	if v.PublishedOn != "" {
		h.raw(`<time class="published">`)
		h.text(v.PublishedOn)
		h.raw("</time>")
	}
	if v.Post.Author != "" {
		h.raw(`<span class="author">`)
		h.text(v.Post.Author)
		h.raw("</span>")
	}
	if label := ReadTimeLabel(v.ReadTime, v.Locale); label != "" {
		h.raw(`<span class="read-time"`)
		h.attr("data-state", v.ReadTime.State.String())
		h.raw(">")
		h.text(label)
		h.raw("</span>")
	}
	h.raw("</div>")
}

func navigation(h *htmlWriter, v spacetraveling.PostView) {
	if v.Links.Previous == nil && v.Links.Next == nil {
		return
	}
	h.raw(`<nav class="container navigation">`)
	navLink(h, v.Links.Previous, "previous", T(v.Locale, i18n.MsgPrevious))
	navLink(h, v.Links.Next, "next", T(v.Locale, i18n.MsgNext))
	h.raw("</nav>")
}

func navLink(h *htmlWriter, l *post.Link, class, label string) {
	if l == nil {
		h.raw("<span></span>")
		return
	}
	h.raw("<a")
	h.attr("class", class)
	h.attr("href", "/post/"+spacetraveling.PathEscape(l.UID)+"/")
	h.raw("><span>")
	h.text(l.Title)
	h.raw("</span><small>")
	h.text(label)
	h.raw("</small></a>")
}
