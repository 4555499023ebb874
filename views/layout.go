package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/i18n"
)

// htmxConfig lets 404 and 502 responses be swapped: a pending post that turns
// out not to exist shows the not-found page, and a failed load more shows its
// inline error. Other errors are not swapped.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"404","swap":true,"error":true},{"code":"502","swap":true,"error":true},{"code":"[45]..","swap":false,"error":true}]}`

// Layout wraps body in the document shell: head metadata, htmx, and the
// site header.
func Layout(site spacetraveling.SiteConfig, meta spacetraveling.PageMeta, locale language.Tag, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw("<!DOCTYPE html>")
		h.raw("<html")
		h.attr("lang", locale.String())
		h.raw("><head>")
		h.raw(`<meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw(`<meta name="htmx-config"`)
		h.attr("content", htmxConfig)
		h.raw("/>")

		h.raw("<title>")
		h.text(meta.Title)
		h.raw("</title>")
		if meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", meta.Description)
			h.raw("/>")
		}
		h.raw(`<link rel="canonical"`)
		h.attr("href", meta.URL)
		h.raw("/>")
		h.raw(`<meta property="og:title"`)
		h.attr("content", meta.Title)
		h.raw("/>")
		h.raw(`<meta property="og:type"`)
		h.attr("content", meta.OGType)
		h.raw("/>")
		h.raw(`<meta property="og:url"`)
		h.attr("content", meta.URL)
		h.raw("/>")
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw("/>")
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", site.Name)
		h.raw("/>")
		h.raw(`<link rel="stylesheet" href="/public/styles.css"/>`)
		h.raw("<script defer")
		h.attr("src", site.HTMXSrc)
		h.raw("></script>")
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(jsonLD)
			h.raw("</script>")
		}
		h.raw("</head><body>")

		h.raw(`<header class="header"><div class="container"><a href="/" class="logo">`)
		h.text(site.Name)
		h.raw("</a></div></header>")
		h.component(body)
		h.raw("</body></html>")
		return h.err
	})
}

// previewBanner renders the exit link shown while previewing.
func previewBanner(h *htmlWriter, locale language.Tag) {
	h.raw(`<aside class="preview"><a href="/api/exit-preview">`)
	h.text(T(locale, i18n.MsgExitPreview))
	h.raw("</a></aside>")
}
