package views

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/i18n"
)

// NotFound renders the 404 page.
func NotFound(v spacetraveling.ErrorView) templ.Component {
	return errorPage(v, http.StatusNotFound, i18n.MsgNotFound)
}

// ServerError renders the 500 page.
func ServerError(v spacetraveling.ErrorView) templ.Component {
	return errorPage(v, http.StatusInternalServerError, i18n.MsgServerError)
}

func errorPage(v spacetraveling.ErrorView, code int, msg string) templ.Component {
	title := T(v.Locale, msg)
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<main class="container error"><h1>`)
		h.text(http.StatusText(code))
		h.raw("</h1><p>")
		h.text(title)
		h.raw(`</p><a href="/">`)
		h.text(T(v.Locale, i18n.MsgBackHome))
		h.raw("</a></main>")
		return h.err
	})
	meta := spacetraveling.PageMeta{
		Title:  title + " | " + v.Site.Name,
		URL:    spacetraveling.BuildURL(v.Site.URL),
		OGType: "website",
	}
	return Layout(v.Site, meta, v.Locale, "", body)
}
