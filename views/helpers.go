package views

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/i18n"
	"github.com/eringen/spacetraveling/post"
)

// htmlWriter writes markup and keeps the first write error, so components
// can emit a page without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

// T translates a UI message for locale.
func T(locale language.Tag, key string, args ...any) string {
	return i18n.Printer(locale).Sprintf(key, args...)
}

// ReadTimeLabel renders a read time as shown next to the post date.
func ReadTimeLabel(rt post.ReadTime, locale language.Tag) string {
	switch rt.State {
	case post.Ready:
		return T(locale, i18n.MsgMinutes, rt.Minutes)
	case post.Pending:
		return T(locale, i18n.MsgReadPending)
	default:
		return ""
	}
}

// loadMoreVals is the hx-vals payload of the load-more button.
func loadMoreVals(cursor string, locale language.Tag) string {
	b, err := json.Marshal(map[string]string{"cursor": cursor, "lang": locale.String()})
	if err != nil {
		return "{}"
	}
	return string(b)
}
