// Package richtext renders Prismic rich-text blocks to HTML as a templ component.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Block types understood by the renderer.
const (
	TypeParagraph   = "paragraph"
	TypePreformat   = "preformatted"
	TypeListItem    = "list-item"
	TypeOListItem   = "o-list-item"
	TypeImage       = "image"
	TypeEmbed       = "embed"
	headingPrefix   = "heading"
	spanStrong      = "strong"
	spanEm          = "em"
	spanHyperlink   = "hyperlink"
	spanLabel       = "label"
	defaultImgWidth = "1024"
)

// Block is one rich-text fragment as delivered by the content API.
type Block struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Spans      []Span      `json:"spans,omitempty"`
	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Oembed     *Embed      `json:"oembed,omitempty"`
}

// Span marks a formatted range of a block's text. Offsets count runes.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData carries hyperlink and label payloads.
type SpanData struct {
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
	Label  string `json:"label,omitempty"`
}

// Dimensions of an image block.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Embed is the oembed payload of an embed block.
type Embed struct {
	EmbedURL string `json:"embed_url"`
	Title    string `json:"title,omitempty"`
}

// Component returns a templ.Component that renders blocks as HTML.
func Component(blocks []Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// AsHTML renders blocks to an HTML string.
func AsHTML(blocks []Block) string {
	var buf bytes.Buffer
	Render(&buf, blocks)
	return buf.String()
}

// Render writes the HTML representation of blocks to buf. Consecutive list
// items are grouped into a single <ul> or <ol>.
func Render(buf *bytes.Buffer, blocks []Block) {
	inList := false
	inOrderedList := false

	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	flushOrderedList := func() {
		if inOrderedList {
			buf.WriteString("</ol>")
			inOrderedList = false
		}
	}

	for _, b := range blocks {
		switch {
		case b.Type == TypeListItem:
			flushOrderedList()
			if !inList {
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
		case b.Type == TypeOListItem:
			flushList()
			if !inOrderedList {
				buf.WriteString("<ol>")
				inOrderedList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</li>")
		default:
			flushList()
			flushOrderedList()
			renderBlock(buf, b)
		}
	}
	flushList()
	flushOrderedList()
}

func renderBlock(buf *bytes.Buffer, b Block) {
	switch {
	case b.Type == TypeParagraph:
		buf.WriteString("<p>")
		buf.WriteString(FormatSpans(b.Text, b.Spans))
		buf.WriteString("</p>")
	case b.Type == TypePreformat:
		buf.WriteString("<pre>")
		buf.WriteString(html.EscapeString(b.Text))
		buf.WriteString("</pre>")
	case strings.HasPrefix(b.Type, headingPrefix):
		level, err := strconv.Atoi(strings.TrimPrefix(b.Type, headingPrefix))
		if err != nil || level < 1 || level > 6 {
			level = 2
		}
		tag := "h" + strconv.Itoa(level)
		buf.WriteString("<" + tag + ">")
		buf.WriteString(FormatSpans(b.Text, b.Spans))
		buf.WriteString("</" + tag + ">")
	case b.Type == TypeImage:
		src := safeURL(b.URL)
		if src == "" {
			return
		}
		width, height := defaultImgWidth, "768"
		if b.Dimensions != nil && b.Dimensions.Width > 0 && b.Dimensions.Height > 0 {
			width = strconv.Itoa(b.Dimensions.Width)
			height = strconv.Itoa(b.Dimensions.Height)
		}
		buf.WriteString(`<img loading="lazy" decoding="async" width="` + width + `" height="` + height +
			`" alt="` + html.EscapeString(b.Alt) + `" src="` + src + `"/>`)
	case b.Type == TypeEmbed:
		// Raw oembed HTML is never trusted; link to the embedded resource instead.
		if b.Oembed == nil {
			return
		}
		href := safeURL(b.Oembed.EmbedURL)
		if href == "" {
			return
		}
		label := b.Oembed.Title
		if label == "" {
			label = b.Oembed.EmbedURL
		}
		buf.WriteString(`<p class="embed"><a href="` + href + `" target="_blank" rel="noopener noreferrer">` +
			html.EscapeString(label) + `</a></p>`)
	default:
		if b.Text != "" {
			buf.WriteString("<p>")
			buf.WriteString(FormatSpans(b.Text, b.Spans))
			buf.WriteString("</p>")
		}
	}
}

// FormatSpans escapes text and wraps the span ranges in their HTML tags.
// Overlapping spans that do not nest are closed and reopened so the output
// is always well formed. Newlines become <br/>.
func FormatSpans(text string, spans []Span) string {
	runes := []rune(text)
	n := len(runes)

	valid := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > n || s.Start >= s.End || openTag(s) == "" {
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return escapeText(text)
	}
	// Outer spans first: earlier start, then longer.
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	points := map[int]struct{}{0: {}, n: {}}
	for _, s := range valid {
		points[s.Start] = struct{}{}
		points[s.End] = struct{}{}
	}
	bounds := make([]int, 0, len(points))
	for p := range points {
		bounds = append(bounds, p)
	}
	sort.Ints(bounds)

	var b strings.Builder
	var stack []int // indexes into valid
	for i := 0; i+1 < len(bounds); i++ {
		from, to := bounds[i], bounds[i+1]
		var active []int
		for idx, s := range valid {
			if s.Start <= from && s.End >= to {
				active = append(active, idx)
			}
		}
		common := 0
		for common < len(stack) && common < len(active) && stack[common] == active[common] {
			common++
		}
		for len(stack) > common {
			b.WriteString(closeTag(valid[stack[len(stack)-1]]))
			stack = stack[:len(stack)-1]
		}
		for _, idx := range active[common:] {
			b.WriteString(openTag(valid[idx]))
			stack = append(stack, idx)
		}
		b.WriteString(escapeText(string(runes[from:to])))
	}
	for len(stack) > 0 {
		b.WriteString(closeTag(valid[stack[len(stack)-1]]))
		stack = stack[:len(stack)-1]
	}
	return b.String()
}

func openTag(s Span) string {
	switch s.Type {
	case spanStrong:
		return "<strong>"
	case spanEm:
		return "<em>"
	case spanLabel:
		if s.Data == nil || s.Data.Label == "" {
			return `<span>`
		}
		return `<span class="` + html.EscapeString(s.Data.Label) + `">`
	case spanHyperlink:
		if s.Data == nil {
			return ""
		}
		href := safeURL(s.Data.URL)
		if href == "" {
			return ""
		}
		attrs := ""
		if s.Data.Target == "_blank" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>`
	}
	return ""
}

func closeTag(s Span) string {
	switch s.Type {
	case spanStrong:
		return "</strong>"
	case spanEm:
		return "</em>"
	case spanLabel:
		return "</span>"
	case spanHyperlink:
		return "</a>"
	}
	return ""
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}

func safeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
