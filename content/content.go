// Package content defines the post types shared by the content client, the
// list aggregator and the post detail assembler.
package content

import (
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

// PostSummary is a post as shown in lists. Immutable once fetched.
type PostSummary struct {
	UID              string     `json:"uid"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"`
	Title            string     `json:"title"`
	Subtitle         string     `json:"subtitle"`
	Author           string     `json:"author"`
}

// PostPage is one page of summaries. An empty NextCursor means there are no
// further pages.
type PostPage struct {
	Items      []PostSummary `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// HasNext reports whether another page can be fetched.
func (p PostPage) HasNext() bool {
	return p.NextCursor != ""
}

// Section is a heading followed by rich-text body blocks.
type Section struct {
	Heading string           `json:"heading"`
	Body    []richtext.Block `json:"body"`
}

// PostDetail is a fully fetched post. Sections is nil when the document had
// no content field and empty when the post has no content.
type PostDetail struct {
	ID               string     `json:"id"`
	UID              string     `json:"uid"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"`
	LastUpdatedAt    *time.Time `json:"last_updated_at,omitempty"`
	Title            string     `json:"title"`
	Subtitle         string     `json:"subtitle,omitempty"`
	BannerURL        string     `json:"banner_url,omitempty"`
	Author           string     `json:"author"`
	Sections         []Section  `json:"sections"`
}
