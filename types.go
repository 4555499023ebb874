package spacetraveling

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/feed"
	"github.com/eringen/spacetraveling/post"
)

// ContentSource is the headless CMS the site reads from. *prismic.Client
// implements it. An empty ref means the published content; a preview ref is
// forwarded verbatim.
type ContentSource interface {
	feed.Fetcher
	QueryPosts(ctx context.Context, ref string) (content.PostPage, error)
	Catalog(ctx context.Context, ref string) ([]content.PostSummary, error)
	GetByUID(ctx context.Context, ref, uid string) (content.PostDetail, error)
	GetByID(ctx context.Context, ref, id string) (content.PostDetail, error)
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// CommentsConfig configures the utterances comment widget.
type CommentsConfig struct {
	Repo      string
	IssueTerm string
	Theme     string
}

// Enabled reports whether the widget should be mounted.
func (c CommentsConfig) Enabled() bool {
	return c.Repo != ""
}

// HomeView is everything the home page template needs.
type HomeView struct {
	Site     SiteConfig
	Meta     PageMeta
	List     PostListView
	Preview  bool
	Locale   language.Tag
	Location *time.Location
}

// PostListView is a run of summaries plus the state of the load-more button.
// On the home page it holds the first page; on /posts/more/ only the items
// appended by that request.
type PostListView struct {
	Posts    []content.PostSummary
	HasMore  bool
	Cursor   string
	Locale   language.Tag
	Location *time.Location
	// Failed marks a load-more response whose fetch failed. The button is
	// rendered again on the same cursor so the reader can retry.
	Failed bool
}

// PostView is everything the post page templates need.
type PostView struct {
	Site        SiteConfig
	Meta        PageMeta
	Slug        string
	Post        content.PostDetail
	ReadTime    post.ReadTime
	Links       post.Links
	PublishedOn string
	LastEdited  string
	BannerSrc   string
	Comments    CommentsConfig
	Preview     bool
	Locale      language.Tag
}

// ErrorView feeds the 404 and 500 templates.
type ErrorView struct {
	Site   SiteConfig
	Locale language.Tag
}
