package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/feed"
	"github.com/eringen/spacetraveling/i18n"
	"github.com/eringen/spacetraveling/post"
	"github.com/eringen/spacetraveling/prismic"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are served under /public/ and fall through to the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/comments.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleLoadMore)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/banner/:slug/", a.handleBanner)

	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", handleExitPreview)
	if a.Config.WebhookSecret != "" {
		e.POST("/api/revalidate", a.handleRevalidate)
	}
}

func (a *App) handleHome(c echo.Context) error {
	ctx, cancel := a.fetchContext(c)
	defer cancel()

	ref := PreviewRef(c)
	var page content.PostPage
	var err error
	if ref != "" {
		page, err = a.Content.QueryPosts(ctx, ref)
	} else {
		page, err = a.Cache.FirstPage(ctx)
	}
	if err != nil {
		return contentError(err)
	}

	f := feed.New(a.Content)
	f.Initialize(page)
	id, err := readerID(c)
	if err != nil {
		return fmt.Errorf("spacetraveling: reader session: %w", err)
	}
	a.Feeds.Put(id, f)

	locale := a.locale(c)
	return Render(c, a.Views.Home(HomeView{
		Site: a.Config,
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
		},
		List:     a.listView(f.Items(), f, locale),
		Preview:  ref != "",
		Locale:   locale,
		Location: a.location,
	}))
}

// handleLoadMore appends the next page to the reader's feed and renders only
// the new items plus a fresh load-more button. When the reader's feed expired
// or is on another cursor, it is rebuilt from the cursor the button carried.
func (a *App) handleLoadMore(c echo.Context) error {
	id, err := readerID(c)
	if err != nil {
		return fmt.Errorf("spacetraveling: reader session: %w", err)
	}
	cursor := c.QueryParam("cursor")

	ctx, cancel := a.fetchContext(c)
	defer cancel()

	f, ok := a.Feeds.Get(id)
	if !ok || (cursor != "" && cursor != f.Cursor()) {
		f = feed.New(a.Content)
		f.Initialize(content.PostPage{Items: a.shownBefore(ctx, c, cursor), NextCursor: cursor})
		a.Feeds.Put(id, f)
	}

	items, err := f.LoadMore(ctx)
	if err != nil {
		// The list on screen stays; only the button is swapped for an error
		// and a retry on the unchanged cursor.
		herr := contentError(err)
		var he *echo.HTTPError
		if !errors.As(herr, &he) || he.Code != http.StatusBadGateway {
			return herr
		}
		c.Logger().Warnf("load more: %v", err)
		v := a.listView(nil, f, a.locale(c))
		v.Failed = true
		return RenderStatus(c, http.StatusBadGateway, a.Views.PostList(v))
	}
	return Render(c, a.Views.PostList(a.listView(items, f, a.locale(c))))
}

// shownBefore returns the posts that precede the page cursor points at. They
// are already on the reader's screen, so a rebuilt feed must not repeat them.
func (a *App) shownBefore(ctx context.Context, c echo.Context, cursor string) []content.PostSummary {
	n := prismic.CursorOffset(cursor)
	if n == 0 {
		return nil
	}
	var catalog []content.PostSummary
	var err error
	if ref := PreviewRef(c); ref != "" {
		catalog, err = a.Content.Catalog(ctx, ref)
	} else {
		catalog, err = a.Cache.Catalog(ctx)
	}
	if err != nil {
		c.Logger().Warnf("load more: catalog unavailable: %v", err)
		return nil
	}
	return catalog[:min(n, len(catalog))]
}

func (a *App) listView(items []content.PostSummary, f *feed.Feed, locale language.Tag) PostListView {
	return PostListView{
		Posts:    items,
		HasMore:  f.HasMore(),
		Cursor:   f.Cursor(),
		Locale:   locale,
		Location: a.location,
	}
}

// handlePost serves a post. Previews always fetch with the preview ref.
// Otherwise a stored snapshot is served when present; unknown slugs get the
// pending shell, which requests the partial that fetches and stores the post.
func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	partial := isHTMX(c) && c.QueryParam("partial") == "post"

	if ref := PreviewRef(c); ref != "" {
		detail, err := a.fetchPost(c, ref, slug)
		if err != nil {
			return err
		}
		return a.renderPost(c, slug, detail, ref, partial)
	}

	snap, err := a.Store.GetSnapshot(slug)
	if err == nil {
		return a.renderPost(c, slug, snap.Post, "", partial)
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("spacetraveling: load snapshot %q: %w", slug, err)
	}

	if !partial && a.Config.FallbackRendering {
		c.Response().Header().Set("Cache-Control", "no-store")
		return Render(c, a.Views.PostPending(a.pendingView(c, slug)))
	}

	detail, err := a.fetchPost(c, "", slug)
	if err != nil {
		return err
	}
	if err := a.Store.SaveSnapshot(Snapshot{Slug: slug, Post: detail}); err != nil {
		c.Logger().Warnf("save snapshot %q: %v", slug, err)
	}
	return a.renderPost(c, slug, detail, "", partial)
}

func (a *App) fetchPost(c echo.Context, ref, slug string) (content.PostDetail, error) {
	ctx, cancel := a.fetchContext(c)
	defer cancel()
	detail, err := a.Content.GetByUID(ctx, ref, slug)
	if err != nil {
		return content.PostDetail{}, contentError(err)
	}
	return detail, nil
}

func (a *App) renderPost(c echo.Context, slug string, detail content.PostDetail, ref string, partial bool) error {
	v := a.postView(c, slug, detail, ref)
	if partial {
		return Render(c, a.Views.PostPartial(v))
	}
	return Render(c, a.Views.Post(v))
}

func (a *App) postView(c echo.Context, slug string, detail content.PostDetail, ref string) PostView {
	locale := a.locale(c)

	// A failed catalog lookup only costs the navigation links.
	ctx, cancel := a.fetchContext(c)
	defer cancel()
	var catalog []content.PostSummary
	var err error
	if ref != "" {
		catalog, err = a.Content.Catalog(ctx, ref)
	} else {
		catalog, err = a.Cache.Catalog(ctx)
	}
	if err != nil {
		c.Logger().Warnf("post %q: catalog unavailable: %v", slug, err)
	}

	published := ""
	if detail.FirstPublishedAt != nil {
		published = i18n.FormatDate(detail.FirstPublishedAt.In(a.location), locale)
	}

	// Slugs that cannot be cached on disk keep the CDN URL.
	banner := detail.BannerURL
	if banner != "" && ref == "" && a.bannerPath(slug) != "" {
		banner = "/banner/" + PathEscape(slug) + "/"
	}

	return PostView{
		Site: a.Config,
		Meta: PageMeta{
			Title:       detail.Title + " | " + a.Config.Name,
			Description: detail.Subtitle,
			URL:         BuildURL(a.Config.URL, "post", slug),
			OGType:      "article",
			Image:       detail.BannerURL,
		},
		Slug:        slug,
		Post:        detail,
		ReadTime:    post.ReadTimeFor(&detail, false),
		Links:       post.Navigate(catalog, detail),
		PublishedOn: published,
		LastEdited:  post.LastEdited(detail, a.location, locale),
		BannerSrc:   banner,
		Comments:    a.commentsConfig(),
		Preview:     ref != "",
		Locale:      locale,
	}
}

func (a *App) pendingView(c echo.Context, slug string) PostView {
	return PostView{
		Site: a.Config,
		Meta: PageMeta{
			Title:  a.Config.Name,
			URL:    BuildURL(a.Config.URL, "post", slug),
			OGType: "article",
		},
		Slug:     slug,
		ReadTime: post.ReadTimeFor(nil, true),
		Locale:   a.locale(c),
	}
}

func (a *App) commentsConfig() CommentsConfig {
	return CommentsConfig{
		Repo:      a.Config.UtterancesRepo,
		IssueTerm: a.Config.UtterancesIssueTerm,
		Theme:     a.Config.UtterancesTheme,
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx, cancel := a.fetchContext(c)
	defer cancel()
	catalog, err := a.Cache.Catalog(ctx)
	if err != nil {
		return contentError(err)
	}
	return a.renderSitemap(c, catalog)
}

func (a *App) handleFeed(c echo.Context) error {
	ctx, cancel := a.fetchContext(c)
	defer cancel()
	catalog, err := a.Cache.Catalog(ctx)
	if err != nil {
		return contentError(err)
	}
	return a.renderRSS(c, catalog)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Sitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

// fetchContext bounds a content API call by the request and FetchTimeout.
func (a *App) fetchContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), a.Config.FetchTimeout)
}

// locale picks the display language from ?lang= or Accept-Language.
func (a *App) locale(c echo.Context) language.Tag {
	if lang := c.QueryParam("lang"); lang != "" {
		return i18n.Parse(lang, a.defaultLocale)
	}
	return i18n.Match(c.Request().Header.Get("Accept-Language"), a.defaultLocale)
}

// contentError maps content source failures to HTTP errors.
func contentError(err error) error {
	var fetchErr *prismic.FetchError
	var malformed *prismic.MalformedPageError
	switch {
	case errors.Is(err, prismic.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	case errors.Is(err, prismic.ErrInvalidCursor):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor").SetInternal(err)
	case errors.As(err, &fetchErr), errors.As(err, &malformed), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusBadGateway, "content source unavailable").SetInternal(err)
	}
	return fmt.Errorf("spacetraveling: content: %w", err)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	view := ErrorView{Site: a.Config, Locale: a.locale(c)}
	if isHTMX(c) {
		// Swap error pages over the whole document instead of the request target.
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(view))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(view))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
