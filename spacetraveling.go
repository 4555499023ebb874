// Package spacetraveling is a server-rendered blog front-end built with Go,
// Echo, and templ. It reads posts from a Prismic repository and serves a
// paginated list, post pages with reading time and navigation, RSS, a
// sitemap, and preview mode.
//
// Users provide their own templ templates via the ViewFuncs struct (the views
// package ships a default set), and spacetraveling handles the handler logic,
// middleware, caching, and the snapshot store.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/i18n"
	"github.com/eringen/spacetraveling/prismic"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home        func(v HomeView) templ.Component
	PostList    func(v PostListView) templ.Component
	Post        func(v PostView) templ.Component
	PostPartial func(v PostView) templ.Component
	PostPending func(v PostView) templ.Component
	NotFound    func(v ErrorView) templ.Component
	ServerError func(v ErrorView) templ.Component
}

// App is the central spacetraveling application. It wires together the
// content source, cache, snapshot store, handlers, middleware, and
// user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *CatalogCache
	Feeds   *FeedRegistry
	Content ContentSource
	Views   ViewFuncs

	previewLimiter *RequestLimiter
	httpClient     *http.Client
	location       *time.Location
	defaultLocale  language.Tag
	customRoutes   []func(*App)
	stopCleanup    func()
	initialized    bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration and builds the content client, store,
// cache, middleware, and routes. Start calls it; tests and the prebuild
// command call it directly.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("spacetraveling: SessionSecret is required")
	}

	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	loc, err := time.LoadLocation(a.Config.TimeZone)
	if err != nil {
		return fmt.Errorf("spacetraveling: load time zone %q: %w", a.Config.TimeZone, err)
	}
	a.location = loc
	a.defaultLocale = i18n.Parse(a.Config.DefaultLocale, i18n.Default)

	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.Config.FetchTimeout}
	}

	if a.Content == nil {
		if a.Config.PrismicEndpoint == "" {
			return fmt.Errorf("spacetraveling: PrismicEndpoint is required")
		}
		client, err := prismic.New(prismic.Options{
			Endpoint:          a.Config.PrismicEndpoint,
			AccessToken:       a.Config.PrismicAccessToken,
			DocumentType:      a.Config.DocumentType,
			PageSize:          a.Config.PageSize,
			RequestsPerSecond: a.Config.RequestsPerSecond,
			HTTPClient:        a.httpClient,
		})
		if err != nil {
			return fmt.Errorf("spacetraveling: init content client: %w", err)
		}
		a.Content = client
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewCatalogCache(a.Content, a.Config.CatalogCacheTTL)

	a.Feeds = NewFeedRegistry(a.Config.FeedSessionTTL)
	a.stopCleanup = a.Feeds.StartCleanup(time.Minute)

	a.previewLimiter = NewRequestLimiter(10, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the app, prebuilds snapshots when configured, and starts
// the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}

	if a.Config.PrebuildOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		n, err := a.Prebuild(ctx)
		cancel()
		if err != nil {
			a.Echo.Logger.Warnf("prebuild stopped after %d posts: %v", n, err)
		} else {
			a.Echo.Logger.Infof("prebuilt %d posts", n)
		}
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	a.Close()
	return err
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
