package spacetraveling

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME" envDefault:"spacetraveling"`                  // Site name
	URL         string `env:"SITE_URL" envDefault:"http://localhost:3000"`            // Canonical URL
	Description string `env:"SITE_DESCRIPTION"`                                       // RSS and meta description
	Author      string `env:"SITE_AUTHOR"`                                            // JSON-LD publisher
	Addr        string `env:"ADDR" envDefault:":3000"`                                // Listen address
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`                            // debug, info, warn, error
	StaticDir   string `env:"STATIC_DIR" envDefault:"public"`                         // User-owned assets
	HTMXSrc     string `env:"HTMX_SRC" envDefault:"https://unpkg.com/htmx.org@2.0.4"` // htmx script URL

	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/snapshots.db"` // Snapshot store
	BannerDir    string `env:"BANNER_DIR" envDefault:"data/banners"`         // Resized banner cache

	PrismicEndpoint    string        `env:"PRISMIC_API_ENDPOINT"` // Required
	PrismicAccessToken string        `env:"PRISMIC_ACCESS_TOKEN"`
	DocumentType       string        `env:"PRISMIC_DOCUMENT_TYPE" envDefault:"posts"`
	PageSize           int           `env:"PAGE_SIZE" envDefault:"3"`
	RequestsPerSecond  float64       `env:"PRISMIC_REQUESTS_PER_SECOND" envDefault:"5"`
	FetchTimeout       time.Duration `env:"PRISMIC_FETCH_TIMEOUT" envDefault:"10s"`

	PrebuildOnStart   bool          `env:"PREBUILD_ON_START" envDefault:"true"`
	PrebuildLimit     int           `env:"PREBUILD_LIMIT" envDefault:"20"`
	FallbackRendering bool          `env:"FALLBACK_RENDERING" envDefault:"true"`
	CatalogCacheTTL   time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	FeedSessionTTL    time.Duration `env:"FEED_SESSION_TTL" envDefault:"30m"`

	SessionSecret string `env:"SESSION_SECRET"` // Required: session cookie secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`  // Set true for HTTPS
	WebhookSecret string `env:"WEBHOOK_SECRET"` // Enables POST /api/revalidate/

	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"pt-BR"`
	TimeZone      string `env:"TIME_ZONE" envDefault:"America/Sao_Paulo"`

	UtterancesRepo      string `env:"UTTERANCES_REPO"` // Comments are off when empty
	UtterancesIssueTerm string `env:"UTTERANCES_ISSUE_TERM" envDefault:"pathname"`
	UtterancesTheme     string `env:"UTTERANCES_THEME" envDefault:"github-dark"`
}

// LoadConfig reads a SiteConfig from environment variables.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("spacetraveling: parse env: %w", err)
	}
	return cfg, nil
}

// setDefaults fills zero values for configs built in code rather than
// parsed from the environment.
func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTMXSrc == "" {
		c.HTMXSrc = "https://unpkg.com/htmx.org@2.0.4"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/snapshots.db"
	}
	if c.BannerDir == "" {
		c.BannerDir = "data/banners"
	}
	if c.DocumentType == "" {
		c.DocumentType = "posts"
	}
	if c.PageSize <= 0 {
		c.PageSize = 3
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.PrebuildLimit <= 0 {
		c.PrebuildLimit = 20
	}
	if c.CatalogCacheTTL == 0 {
		c.CatalogCacheTTL = 5 * time.Minute
	}
	if c.FeedSessionTTL == 0 {
		c.FeedSessionTTL = 30 * time.Minute
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "pt-BR"
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	if c.UtterancesIssueTerm == "" {
		c.UtterancesIssueTerm = "pathname"
	}
	if c.UtterancesTheme == "" {
		c.UtterancesTheme = "github-dark"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithHTTPClient sets the client used for content API and banner requests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithContentSource replaces the Prismic client built from the config.
func WithContentSource(src ContentSource) Option {
	return func(a *App) {
		a.Content = src
	}
}
