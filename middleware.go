package spacetraveling

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName = "reader_session"
	readerKey   = "reader_id"
	previewKey  = "preview_ref"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") || strings.HasPrefix(path, "/banner/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: a.contentSecurityPolicy(),
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				strings.HasPrefix(path, "/api/") ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
		},
	}))

	e.Use(cacheControlMiddleware)
}

// contentSecurityPolicy allows the htmx script host and the utterances
// widget, which loads a script and an iframe from utteranc.es.
func (a *App) contentSecurityPolicy() string {
	scripts := "'self' 'unsafe-inline' https://utteranc.es"
	if u, err := url.Parse(a.Config.HTMXSrc); err == nil && u.Host != "" {
		scripts += " " + u.Scheme + "://" + u.Host
	}
	return "default-src 'self'; script-src " + scripts +
		"; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'" +
		"; connect-src 'self'; frame-src https://utteranc.es; media-src 'self' data:"
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		h := c.Response().Header()
		switch {
		case strings.HasPrefix(path, "/public/"):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case strings.HasPrefix(path, "/api/") || PreviewRef(c) != "":
			h.Set("Cache-Control", "no-store")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			h.Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/banner/"):
			h.Set("Cache-Control", "public, max-age=86400")
		case path == "/" || path == "/posts/more/":
			// The list belongs to the reader's feed.
			h.Set("Cache-Control", "private, no-cache")
			h.Add("Vary", "Accept-Language")
		default:
			h.Set("Cache-Control", "public, max-age=3600")
			h.Add("Vary", "Accept-Language")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// readerID returns the reader id stored in the session cookie, creating and
// saving a new one on first visit.
func readerID(c echo.Context) (string, error) {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return "", err
	}
	if id, ok := sess.Values[readerKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[readerKey] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}
	return id, nil
}

// PreviewRef returns the preview ref of the current session, or "" when the
// reader is not previewing.
func PreviewRef(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil || sess == nil {
		return ""
	}
	ref, _ := sess.Values[previewKey].(string)
	return ref
}

func setPreviewSession(c echo.Context, ref string) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.Values[previewKey] = ref
	return sess.Save(c.Request(), c.Response())
}

func clearPreviewSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	delete(sess.Values, previewKey)
	return sess.Save(c.Request(), c.Response())
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
