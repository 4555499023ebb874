// Package prismic is a small client for the Prismic v2 REST API, limited to
// what the blog needs: listing posts page by page and fetching one post.
// Every response is checked against the expected shape before decoding.
package prismic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/eringen/spacetraveling/content"
)

const (
	defaultDocumentType = "posts"
	defaultPageSize     = 3
	catalogPageSize     = 100
	maxCatalogPages     = 50
	maxResponseSize     = 8 << 20 // 8MB
	defaultRefTTL       = 30 * time.Second
	orderings           = "[document.first_publication_date desc]"
)

// Options configures a Client.
type Options struct {
	Endpoint          string // e.g. https://repo.cdn.prismic.io/api/v2
	AccessToken       string
	DocumentType      string  // default "posts"
	PageSize          int     // list page size (default 3)
	RequestsPerSecond float64 // 0 disables throttling
	// RefTTL is how long the master ref is reused before it is looked up
	// again (default 30s, negative disables).
	RefTTL     time.Duration
	HTTPClient *http.Client
}

// Client talks to one Prismic repository.
type Client struct {
	endpoint    *url.URL
	accessToken string
	docType     string
	pageSize    int
	httpClient  *http.Client
	limiter     *rate.Limiter

	refMu  sync.Mutex
	ref    string
	refAt  time.Time
	refTTL time.Duration
	now    func() time.Time
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("prismic: endpoint is required")
	}
	u, err := url.Parse(strings.TrimSuffix(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute http(s) URL", opts.Endpoint)
	}
	if opts.DocumentType == "" {
		opts.DocumentType = defaultDocumentType
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.RefTTL == 0 {
		opts.RefTTL = defaultRefTTL
	}
	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		if b := int(opts.RequestsPerSecond); b > burst {
			burst = b
		}
	}
	return &Client{
		endpoint:    u,
		accessToken: opts.AccessToken,
		docType:     opts.DocumentType,
		pageSize:    opts.PageSize,
		httpClient:  opts.HTTPClient,
		limiter:     rate.NewLimiter(limit, burst),
		refTTL:      opts.RefTTL,
		now:         time.Now,
	}, nil
}

// Host returns the host of the API endpoint.
func (c *Client) Host() string {
	return c.endpoint.Host
}

// PageSize returns the list page size.
func (c *Client) PageSize() int {
	return c.pageSize
}

// MasterRef returns the ref of the currently published content.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	u := c.apiURL("", nil)
	body, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}
	refs := gjson.GetBytes(body, "refs")
	if !refs.IsArray() {
		return "", &MalformedPageError{URL: redact(u), Field: "refs", Reason: "missing or not an array"}
	}
	for _, r := range refs.Array() {
		if r.Get("isMasterRef").Bool() {
			if ref := r.Get("ref").String(); ref != "" {
				return ref, nil
			}
		}
	}
	return "", &MalformedPageError{URL: redact(u), Field: "refs", Reason: "has no master ref"}
}

// QueryPosts returns the first page of posts. An empty ref uses the master
// ref; a preview ref is forwarded verbatim.
func (c *Client) QueryPosts(ctx context.Context, ref string) (content.PostPage, error) {
	return c.queryPage(ctx, ref, c.pageSize)
}

// FetchPage fetches the page a next_page cursor points at.
func (c *Client) FetchPage(ctx context.Context, cursor string) (content.PostPage, error) {
	u, err := c.cursorURL(cursor)
	if err != nil {
		return content.PostPage{}, err
	}
	body, err := c.get(ctx, u)
	if err != nil {
		return content.PostPage{}, err
	}
	return decodePage(redact(u), body)
}

// Catalog returns every post in list order, following all pages.
func (c *Client) Catalog(ctx context.Context, ref string) ([]content.PostSummary, error) {
	page, err := c.queryPage(ctx, ref, catalogPageSize)
	if err != nil {
		return nil, err
	}
	all := page.Items
	for n := 1; page.HasNext(); n++ {
		if n >= maxCatalogPages {
			return nil, fmt.Errorf("prismic: catalog exceeds %d pages", maxCatalogPages)
		}
		page, err = c.FetchPage(ctx, page.NextCursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
	}
	return all, nil
}

// GetByUID fetches one post by its UID.
func (c *Client) GetByUID(ctx context.Context, ref, uid string) (content.PostDetail, error) {
	q := fmt.Sprintf(`[[at(my.%s.uid,%s)]]`, c.docType, strconv.Quote(uid))
	return c.queryDetail(ctx, ref, q)
}

// GetByID fetches one post by its document ID.
func (c *Client) GetByID(ctx context.Context, ref, id string) (content.PostDetail, error) {
	q := fmt.Sprintf(`[[at(document.id,%s)]]`, strconv.Quote(id))
	return c.queryDetail(ctx, ref, q)
}

func (c *Client) queryPage(ctx context.Context, ref string, pageSize int) (content.PostPage, error) {
	ref, err := c.resolveRef(ctx, ref)
	if err != nil {
		return content.PostPage{}, err
	}
	fields := make([]string, 0, 3)
	for _, f := range []string{"title", "subtitle", "author"} {
		fields = append(fields, c.docType+"."+f)
	}
	u := c.apiURL("/documents/search", url.Values{
		"ref":       {ref},
		"q":         {fmt.Sprintf(`[[at(document.type,%s)]]`, strconv.Quote(c.docType))},
		"fetch":     {strings.Join(fields, ",")},
		"pageSize":  {strconv.Itoa(pageSize)},
		"orderings": {orderings},
	})
	body, err := c.get(ctx, u)
	if err != nil {
		return content.PostPage{}, err
	}
	return decodePage(redact(u), body)
}

func (c *Client) queryDetail(ctx context.Context, ref, q string) (content.PostDetail, error) {
	ref, err := c.resolveRef(ctx, ref)
	if err != nil {
		return content.PostDetail{}, err
	}
	u := c.apiURL("/documents/search", url.Values{
		"ref":      {ref},
		"q":        {q},
		"pageSize": {"1"},
	})
	body, err := c.get(ctx, u)
	if err != nil {
		return content.PostDetail{}, err
	}
	return decodeDetail(redact(u), body)
}

// resolveRef returns ref, or the master ref when ref is empty. The master
// ref is reused for RefTTL.
func (c *Client) resolveRef(ctx context.Context, ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	c.refMu.Lock()
	if c.ref != "" && c.now().Sub(c.refAt) < c.refTTL {
		ref = c.ref
	}
	c.refMu.Unlock()
	if ref != "" {
		return ref, nil
	}

	ref, err := c.MasterRef(ctx)
	if err != nil {
		return "", err
	}
	c.refMu.Lock()
	c.ref, c.refAt = ref, c.now()
	c.refMu.Unlock()
	return ref, nil
}

// ForgetRef drops the remembered master ref, so the next read sees newly
// published content.
func (c *Client) ForgetRef() {
	c.refMu.Lock()
	c.ref = ""
	c.refMu.Unlock()
}

// CursorOffset returns how many posts precede the page a next_page cursor
// points at, or 0 when the cursor carries no page position.
func CursorOffset(cursor string) int {
	u, err := url.Parse(cursor)
	if err != nil {
		return 0
	}
	q := u.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 2 {
		return 0
	}
	size, err := strconv.Atoi(q.Get("pageSize"))
	if err != nil || size < 1 {
		return 0
	}
	return (page - 1) * size
}

func (c *Client) apiURL(path string, q url.Values) string {
	u := *c.endpoint
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if q == nil {
		q = url.Values{}
	}
	if c.accessToken != "" {
		q.Set("access_token", c.accessToken)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// cursorURL checks that cursor targets the configured API and adds the
// access token when the cursor lacks one.
func (c *Client) cursorURL(cursor string) (string, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || !strings.EqualFold(u.Host, c.endpoint.Host) {
		return "", ErrInvalidCursor
	}
	if !strings.HasPrefix(u.Path, c.endpoint.Path) {
		return "", ErrInvalidCursor
	}
	q := u.Query()
	if c.accessToken != "" && q.Get("access_token") == "" {
		q.Set("access_token", c.accessToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// get performs a throttled GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	shown := redact(u)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: shown, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: shown, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, &FetchError{URL: shown, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &FetchError{URL: shown, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &FetchError{URL: shown, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}
