package prismic

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNotFound is returned when a UID or ID query matches no document.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrInvalidCursor is returned for a cursor that does not point at the
	// configured API. Such cursors are never fetched.
	ErrInvalidCursor = errors.New("prismic: cursor does not point at the content API")
)

// FetchError reports a failed request: a transport failure or a non-2xx
// response. URL never contains the access token.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("prismic: fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("prismic: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MalformedPageError reports a response that does not have the expected
// shape. Field names the offending JSON path when there is one.
type MalformedPageError struct {
	URL    string
	Field  string
	Reason string
}

func (e *MalformedPageError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("prismic: malformed response from %s: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("prismic: malformed response from %s: %s %s", e.URL, e.Field, e.Reason)
}

// redact hides the access token of a request URL.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("access_token") == "" {
		return raw
	}
	q.Set("access_token", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
