package prismic

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// Prismic timestamps use a numeric zone without a colon.
var dateLayouts = []string{"2006-01-02T15:04:05-0700", time.RFC3339}

type rawDocument struct {
	ID                   string  `json:"id"`
	UID                  string  `json:"uid"`
	Type                 string  `json:"type"`
	FirstPublicationDate *string `json:"first_publication_date"`
	LastPublicationDate  *string `json:"last_publication_date"`
	Data                 rawData `json:"data"`
}

type rawData struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Author   string       `json:"author"`
	Banner   rawImage     `json:"banner"`
	Content  []rawSection `json:"content"`
}

type rawImage struct {
	URL string `json:"url"`
}

type rawSection struct {
	Heading string           `json:"heading"`
	Body    []richtext.Block `json:"body"`
}

type rawSearch struct {
	Results []rawDocument `json:"results"`
}

// checkSearchShape verifies the envelope every search response must have:
// a results array of documents with string uids, and a next_page key that
// is a string or null.
func checkSearchShape(u string, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &MalformedPageError{URL: u, Reason: "invalid JSON"}
	}
	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return gjson.Result{}, &MalformedPageError{URL: u, Field: "results", Reason: "missing or not an array"}
	}
	next := gjson.GetBytes(body, "next_page")
	if !next.Exists() {
		return gjson.Result{}, &MalformedPageError{URL: u, Field: "next_page", Reason: "missing"}
	}
	if next.Type != gjson.Null && next.Type != gjson.String {
		return gjson.Result{}, &MalformedPageError{URL: u, Field: "next_page", Reason: "must be a string or null"}
	}
	for i, doc := range results.Array() {
		if doc.Get("uid").Type != gjson.String {
			return gjson.Result{}, &MalformedPageError{URL: u, Field: fmt.Sprintf("results.%d.uid", i), Reason: "missing or not a string"}
		}
	}
	return next, nil
}

func decodeSearch(u string, body []byte) (rawSearch, gjson.Result, error) {
	next, err := checkSearchShape(u, body)
	if err != nil {
		return rawSearch{}, gjson.Result{}, err
	}
	var raw rawSearch
	if err := json.Unmarshal(body, &raw); err != nil {
		return rawSearch{}, gjson.Result{}, &MalformedPageError{URL: u, Field: "results", Reason: err.Error()}
	}
	return raw, next, nil
}

// decodePage turns a search response into a PostPage.
func decodePage(u string, body []byte) (content.PostPage, error) {
	raw, next, err := decodeSearch(u, body)
	if err != nil {
		return content.PostPage{}, err
	}
	items := make([]content.PostSummary, 0, len(raw.Results))
	for i, doc := range raw.Results {
		first, err := parseDate(doc.FirstPublicationDate)
		if err != nil {
			return content.PostPage{}, &MalformedPageError{URL: u, Field: fmt.Sprintf("results.%d.first_publication_date", i), Reason: err.Error()}
		}
		items = append(items, content.PostSummary{
			UID:              doc.UID,
			FirstPublishedAt: first,
			Title:            doc.Data.Title,
			Subtitle:         doc.Data.Subtitle,
			Author:           doc.Data.Author,
		})
	}
	// A null next_page decodes to "".
	return content.PostPage{Items: items, NextCursor: next.String()}, nil
}

// decodeDetail returns the first document of a search response.
func decodeDetail(u string, body []byte) (content.PostDetail, error) {
	raw, _, err := decodeSearch(u, body)
	if err != nil {
		return content.PostDetail{}, err
	}
	if len(raw.Results) == 0 {
		return content.PostDetail{}, ErrNotFound
	}
	doc := raw.Results[0]
	first, err := parseDate(doc.FirstPublicationDate)
	if err != nil {
		return content.PostDetail{}, &MalformedPageError{URL: u, Field: "results.0.first_publication_date", Reason: err.Error()}
	}
	last, err := parseDate(doc.LastPublicationDate)
	if err != nil {
		return content.PostDetail{}, &MalformedPageError{URL: u, Field: "results.0.last_publication_date", Reason: err.Error()}
	}
	detail := content.PostDetail{
		ID:               doc.ID,
		UID:              doc.UID,
		FirstPublishedAt: first,
		LastUpdatedAt:    last,
		Title:            doc.Data.Title,
		Subtitle:         doc.Data.Subtitle,
		BannerURL:        doc.Data.Banner.URL,
		Author:           doc.Data.Author,
	}
	if doc.Data.Content != nil {
		detail.Sections = make([]content.Section, 0, len(doc.Data.Content))
		for _, s := range doc.Data.Content {
			detail.Sections = append(detail.Sections, content.Section{Heading: s.Heading, Body: s.Body})
		}
	}
	return detail, nil
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, *v)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
