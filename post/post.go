// Package post derives the computed parts of a post page: reading time,
// previous/next navigation and the last-edited annotation. Every function is
// pure; the same input always yields the same output.
package post

import (
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/i18n"
)

// WordsPerMinute is the reading speed used for read time estimates.
const WordsPerMinute = 200

// editThreshold is how far the last update must be from the first
// publication before the post is annotated as edited.
const editThreshold = time.Minute

// ReadTimeState tells whether a read time could be computed.
type ReadTimeState int

const (
	// Pending means the route is still resolving and content is not available yet.
	Pending ReadTimeState = iota
	// Ready means Minutes holds the estimate.
	Ready
	// Unavailable means the post has no content to measure.
	Unavailable
)

func (s ReadTimeState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "unavailable"
	}
}

// ReadTime is a three-state reading time estimate.
type ReadTime struct {
	State   ReadTimeState
	Minutes int
}

// Link points at a sibling post.
type Link struct {
	Title string
	UID   string
}

// Links holds the posts immediately before and after the current one.
// A nil field means there is no such post.
type Links struct {
	Previous *Link
	Next     *Link
}

// CountWords sums the whitespace-separated words of every heading and body
// block text.
func CountWords(sections []content.Section) int {
	total := 0
	for _, s := range sections {
		total += len(strings.Fields(s.Heading))
		for _, b := range s.Body {
			total += len(strings.Fields(b.Text))
		}
	}
	return total
}

// EstimateReadTime returns the reading time in whole minutes, rounded up.
func EstimateReadTime(sections []content.Section) int {
	words := CountWords(sections)
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// ReadTimeFor computes the read time of detail. While resolving is true the
// result is Pending regardless of detail.
func ReadTimeFor(detail *content.PostDetail, resolving bool) ReadTime {
	if resolving {
		return ReadTime{State: Pending}
	}
	if detail == nil || detail.Sections == nil {
		return ReadTime{State: Unavailable}
	}
	return ReadTime{State: Ready, Minutes: EstimateReadTime(detail.Sections)}
}

// Navigate finds the catalog entries around current. The post is located by
// UID; the first entry with the same title is used only when the UID is not
// in the catalog. When nothing matches both links are nil.
func Navigate(catalog []content.PostSummary, current content.PostDetail) Links {
	entries := make([]Link, len(catalog))
	for i, p := range catalog {
		entries[i] = Link{Title: p.Title, UID: p.UID}
	}

	idx := -1
	if current.UID != "" {
		for i, e := range entries {
			if e.UID == current.UID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		for i, e := range entries {
			if e.Title == current.Title {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return Links{}
	}

	var links Links
	if idx > 0 {
		prev := entries[idx-1]
		links.Previous = &prev
	}
	if idx < len(entries)-1 {
		next := entries[idx+1]
		links.Next = &next
	}
	return links
}

// LastEdited returns the localized "edited on" annotation, or "" when the
// post was never meaningfully updated after its first publication.
func LastEdited(detail content.PostDetail, loc *time.Location, tag language.Tag) string {
	if detail.LastUpdatedAt == nil {
		return ""
	}
	updated := *detail.LastUpdatedAt
	if detail.FirstPublishedAt != nil {
		diff := updated.Sub(*detail.FirstPublishedAt)
		if diff < 0 {
			diff = -diff
		}
		if diff < editThreshold {
			return ""
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	updated = updated.In(loc)
	return i18n.Printer(tag).Sprintf(i18n.MsgEdited, i18n.FormatDate(updated, tag), i18n.FormatTime(updated))
}
