package post

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// sectionWithWords builds a single section holding n words of body text.
func sectionWithWords(n int) []content.Section {
	return []content.Section{{
		Body: []richtext.Block{{Type: richtext.TypeParagraph, Text: strings.TrimSpace(strings.Repeat("word ", n))}},
	}}
}

func TestEstimateReadTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 0},
		{1, 1},
		{199, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{401, 3},
	}
	for _, tt := range tests {
		if got := EstimateReadTime(sectionWithWords(tt.words)); got != tt.want {
			t.Errorf("EstimateReadTime(%d words) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestCountWordsHeadingsAndWhitespaceRuns(t *testing.T) {
	sections := []content.Section{
		{
			Heading: "  Rumo   ao espaço ",
			Body: []richtext.Block{
				{Text: "um\tdois\n\ntrês"},
				{Text: ""},
			},
		},
		{Heading: "", Body: []richtext.Block{{Text: "quatro"}}},
	}
	if got := CountWords(sections); got != 7 {
		t.Errorf("CountWords = %d, want 7", got)
	}
}

func TestReadTimeFor(t *testing.T) {
	detail := &content.PostDetail{Sections: sectionWithWords(201)}
	if got := ReadTimeFor(detail, false); got != (ReadTime{State: Ready, Minutes: 2}) {
		t.Errorf("ready read time = %+v", got)
	}
	if got := ReadTimeFor(detail, true); got.State != Pending || got.Minutes != 0 {
		t.Errorf("resolving read time = %+v, want pending", got)
	}
	if got := ReadTimeFor(nil, false); got.State != Unavailable {
		t.Errorf("nil detail = %+v, want unavailable", got)
	}
	if got := ReadTimeFor(&content.PostDetail{}, false); got.State != Unavailable {
		t.Errorf("missing content = %+v, want unavailable", got)
	}
	empty := &content.PostDetail{Sections: []content.Section{}}
	if got := ReadTimeFor(empty, false); got != (ReadTime{State: Ready, Minutes: 0}) {
		t.Errorf("empty post = %+v, want ready 0", got)
	}
}

func TestReadTimeIsIdempotent(t *testing.T) {
	detail := &content.PostDetail{Sections: sectionWithWords(350)}
	first := ReadTimeFor(detail, false)
	second := ReadTimeFor(detail, false)
	if first != second {
		t.Errorf("read time changed between calls: %+v vs %+v", first, second)
	}
}

func catalogOf(uids ...string) []content.PostSummary {
	out := make([]content.PostSummary, len(uids))
	for i, uid := range uids {
		out[i] = content.PostSummary{UID: uid, Title: strings.ToUpper(uid)}
	}
	return out
}

func linkUID(l *Link) string {
	if l == nil {
		return "<none>"
	}
	return l.UID
}

func TestNavigate(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	tests := []struct {
		current  content.PostDetail
		wantPrev string
		wantNext string
	}{
		{content.PostDetail{UID: "b", Title: "B"}, "a", "c"},
		{content.PostDetail{UID: "a", Title: "A"}, "<none>", "b"},
		{content.PostDetail{UID: "c", Title: "C"}, "b", "<none>"},
		{content.PostDetail{UID: "zzz", Title: "ZZZ"}, "<none>", "<none>"},
		// Title fallback when the UID is not in the catalog.
		{content.PostDetail{UID: "stale-uid", Title: "B"}, "a", "c"},
	}
	for _, tt := range tests {
		links := Navigate(catalog, tt.current)
		if linkUID(links.Previous) != tt.wantPrev || linkUID(links.Next) != tt.wantNext {
			t.Errorf("Navigate(%s) = (%s, %s), want (%s, %s)", tt.current.UID,
				linkUID(links.Previous), linkUID(links.Next), tt.wantPrev, tt.wantNext)
		}
	}
}

func TestNavigateSingleEntry(t *testing.T) {
	links := Navigate(catalogOf("a"), content.PostDetail{UID: "a", Title: "A"})
	if links.Previous != nil || links.Next != nil {
		t.Errorf("single entry catalog should have no links, got %+v", links)
	}
}

func TestNavigatePrefersUIDOverDuplicateTitle(t *testing.T) {
	catalog := []content.PostSummary{
		{UID: "first", Title: "Same"},
		{UID: "middle", Title: "Other"},
		{UID: "second", Title: "Same"},
	}
	links := Navigate(catalog, content.PostDetail{UID: "second", Title: "Same"})
	if linkUID(links.Previous) != "middle" || links.Next != nil {
		t.Errorf("expected previous=middle next=none, got (%s, %s)", linkUID(links.Previous), linkUID(links.Next))
	}
	if links.Previous.Title != "Other" {
		t.Errorf("previous title = %q", links.Previous.Title)
	}
}

func TestLastEdited(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	first := time.Date(2021, time.March, 25, 19, 0, 0, 0, time.UTC)
	updated := time.Date(2021, time.March, 26, 22, 25, 0, 0, time.UTC)

	detail := content.PostDetail{FirstPublishedAt: &first, LastUpdatedAt: &updated}
	if got := LastEdited(detail, sp, language.BrazilianPortuguese); got != "* editado em 26 mar 2021, às 19:25" {
		t.Errorf("pt-BR LastEdited = %q", got)
	}
	if got := LastEdited(detail, time.UTC, language.AmericanEnglish); got != "* edited on 26 Mar 2021, at 22:25" {
		t.Errorf("en-US LastEdited = %q", got)
	}
}

func TestLastEditedOmitted(t *testing.T) {
	first := time.Date(2021, time.March, 25, 19, 0, 0, 0, time.UTC)
	sameMinute := first.Add(20 * time.Second)

	if got := LastEdited(content.PostDetail{FirstPublishedAt: &first}, time.UTC, language.AmericanEnglish); got != "" {
		t.Errorf("no update time should give empty string, got %q", got)
	}
	detail := content.PostDetail{FirstPublishedAt: &first, LastUpdatedAt: &sameMinute}
	if got := LastEdited(detail, time.UTC, language.AmericanEnglish); got != "" {
		t.Errorf("update at publication time should give empty string, got %q", got)
	}
}
