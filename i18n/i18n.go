// Package i18n holds the UI strings, locale matching and date formatting
// used by the web layer and views.
package i18n

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The key doubles as the en-US text.
const (
	MsgLoadMore    = "Load more posts"
	MsgPrevious    = "Previous post"
	MsgNext        = "Next post"
	MsgEdited      = "* edited on %s, at %s"
	MsgLoading     = "Loading..."
	MsgMinutes     = "%d min"
	MsgReadPending = "..."
	MsgExitPreview = "Exit preview mode"
	MsgNotFound    = "Post not found"
	MsgServerError = "Something went wrong"
	MsgBackHome    = "Back to home"
	MsgComments    = "Comments"
	MsgLoadFailed  = "Could not load more posts."
)

var (
	// Default is the locale used when nothing better matches.
	Default = language.BrazilianPortuguese

	supported = []language.Tag{language.BrazilianPortuguese, language.AmericanEnglish}
	matcher   = language.NewMatcher(supported)
)

var translations = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		MsgLoadMore:    "Carregar mais posts",
		MsgPrevious:    "Post anterior",
		MsgNext:        "Próximo post",
		MsgEdited:      "* editado em %s, às %s",
		MsgLoading:     "Carregando...",
		MsgMinutes:     "%d min",
		MsgReadPending: "...",
		MsgExitPreview: "Sair do modo Preview",
		MsgNotFound:    "Post não encontrado",
		MsgServerError: "Algo deu errado",
		MsgBackHome:    "Voltar para o início",
		MsgComments:    "Comentários",
		MsgLoadFailed:  "Não foi possível carregar mais posts.",
	},
}

var monthAbbrev = map[language.Base][12]string{
	mustBase(language.Portuguese): {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	mustBase(language.English):    {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

func init() {
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

func mustBase(t language.Tag) language.Base {
	b, _ := t.Base()
	return b
}

// Supported returns the locales with a translation.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Parse returns the supported tag closest to value, or fallback.
func Parse(value string, fallback language.Tag) language.Tag {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	t, err := language.Parse(value)
	if err != nil {
		return fallback
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Match picks the best supported tag for an Accept-Language header value.
func Match(acceptLanguage string, fallback language.Tag) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// FormatDate formats t as "dd MMM yyyy" with the month abbreviated for tag.
func FormatDate(t time.Time, tag language.Tag) string {
	base, _ := tag.Base()
	months, ok := monthAbbrev[base]
	if !ok {
		months = monthAbbrev[mustBase(language.Portuguese)]
	}
	return t.Format("02") + " " + months[t.Month()-1] + " " + t.Format("2006")
}

// FormatTime formats t as "HH:mm".
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}
