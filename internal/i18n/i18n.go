package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "locale"
)

var (
	supported = []language.Tag{language.English, language.Japanese}
	matcher   = language.NewMatcher(supported)
	builder   = catalog.NewBuilder(catalog.Fallback(language.English))
)

func init() {
	for key, tr := range messages {
		mustSet(key, tr)
	}
	for field, tr := range attributes {
		mustSet(attributeKey(field), tr)
	}
}

func mustSet(key string, tr translation) {
	if err := builder.SetString(language.English, key, tr.en); err != nil {
		panic(err)
	}
	if err := builder.SetString(language.Japanese, key, tr.ja); err != nil {
		panic(err)
	}
}

func attributeKey(field string) string {
	return "attribute." + field
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	return supported
}

// ParseTag maps a raw language value to a supported tag.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

// DefaultTag parses the configured locale, falling back to English.
func DefaultTag(locale string) language.Tag {
	if tag, ok := ParseTag(locale); ok {
		return tag
	}
	return language.English
}

// Resolve picks the request language from the lang query parameter, the
// locale cookie, then Accept-Language. The bool reports whether the query
// parameter chose it and should be persisted.
func Resolve(r *http.Request, fallback language.Tag) (language.Tag, bool) {
	if r == nil {
		return fallback, false
	}

	if tag, ok := ParseTag(r.URL.Query().Get(LangParam)); ok {
		return tag, true
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx], false
			}
		}
	}

	return fallback, false
}

// Printer returns a message printer bound to the catalog. Unsupported tags
// print in the closest supported language, English when nothing matches.
func Printer(tag language.Tag) *message.Printer {
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(supported[idx], message.Catalog(builder))
}

// T translates key, formatting args into the message.
func T(tag language.Tag, key string, args ...interface{}) string {
	return Printer(tag).Sprintf(key, args...)
}

// Attribute returns the display name of a request field.
func Attribute(tag language.Tag, field string) string {
	if _, ok := attributes[field]; !ok {
		return strings.ReplaceAll(field, "_", " ")
	}
	return T(tag, attributeKey(field))
}
