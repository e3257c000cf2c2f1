// Package i18n holds localized user-facing messages for ledger error codes.
package i18n

import (
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Catalog stores user-facing messages for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

// Locale returns the catalog's BCP 47 locale tag.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for a code, substituting metadata values into
// {{.Key}} placeholders. Unknown codes fall back to a generic message.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return "An unexpected error occurred"
	}
	if len(metadata) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}

	tmpl, err := template.New(code).Parse(msg)
	if err != nil {
		return msg
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, metadata); err != nil {
		return msg
	}
	return sb.String()
}

var supported = []language.Tag{
	language.AmericanEnglish, // en-US: first is the fallback
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]*Catalog{
	language.AmericanEnglish: enUSCatalog,
}

// GetCatalog returns the best catalog for the requested locale, falling back
// to en-US when the locale is unknown or unsupported.
func GetCatalog(locale string) *Catalog {
	tag, err := language.Parse(locale)
	if err != nil {
		return enUSCatalog
	}
	_, idx, _ := matcher.Match(tag)
	if catalog, ok := catalogs[supported[idx]]; ok {
		return catalog
	}
	return enUSCatalog
}
