// Package i18n renders localized messages for battlegrid error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (string form to avoid a cycle with
// the errors package).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string

	mu       sync.Mutex
	compiled map[Code]*template.Template
}

// supported lists locales with a message catalog, base locale first.
var supported = []language.Tag{
	language.AmericanEnglish,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[string]*Catalog{
	"en-US": NewCatalog("en-US", enUS),
}

// GetCatalog returns the catalog best matching the given locale.
// Unknown or empty locales fall back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = "en-US"
	}
	tag, _ := language.MatchStrings(matcher, requested)
	if c, ok := catalogs[tag.String()]; ok {
		return c
	}
	return catalogs["en-US"]
}

// NewCatalog creates a catalog from a locale and message templates.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	return &Catalog{
		locale:   locale,
		messages: messages,
		compiled: map[Code]*template.Template{},
	}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Falls back to the error code itself if no template is found or the
// template fails to render.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.messages[code]
	if !ok {
		return code
	}

	tmpl, err := c.lookupTemplate(code, text)
	if err != nil {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return code
	}
	return buf.String()
}

func (c *Catalog) lookupTemplate(code Code, text string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tmpl, ok := c.compiled[code]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New(code).Parse(text)
	if err != nil {
		return nil, err
	}
	c.compiled[code] = tmpl
	return tmpl, nil
}
