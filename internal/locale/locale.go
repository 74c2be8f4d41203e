// Package locale renders server-produced text (deadline notifications, history labels)
// in the user's language.
package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Supported language codes, as stored in user preferences.
const (
	English   = "en"
	Russian   = "ru"
	Ukrainian = "ukr"
)

//go:embed locales/*.yaml
var files embed.FS

var tags = map[string]language.Tag{
	English:   language.English,
	Russian:   language.Russian,
	Ukrainian: language.Ukrainian,
}

// supported is ordered so the matcher falls back to English.
var supported = []string{English, Russian, Ukrainian}

// Bundle holds every catalog.
type Bundle struct {
	catalog  *catalog.Builder
	keys     map[string]map[string]struct{}
	matcher  language.Matcher
	fallback string
}

// Load parses the embedded catalogs. fallback is used when neither the preference nor the
// Accept-Language header names a supported language.
func Load(fallback string) (*Bundle, error) {
	if !Supported(fallback) {
		fallback = English
	}

	b := &Bundle{
		catalog:  catalog.NewBuilder(catalog.Fallback(tags[fallback])),
		keys:     make(map[string]map[string]struct{}, len(supported)),
		fallback: fallback,
	}

	matcherTags := make([]language.Tag, 0, len(supported))
	matcherTags = append(matcherTags, tags[fallback])
	for _, code := range supported {
		if code != fallback {
			matcherTags = append(matcherTags, tags[code])
		}
	}
	b.matcher = language.NewMatcher(matcherTags)

	for _, code := range supported {
		raw, err := files.ReadFile(path.Join("locales", code+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("read %s catalog: %w", code, err)
		}
		var tree map[string]interface{}
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse %s catalog: %w", code, err)
		}

		flat := make(map[string]string)
		flatten("", tree, flat)
		b.keys[code] = make(map[string]struct{}, len(flat))
		for key, value := range flat {
			if err := b.catalog.SetString(tags[code], key, value); err != nil {
				return nil, fmt.Errorf("register %s.%s: %w", code, key, err)
			}
			b.keys[code][key] = struct{}{}
		}
	}
	return b, nil
}

// MustLoad panics if the embedded catalogs are broken.
func MustLoad(fallback string) *Bundle {
	b, err := Load(fallback)
	if err != nil {
		panic(err)
	}
	return b
}

// Supported reports whether code names a bundled language.
func Supported(code string) bool {
	_, ok := tags[code]
	return ok
}

// Resolve picks the stored preference when it is supported, otherwise the best match of
// the Accept-Language header, otherwise the fallback.
func (b *Bundle) Resolve(preference, acceptLanguage string) string {
	if Supported(preference) {
		return preference
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return b.fallback
	}
	requested, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(requested) == 0 {
		return b.fallback
	}
	matched, _, confidence := b.matcher.Match(requested...)
	if confidence == language.No {
		return b.fallback
	}
	base, _ := matched.Base()
	for code, tag := range tags {
		if tagBase, _ := tag.Base(); tagBase == base {
			return code
		}
	}
	return b.fallback
}

// Printer returns a translator for code, falling back for unsupported codes.
func (b *Bundle) Printer(code string) *Printer {
	if !Supported(code) {
		code = b.fallback
	}
	return &Printer{
		code:    code,
		bundle:  b,
		printer: message.NewPrinter(tags[code], message.Catalog(b.catalog)),
	}
}

// Keys lists the message keys of a language, sorted.
func (b *Bundle) Keys(code string) []string {
	out := make([]string, 0, len(b.keys[code]))
	for key := range b.keys[code] {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Printer translates keys for one language.
type Printer struct {
	code    string
	bundle  *Bundle
	printer *message.Printer
}

// Language returns the language code the printer renders.
func (p *Printer) Language() string {
	return p.code
}

// T renders key with args. Unknown keys render as themselves.
func (p *Printer) T(key string, args ...interface{}) string {
	return p.printer.Sprintf(key, args...)
}

// Has reports whether key is translated in the printer's language or the fallback.
func (p *Printer) Has(key string) bool {
	if _, ok := p.bundle.keys[p.code][key]; ok {
		return true
	}
	_, ok := p.bundle.keys[p.bundle.fallback][key]
	return ok
}

// Value localizes a stored value such as a priority, status or tag name and returns it
// unchanged when no translation exists.
func (p *Printer) Value(v string) string {
	for _, prefix := range []string{"priorityOptions.", "status.", "tags."} {
		if p.Has(prefix + v) {
			return p.T(prefix + v)
		}
	}
	return v
}

// ChangeLabel returns the heading of a history change for field.
func (p *Printer) ChangeLabel(field string) string {
	key := changeKeys[field]
	if key == "" {
		key = "change"
	}
	return p.T(key)
}

// DeadlineNotification renders the warning sent before a deadline.
func (p *Printer) DeadlineNotification(title string, minutes int) string {
	return p.T("deadlineNotification", title, minutes)
}

var changeKeys = map[string]string{
	"title":         "titleChange",
	"description":   "descriptionChange",
	"tags":          "tagsChange",
	"deadline":      "deadlineChange",
	"priority":      "priorityChange",
	"status":        "statusChange",
	"deferred_date": "deferredDateChange",
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			flatten(full, v, out)
		case string:
			out[full] = v
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}
