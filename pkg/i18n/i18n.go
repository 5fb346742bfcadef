package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Locale BCP 47 tag of a message set
type Locale string

const (
	LocalePtBR Locale = "pt-BR"
	LocaleEn   Locale = "en"
)

// DefaultLocale storefront language
const DefaultLocale = LocalePtBR

// Bundle message sets per locale. Lookups fall back to the fallback locale,
// then to the key itself.
type Bundle struct {
	mu       sync.RWMutex
	messages map[Locale]map[string]string
	fallback Locale
}

func NewBundle(fallback Locale) *Bundle {
	return &Bundle{
		messages: make(map[Locale]map[string]string),
		fallback: fallback,
	}
}

// NewDefaultBundle bundle preloaded with the built-in messages
func NewDefaultBundle() *Bundle {
	b := NewBundle(DefaultLocale)
	for locale, msgs := range DefaultMessages() {
		b.LoadMessages(locale, msgs)
	}
	return b
}

// LoadDir merges every <locale>.json, <locale>.yaml or <locale>.yml file in
// dir over the messages already loaded, so a file only needs the keys it
// overrides.
func (b *Bundle) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read i18n dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		var unmarshal func([]byte, interface{}) error
		switch ext {
		case ".json":
			unmarshal = json.Unmarshal
		case ".yaml", ".yml":
			unmarshal = yaml.Unmarshal
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		var msgs map[string]string
		if err := unmarshal(data, &msgs); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		b.LoadMessages(Locale(strings.TrimSuffix(entry.Name(), ext)), msgs)
	}
	return nil
}

// LoadMessages merges messages into the locale's set
func (b *Bundle) LoadMessages(locale Locale, messages map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.messages[locale]
	if !ok {
		set = make(map[string]string, len(messages))
		b.messages[locale] = set
	}
	for k, v := range messages {
		set[k] = v
	}
}

// T formats the message for key with args (fmt verbs)
func (b *Bundle) T(locale Locale, key string, args ...interface{}) string {
	msg, ok := b.lookup(locale, key)
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Has reports whether key resolves for locale, fallback included
func (b *Bundle) Has(locale Locale, key string) bool {
	_, ok := b.lookup(locale, key)
	return ok
}

func (b *Bundle) lookup(locale Locale, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if msg, ok := b.messages[locale][key]; ok {
		return msg, true
	}
	msg, ok := b.messages[b.fallback][key]
	return msg, ok
}

// SupportedLocales loaded locales, sorted
func (b *Bundle) SupportedLocales() []Locale {
	b.mu.RLock()
	defer b.mu.RUnlock()

	locales := make([]Locale, 0, len(b.messages))
	for l := range b.messages {
		locales = append(locales, l)
	}
	sort.Slice(locales, func(i, j int) bool { return locales[i] < locales[j] })
	return locales
}

// Match picks the loaded locale that best serves an Accept-Language header.
// Tags are tried by descending q; each tag matches a loaded locale exactly
// (case-insensitive) or by primary language ("pt-PT" serves "pt-BR").
func (b *Bundle) Match(header string) Locale {
	supported := b.SupportedLocales()
	for _, tag := range ParseAcceptLanguage(header) {
		if l, ok := matchTag(tag, supported); ok {
			return l
		}
	}
	return b.fallback
}

func matchTag(tag string, supported []Locale) (Locale, bool) {
	for _, l := range supported {
		if strings.EqualFold(string(l), tag) {
			return l, true
		}
	}
	base := primary(tag)
	for _, l := range supported {
		if primary(string(l)) == base {
			return l, true
		}
	}
	return "", false
}

func primary(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// ParseAcceptLanguage language tags of the header ordered by q, highest
// first. Tags with q=0 and the "*" wildcard are dropped.
func ParseAcceptLanguage(header string) []string {
	type weighted struct {
		tag string
		q   float64
	}
	var tags []weighted
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		tag := strings.TrimSpace(fields[0])
		if tag == "" || tag == "*" {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if v, ok := strings.CutPrefix(param, "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		if q <= 0 {
			continue
		}
		tags = append(tags, weighted{tag, q})
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].q > tags[j].q })

	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.tag
	}
	return out
}
