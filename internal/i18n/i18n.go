package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var bundled embed.FS

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
	tags      []language.Tag
	matcher   language.Matcher
}

// Default loads the bundled en/ta dictionaries with the given fallback.
func Default(fallback string) (*Bundle, error) {
	sub, err := fs.Sub(bundled, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub, fallback, []string{"en", "ta"})
}

// Load reads <lang>.json for every supported language from fsys. Only the fallback
// dictionary is mandatory.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	if fallback == "" {
		fallback = "en"
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	// The matcher's first tag is its default, so the fallback goes first.
	ordered := append([]string{fallback}, supported...)
	for _, l := range ordered {
		if _, seen := b.supported[l]; seen {
			continue
		}
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", l, err)
		}
		b.supported[l] = struct{}{}
		b.tags = append(b.tags, tag)

		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			// allow missing file for non-default locales
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang is one of the configured languages.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf is T followed by fmt.Sprintf with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	if strings.TrimSpace(acceptLang) == "" {
		return b.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := b.tags[idx].Base()
	lang := base.String()
	if !b.IsSupported(lang) {
		return b.fallback
	}
	return lang
}

// Localizer binds a bundle to one language for use in templates.
type Localizer struct {
	bundle *Bundle
	Lang   string
}

// For returns a Localizer for lang.
func (b *Bundle) For(lang string) Localizer {
	if lang == "" {
		lang = b.fallback
	}
	return Localizer{bundle: b, Lang: lang}
}

// T translates key.
func (l Localizer) T(key string) string {
	if l.bundle == nil {
		return key
	}
	return l.bundle.T(l.Lang, key)
}

// F translates key and formats it with args.
func (l Localizer) F(key string, args ...any) string {
	return fmt.Sprintf(l.T(key), args...)
}
