// Package content renders the localized markdown pages bundled with the binary.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"
)

//go:embed pages
var bundled embed.FS

// ErrNotFound is returned when no locale has the requested page.
var ErrNotFound = errors.New("content: page not found")

const defaultLang = "en"

// Page is a rendered content page.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	UpdatedAt time.Time
	SEO       SEO
	HTML      template.HTML
	TOC       []Heading
}

type SEO struct {
	Title       string
	Description string
}

// Heading is a table of contents entry.
type Heading struct {
	ID    string
	Text  string
	Level int
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

// Store loads pages from a filesystem laid out as <lang>/<slug>.md and caches the
// rendered result.
type Store struct {
	fsys     fs.FS
	md       goldmark.Markdown
	sanitize *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]Page
}

// NewStore returns a store over fsys. A nil fsys uses the bundled pages.
func NewStore(fsys fs.FS) *Store {
	if fsys == nil {
		sub, err := fs.Sub(bundled, "pages")
		if err != nil {
			panic(err)
		}
		fsys = sub
	}
	return &Store{
		fsys: fsys,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		sanitize: bluemonday.UGCPolicy(),
		cache:    map[string]Page{},
	}
}

// Get returns slug in lang, falling back to English.
func (s *Store) Get(slug, lang string) (Page, error) {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" || strings.Contains(slug, "..") {
		return Page{}, ErrNotFound
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = defaultLang
	}

	key := lang + "|" + slug
	s.mu.RLock()
	page, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return page, nil
	}

	candidates := []string{lang}
	if lang != defaultLang {
		candidates = append(candidates, defaultLang)
	}
	for _, candidate := range candidates {
		page, err := s.load(slug, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		s.mu.Lock()
		s.cache[key] = page
		s.mu.Unlock()
		return page, nil
	}
	return Page{}, fmt.Errorf("%w: %s/%s", ErrNotFound, lang, slug)
}

func (s *Store) load(slug, lang string) (Page, error) {
	file := path.Join(lang, slug+".md")
	raw, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return Page{}, err
	}

	fm, body := splitFrontMatter(string(raw))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", file, err)
	}
	clean := s.sanitize.SanitizeBytes(buf.Bytes())

	toc, err := headings(clean)
	if err != nil {
		return Page{}, fmt.Errorf("content: toc %s: %w", file, err)
	}

	page := Page{
		Slug:      slug,
		Lang:      lang,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		UpdatedAt: parseDate(front.UpdatedAt),
		SEO: SEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
		},
		HTML: template.HTML(clean),
		TOC:  toc,
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	if page.SEO.Title == "" {
		page.SEO.Title = page.Title
	}
	if page.SEO.Description == "" {
		page.SEO.Description = page.Summary
	}
	return page, nil
}

// headings collects h2/h3 elements that carry an id.
func headings(fragment []byte) ([]Heading, error) {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	var out []Heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.H2 || n.DataAtom == atom.H3) {
			if id := attr(n, "id"); id != "" {
				level := 2
				if n.DataAtom == atom.H3 {
					level = 3
				}
				out = append(out, Heading{ID: id, Text: strings.TrimSpace(textOf(n)), Level: level})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
