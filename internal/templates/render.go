// Package templates renders the site's pages and htmx fragments. Markup lives in
// embedded html/template files; each entry point is exposed as a templ.Component so
// handlers serve everything through templ.Handler.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
)

//go:embed layout.tmpl partials.tmpl pages/*.tmpl
var files embed.FS

var pageNames = []string{"home", "places", "booking", "helpline", "about", "notfound"}

type set struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

var compiled = mustCompile()

func funcs() template.FuncMap {
	return template.FuncMap{
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"lower":  strings.ToLower,
		"upper":  strings.ToUpper,
		"list":   func(items ...string) []string { return items },
		"callArgs": func(frame Frame, number string) CallArgs {
			return CallArgs{Frame: frame, Number: number}
		},
		"contactArgs": func(frame Frame, channel catalog.ContactChannel, primary bool) ContactArgs {
			return ContactArgs{Frame: frame, Channel: channel, Primary: primary}
		},
	}
}

func mustCompile() *set {
	base := template.Must(template.New("layout.tmpl").Funcs(funcs()).ParseFS(files, "layout.tmpl", "partials.tmpl"))

	s := &set{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		clone := template.Must(base.Clone())
		s.pages[name] = template.Must(clone.ParseFS(files, "pages/"+name+".tmpl"))
	}
	s.fragments = template.Must(base.Clone())
	return s
}

func execute(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := t.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("templates: render %s: %w", name, err)
		}
		return nil
	})
}

// Page renders a full document for data.View, or the not-found page.
func Page(data PageData) templ.Component {
	name := data.View
	if data.NotFound {
		name = "notfound"
	}
	t, ok := compiled.pages[name]
	if !ok {
		t = compiled.pages["notfound"]
	}
	return execute(t, "layout", data)
}

// GroupDropdown renders the travel-group dropdown fragment.
func GroupDropdown(data GroupDropdownData) templ.Component {
	return execute(compiled.fragments, "group_dropdown", data)
}

// MapPanel renders the location panel fragment.
func MapPanel(data MapPanelData) templ.Component {
	return execute(compiled.fragments, "map_panel", data)
}

// CategorySection renders the Places category grid and detail fragment.
func CategorySection(data PlacesData) templ.Component {
	return execute(compiled.fragments, "category_section", data)
}

// ServiceSection renders the Booking service grid and detail fragment.
func ServiceSection(data BookingData) templ.Component {
	return execute(compiled.fragments, "service_section", data)
}
