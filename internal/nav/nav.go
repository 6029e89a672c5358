package nav

import (
	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
)

// Item represents a top-level navigation item.
type Item struct {
	View     views.ViewID
	Path     string // e.g. "/places"
	LabelKey string // i18n key, e.g. "nav.places"
	Icon     string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Icon     string
	Active   bool
}

// Bar is the rendered navigation bar. Primary selects the transparent hero variant.
type Bar struct {
	Items   []RenderedItem
	Primary bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href     string
	LabelKey string
	Active   bool
}

var icons = map[views.ViewID]string{
	views.Home:     "home",
	views.Places:   "map-pin",
	views.Booking:  "calendar",
	views.Helpline: "phone",
	views.About:    "info",
}

// Main is the primary navigation definition, in views.All order.
var Main = func() []Item {
	all := views.All()
	items := make([]Item, 0, len(all))
	for _, v := range all {
		items = append(items, Item{View: v, Path: v.Path(), LabelKey: v.LabelKey(), Icon: icons[v]})
	}
	return items
}()

// Build renders navigation items with active state for the current view.
func Build(current views.ViewID) Bar {
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Icon:     it.Icon,
			Active:   it.View == current,
		})
	}
	return Bar{Items: items, Primary: views.IsPrimaryView(current)}
}

// Breadcrumbs always starts with Home; other views add themselves as the active crumb.
func Breadcrumbs(current views.ViewID) []Crumb {
	crumbs := []Crumb{{Href: "/", LabelKey: views.Home.LabelKey(), Active: current == views.Home}}
	if current == views.Home || !current.Valid() {
		return crumbs
	}
	return append(crumbs, Crumb{Href: current.Path(), LabelKey: current.LabelKey(), Active: true})
}
