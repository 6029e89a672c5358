// Package views defines the closed set of page views and the path routing contract.
package views

import "strings"

// ViewID identifies one of the five page views.
type ViewID string

const (
	Home     ViewID = "home"
	Places   ViewID = "places"
	Booking  ViewID = "booking"
	Helpline ViewID = "helpline"
	About    ViewID = "about"
)

var paths = map[ViewID]string{
	Home:     "/",
	Places:   "/places",
	Booking:  "/booking",
	Helpline: "/helpline",
	About:    "/about",
}

// All returns the views in navigation order.
func All() []ViewID {
	return []ViewID{Home, Places, Booking, Helpline, About}
}

// PathToView resolves a URL path. A single trailing slash is ignored; anything outside
// the five known paths is unmatched.
func PathToView(path string) (ViewID, bool) {
	if path == "" {
		return "", false
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for id, p := range paths {
		if p == path {
			return id, true
		}
	}
	return "", false
}

// IsPrimaryView reports whether v is rendered with the primary (transparent) navigation.
func IsPrimaryView(v ViewID) bool { return v == Home }

// Valid reports whether v is one of the known views.
func (v ViewID) Valid() bool {
	_, ok := paths[v]
	return ok
}

// Path returns the canonical URL path of v.
func (v ViewID) Path() string { return paths[v] }

// LabelKey returns the i18n key for the navigation label.
func (v ViewID) LabelKey() string { return "nav." + string(v) }

func (v ViewID) String() string { return string(v) }
