package seo

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	Twitter     Twitter
	// JSONLD holds pre-marshalled structured data blocks.
	JSONLD []string
}

// ForPage fills the common fields for one page of the site.
func ForPage(siteName, title, description, canonical string) Meta {
	full := title
	if title != siteName {
		full = title + " | " + siteName
	}
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG:          OpenGraph{Title: full, Description: description, Type: "website"},
		Twitter:     Twitter{Card: "summary", Site: "@tourdoxa"},
	}
}
