package templates

import (
	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/content"
	"github.com/Vijaysathappan4/Tourdoxa/internal/i18n"
	"github.com/Vijaysathappan4/Tourdoxa/internal/nav"
	"github.com/Vijaysathappan4/Tourdoxa/internal/notify"
	"github.com/Vijaysathappan4/Tourdoxa/internal/seo"
	"github.com/Vijaysathappan4/Tourdoxa/internal/weather"
)

// PageData is the full-page SSR payload. Exactly one of the view sections is set.
type PageData struct {
	I18n         i18n.Localizer
	SiteName     string
	View         string
	ActivationID string
	CSRFToken    string
	Environment  string
	Meta         seo.Meta
	Nav          nav.Bar
	Crumbs       []nav.Crumb
	Locales      []LocaleLink
	Toasts       []notify.Notification

	Home     *HomeData
	Places   *PlacesData
	Booking  *BookingData
	Helpline *HelplineData
	About    *AboutData
	NotFound bool
}

// LocaleLink switches the page language.
type LocaleLink struct {
	Lang   string
	Label  string
	Href   string
	Active bool
}

// Frame carries what every fragment needs to post back to its activation.
type Frame struct {
	I18n         i18n.Localizer
	ActivationID string
	CSRFToken    string
}

type HomeData struct {
	Frame
	Query        string
	Group        GroupDropdownData
	Weather      WeatherData
	Map          MapPanelData
	QuickActions []catalog.QuickAction
}

// GroupDropdownData renders the travel-group dropdown.
type GroupDropdownData struct {
	Frame
	Open    bool
	Current string
	Options []OptionView
}

// OptionView is one selectable option.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// WeatherData renders the weather widget. Available is false when no snapshot exists.
type WeatherData struct {
	I18n      i18n.Localizer
	Available bool
	Snapshot  weather.Snapshot
	Icon      string
	AdviceKey string
}

// MapPanelData renders the location panel. Pending panels poll PollURL.
type MapPanelData struct {
	Frame
	Pending    bool
	Coordinate string
	Fallback   bool
	PollURL    string
}

type PlacesData struct {
	Frame
	Categories []CategoryCard
	Selected   *catalog.Category
}

// CategoryCard is a category with its selection flag.
type CategoryCard struct {
	catalog.Category
	Selected bool
}

type BookingData struct {
	Frame
	Services   []ServiceCard
	Selected   *catalog.Service
	Perks      []catalog.Perk
	PartySizes []string
	Highlights []catalog.Highlight
}

// ServiceCard is a service with its selection flag.
type ServiceCard struct {
	catalog.Service
	Selected bool
}

type HelplineData struct {
	Frame
	Emergency  []catalog.EmergencyNumber
	Local      []catalog.LocalContact
	SafetyTips []catalog.Highlight
}

type AboutData struct {
	Frame
	Mission        *content.Page
	Stats          []catalog.Stat
	Features       []catalog.Highlight
	Contacts       []catalog.ContactChannel
	GeneralContact catalog.ContactChannel
}

// CallArgs feeds the call button partial.
type CallArgs struct {
	Frame  Frame
	Number string
}

// ContactArgs feeds the contact button partial.
type ContactArgs struct {
	Frame   Frame
	Channel catalog.ContactChannel
	Primary bool
}
