package ui

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "github.com/Vijaysathappan4/Tourdoxa/internal/httpserver/middleware"
	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
	"github.com/Vijaysathappan4/Tourdoxa/internal/nav"
	"github.com/Vijaysathappan4/Tourdoxa/internal/selection"
	"github.com/Vijaysathappan4/Tourdoxa/internal/seo"
	"github.com/Vijaysathappan4/Tourdoxa/internal/templates"
	"github.com/Vijaysathappan4/Tourdoxa/internal/viewstate"
	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
)

const missionSlug = "mission"

// Page renders the view routed at the request path. Each render activates a fresh
// view; paths outside the known views get the not-found page.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	view, ok := views.PathToView(r.URL.Path)
	if !ok {
		h.NotFound(w, r)
		return
	}
	rq := h.request(r)
	act, err := h.registry.Activate(r.Context(), view, rq.owner)
	if err != nil {
		rq.logger.Error("activate view", zap.String("view", view.String()), zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "view unavailable")
		return
	}
	h.renderPage(w, r, rq, http.StatusOK, h.pageData(r, rq, act))
}

// NotFound renders the not-found page with a 404 status.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	data := h.baseData(r, rq, "")
	data.NotFound = true
	data.Meta = seo.ForPage(h.catalog.Site.Name, rq.loc.T("page.notfound.title"), rq.loc.T("page.notfound.body"), "")
	h.renderPage(w, r, rq, http.StatusNotFound, data)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, rq *request, status int, data templates.PageData) {
	data.Toasts = append(data.Toasts, rq.toasts.Items()...)
	templ.Handler(templates.Page(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handlers) baseData(r *http.Request, rq *request, view views.ViewID) templates.PageData {
	return templates.PageData{
		I18n:        rq.loc,
		SiteName:    h.catalog.Site.Name,
		View:        view.String(),
		CSRFToken:   rq.csrf,
		Environment: custommw.EnvironmentFromContext(r.Context()),
		Nav:         nav.Build(view),
		Crumbs:      nav.Breadcrumbs(view),
		Locales:     h.localeLinks(r, rq.lang),
	}
}

func (h *Handlers) localeLinks(r *http.Request, current string) []templates.LocaleLink {
	langs := h.i18n.Supported()
	links := make([]templates.LocaleLink, 0, len(langs))
	for _, lang := range langs {
		q := url.Values{}
		q.Set("lang", lang)
		links = append(links, templates.LocaleLink{
			Lang:   lang,
			Label:  h.i18n.T(lang, "locale."+lang),
			Href:   r.URL.Path + "?" + q.Encode(),
			Active: lang == current,
		})
	}
	return links
}

func (h *Handlers) frame(rq *request, act *viewstate.Activation) templates.Frame {
	return templates.Frame{I18n: rq.loc, ActivationID: act.ID(), CSRFToken: rq.csrf}
}

// pageData builds the full payload for act. Callers that may race with other requests
// on the same activation run it inside act.Do.
func (h *Handlers) pageData(r *http.Request, rq *request, act *viewstate.Activation) templates.PageData {
	view := act.View()
	data := h.baseData(r, rq, view)
	data.ActivationID = act.ID()

	key := "page." + view.String()
	data.Meta = seo.ForPage(h.catalog.Site.Name, rq.loc.T(key+".title"), rq.loc.T(key+".description"), h.absolute(view.Path()))
	data.Meta.JSONLD = h.structuredData(rq, view)

	switch view {
	case views.Home:
		home := h.homeData(rq, act)
		data.Home = &home
	case views.Places:
		places := h.placesData(rq, act)
		data.Places = &places
	case views.Booking:
		booking := h.bookingData(rq, act)
		data.Booking = &booking
	case views.Helpline:
		data.Helpline = &templates.HelplineData{
			Frame:      h.frame(rq, act),
			Emergency:  h.catalog.EmergencyNumbers,
			Local:      h.catalog.LocalContacts,
			SafetyTips: h.catalog.SafetyTips,
		}
	case views.About:
		about := &templates.AboutData{
			Frame:          h.frame(rq, act),
			Stats:          h.catalog.About.Stats,
			Features:       h.catalog.About.Features,
			Contacts:       h.catalog.About.Contacts,
			GeneralContact: h.catalog.About.GeneralContact,
		}
		page, err := h.content.Get(missionSlug, rq.lang)
		if err != nil {
			rq.logger.Warn("mission content unavailable", zap.String("lang", rq.lang), zap.Error(err))
		} else {
			about.Mission = &page
		}
		data.About = about
	}
	return data
}

func (h *Handlers) homeData(rq *request, act *viewstate.Activation) templates.HomeData {
	snap, ok := act.Weather()
	home := templates.HomeData{
		Frame: h.frame(rq, act),
		Group: h.groupData(rq, act),
		Weather: templates.WeatherData{
			I18n:      rq.loc,
			Available: ok,
			Snapshot:  snap,
		},
		Map:          h.mapData(rq, act),
		QuickActions: h.catalog.QuickActions,
	}
	if ok {
		home.Weather.Icon = snap.Condition.Icon()
		home.Weather.AdviceKey = snap.Condition.AdviceKey()
	}
	return home
}

func (h *Handlers) groupData(rq *request, act *viewstate.Activation) templates.GroupDropdownData {
	dd := act.Group()
	store := dd.Store()
	current, _ := store.Current()
	options := store.Options()
	data := templates.GroupDropdownData{
		Frame:   h.frame(rq, act),
		Open:    dd.State() == selection.Open,
		Current: current,
		Options: make([]templates.OptionView, 0, len(options)),
	}
	for _, opt := range options {
		data.Options = append(data.Options, templates.OptionView{Value: opt, Label: opt, Selected: opt == current})
	}
	return data
}

func (h *Handlers) mapData(rq *request, act *viewstate.Activation) templates.MapPanelData {
	data := templates.MapPanelData{
		Frame:   h.frame(rq, act),
		Pending: true,
		PollURL: "/views/" + act.ID() + "/map",
	}
	if fix, ok := act.Location().Fix(); ok {
		data.Pending = false
		data.Coordinate = fix.Coordinate.Format()
		data.Fallback = fix.IsFallback()
	}
	return data
}

func (h *Handlers) placesData(rq *request, act *viewstate.Activation) templates.PlacesData {
	current, _ := act.Categories().Current()
	data := templates.PlacesData{
		Frame:      h.frame(rq, act),
		Categories: make([]templates.CategoryCard, 0, len(h.catalog.Categories)),
	}
	for _, c := range h.catalog.Categories {
		card := templates.CategoryCard{Category: c, Selected: c.ID == current}
		if card.Selected {
			selected := c
			data.Selected = &selected
		}
		data.Categories = append(data.Categories, card)
	}
	return data
}

func (h *Handlers) bookingData(rq *request, act *viewstate.Activation) templates.BookingData {
	current, _ := act.Services().Current()
	data := templates.BookingData{
		Frame:      h.frame(rq, act),
		Services:   make([]templates.ServiceCard, 0, len(h.catalog.Services)),
		Perks:      h.catalog.ServicePerks,
		PartySizes: h.catalog.PartySizes,
		Highlights: h.catalog.BookingHighlights,
	}
	for _, s := range h.catalog.Services {
		card := templates.ServiceCard{Service: s, Selected: s.ID == current}
		if card.Selected {
			selected := s
			data.Selected = &selected
		}
		data.Services = append(data.Services, card)
	}
	return data
}

func (h *Handlers) structuredData(rq *request, view views.ViewID) []string {
	site := h.catalog.Site.Name
	switch view {
	case views.Home:
		return []string{
			seo.JSON(seo.WebSite(site, h.absolute("/"), "")),
			seo.JSON(seo.TouristDestination(h.catalog.Site.City, geo.Fallback().Latitude, geo.Fallback().Longitude)),
		}
	case views.About:
		var email, phone string
		for _, ch := range h.catalog.About.Contacts {
			switch ch.Type {
			case "Email":
				email = ch.Value
			case "Phone":
				phone = ch.Value
			}
		}
		return []string{
			seo.JSON(seo.Organization(site, h.absolute("/"), email, phone)),
			h.breadcrumbs(rq, view),
		}
	default:
		return []string{h.breadcrumbs(rq, view)}
	}
}

func (h *Handlers) breadcrumbs(rq *request, view views.ViewID) string {
	crumbs := nav.Breadcrumbs(view)
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: rq.loc.T(c.LabelKey), Item: h.absolute(c.Href)})
	}
	return seo.JSON(seo.BreadcrumbList(items))
}

// absolute joins path onto the configured site URL, or returns path as-is.
func (h *Handlers) absolute(path string) string {
	if h.siteURL == "" {
		return path
	}
	return h.siteURL + path
}

// activation resolves the {id} route parameter for the requesting session and checks
// that it belongs to one of want.
func (h *Handlers) activation(w http.ResponseWriter, r *http.Request, rq *request, id string, want ...views.ViewID) (*viewstate.Activation, bool) {
	act, err := h.registry.Get(id, rq.owner)
	if err != nil {
		h.activationError(w, r, rq, err)
		return nil, false
	}
	if len(want) > 0 {
		for _, v := range want {
			if act.View() == v {
				return act, true
			}
		}
		h.writeError(w, r, http.StatusNotFound, "activation does not serve this section")
		return nil, false
	}
	return act, true
}

func (h *Handlers) activationError(w http.ResponseWriter, r *http.Request, rq *request, err error) {
	switch {
	case errors.Is(err, viewstate.ErrForbidden):
		rq.logger.Warn("activation owned by another session", zap.Error(err))
		h.writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, viewstate.ErrNotFound):
		if rq.htmx {
			// The page holds a stale activation; reload it to start a new one.
			w.Header().Set("HX-Refresh", "true")
		}
		h.writeError(w, r, http.StatusNotFound, "view expired")
	default:
		rq.logger.Error("activation lookup failed", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
