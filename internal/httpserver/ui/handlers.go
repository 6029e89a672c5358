package ui

import (
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "github.com/Vijaysathappan4/Tourdoxa/internal/httpserver/middleware"
	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/content"
	"github.com/Vijaysathappan4/Tourdoxa/internal/i18n"
	"github.com/Vijaysathappan4/Tourdoxa/internal/notify"
	"github.com/Vijaysathappan4/Tourdoxa/internal/observability"
	"github.com/Vijaysathappan4/Tourdoxa/internal/viewstate"
)

const defaultMapWait = 2 * time.Second

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Catalog  *catalog.Catalog
	Registry *viewstate.Registry
	Content  *content.Store
	I18n     *i18n.Bundle
	// SiteURL is the public origin used for canonical links, e.g. "https://tourdoxa.in".
	SiteURL string
	// MapWait bounds how long the map fragment waits for a pending location.
	MapWait time.Duration
}

// Handlers exposes HTTP handlers for pages, fragments and placeholder actions.
type Handlers struct {
	catalog  *catalog.Catalog
	registry *viewstate.Registry
	content  *content.Store
	i18n     *i18n.Bundle
	siteURL  string
	mapWait  time.Duration
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = viewstate.NewRegistry(viewstate.Config{Catalog: cat})
	}
	store := deps.Content
	if store == nil {
		store = content.NewStore(nil)
	}
	bundle := deps.I18n
	if bundle == nil {
		b, err := i18n.Default("en")
		if err != nil {
			panic(err)
		}
		bundle = b
	}
	wait := deps.MapWait
	if wait <= 0 {
		wait = defaultMapWait
	}
	return &Handlers{
		catalog:  cat,
		registry: registry,
		content:  store,
		i18n:     bundle,
		siteURL:  strings.TrimRight(deps.SiteURL, "/"),
		mapWait:  wait,
	}
}

// request gathers the per-request values every handler needs.
type request struct {
	lang   string
	loc    i18n.Localizer
	owner  string
	csrf   string
	htmx   bool
	toasts *notify.Buffer
	logger *zap.Logger
}

func (h *Handlers) request(r *http.Request) *request {
	ctx := r.Context()
	lang := custommw.LocaleFromContext(ctx)
	if lang == "" {
		lang = h.i18n.Fallback()
	}
	owner := ""
	if sess, ok := custommw.SessionFromContext(ctx); ok {
		owner = sess.ID()
	}
	return &request{
		lang:   lang,
		loc:    h.i18n.For(lang),
		owner:  owner,
		csrf:   custommw.CSRFTokenFromContext(ctx),
		htmx:   custommw.IsHTMXRequest(ctx),
		toasts: &notify.Buffer{},
		logger: observability.FromContext(ctx),
	}
}

// render serves component with status, attaching buffered toasts as HX-Trigger for
// htmx requests.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, rq *request, status int, component templ.Component) {
	if rq.htmx {
		if err := rq.toasts.WriteTrigger(w.Header()); err != nil {
			rq.logger.Warn("toast trigger encode failed", zap.Error(err))
		}
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}
