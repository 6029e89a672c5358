// Package httpserver assembles the router, middleware stack and embedded assets.
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "github.com/Vijaysathappan4/Tourdoxa/internal/httpserver/middleware"
	"github.com/Vijaysathappan4/Tourdoxa/internal/httpserver/ui"
	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/content"
	"github.com/Vijaysathappan4/Tourdoxa/internal/i18n"
	"github.com/Vijaysathappan4/Tourdoxa/internal/observability"
	"github.com/Vijaysathappan4/Tourdoxa/internal/viewstate"
	"github.com/Vijaysathappan4/Tourdoxa/public"
)

// Config holds runtime options for the site's HTTP server.
type Config struct {
	Address     string
	Environment string
	SiteURL     string

	// Sessions is required; the remaining dependencies fall back to bundled defaults.
	Sessions custommw.SessionStore
	Registry *viewstate.Registry
	Catalog  *catalog.Catalog
	Content  *content.Store
	I18n     *i18n.Bundle
	Logger   *zap.Logger

	CSRFHeaderName string
	MapWait        time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(cfg),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}
}

// NewRouter builds the routing tree. It is exposed separately so tests can drive it
// through httptest without a listener.
func NewRouter(cfg Config) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.I18n == nil {
		bundle, err := i18n.Default("en")
		if err != nil {
			logger.Fatal("load translations", zap.Error(err))
		}
		cfg.I18n = bundle
	}
	if cfg.Registry == nil {
		cfg.Registry = viewstate.NewRegistry(viewstate.Config{Catalog: cfg.Catalog, Logger: logger})
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.TraceMiddleware())
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(chimw.Compress(5))

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static", zap.Error(err))
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	router.Get("/healthz", healthHandler(cfg.Registry))

	handlers := ui.NewHandlers(ui.Dependencies{
		Catalog:  cfg.Catalog,
		Registry: cfg.Registry,
		Content:  cfg.Content,
		I18n:     cfg.I18n,
		SiteURL:  cfg.SiteURL,
		MapWait:  cfg.MapWait,
	})

	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.RequestInfoMiddleware(cfg.Environment))
		r.Use(custommw.Session(cfg.Sessions))
		r.Use(custommw.Locale(cfg.I18n))
		r.Use(custommw.CSRF(custommw.CSRFConfig{HeaderName: cfg.CSRFHeaderName}))

		mountRoutes(r, handlers)
		// Trailing slashes and unknown paths resolve through the view router.
		r.NotFound(handlers.Page)
	})

	return router
}

func mountRoutes(r chi.Router, h *ui.Handlers) {
	r.Get("/", h.Page)
	r.Get("/places", h.Page)
	r.Get("/booking", h.Page)
	r.Get("/helpline", h.Page)
	r.Get("/about", h.Page)

	r.Route("/views/{id}", func(r chi.Router) {
		RegisterFragment(r, "/map", h.MapPanel)
		r.Post("/location", h.ReportLocation)
		r.Post("/release", h.Release)
		r.Post("/group/toggle", h.GroupToggle)
		r.Post("/group/select", h.GroupSelect)
		r.Post("/group/dismiss", h.GroupDismiss)
		r.Post("/category", h.SelectCategory)
		r.Post("/service", h.SelectService)
	})

	r.Route("/actions", func(r chi.Router) {
		r.Post("/search", h.Search)
		r.Post("/directions", h.Directions)
		r.Post("/quick/{key}", h.QuickAction)
		r.Post("/book", h.Book)
		r.Post("/call", h.Call)
		r.Post("/contact", h.Contact)
	})
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

type healthResponse struct {
	Status      string `json:"status"`
	Activations int    `json:"activations"`
}

func healthHandler(registry *viewstate.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if registry != nil {
			resp.Activations = registry.Len()
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
