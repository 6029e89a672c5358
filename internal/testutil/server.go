package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/httpserver"
	"github.com/Vijaysathappan4/Tourdoxa/internal/session"
	"github.com/Vijaysathappan4/Tourdoxa/internal/viewstate"
)

// SessionCookieName is the cookie used by test servers.
const SessionCookieName = "tourdoxa_test_session"

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithRegistry overrides the view activation registry.
func WithRegistry(registry *viewstate.Registry) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Registry = registry
	}
}

// WithEnvironment sets the environment label shown in the footer.
func WithEnvironment(env string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Environment = env
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// WithMapWait bounds how long the map fragment waits for a location.
func WithMapWait(d time.Duration) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.MapWait = d
	}
}

// WithSiteURL sets the canonical origin.
func WithSiteURL(url string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.SiteURL = url
	}
}

// NewServer constructs an httptest server running the site HTTP stack with sensible defaults.
// Activations left behind by a test are released on cleanup.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		CookieName: SessionCookieName,
		HashKey:    []byte("0123456789abcdef0123456789abcdef"),
		BlockKey:   []byte("fedcba9876543210"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cat := catalog.Default()
	cfg := httpserver.Config{
		Address:        ":0",
		Environment:    "test",
		Sessions:       sessions,
		Catalog:        cat,
		CSRFHeaderName: "X-CSRF-Token",
		MapWait:        200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = viewstate.NewRegistry(viewstate.Config{Catalog: cat, Logger: cfg.Logger})
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		cfg.Registry.ReleaseAll()
	})
	return ts
}
