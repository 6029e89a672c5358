package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Vijaysathappan4/Tourdoxa/internal/i18n"
	appsession "github.com/Vijaysathappan4/Tourdoxa/internal/session"
)

type sessionTestClock struct {
	now time.Time
}

func (c *sessionTestClock) Now() time.Time {
	return c.now
}

func newSessionStoreForTest(t *testing.T) *appsession.Manager {
	t.Helper()
	clock := &sessionTestClock{now: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	store, err := appsession.NewManager(appsession.Config{
		CookieName:  "test_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		BlockKey:    []byte("abcdefghijklmnopqrstuvwxyzABCDEF"),
		IdleTimeout: 5 * time.Minute,
		Lifetime:    time.Hour,
		Now:         clock.Now,
	})
	if err != nil {
		t.Fatalf("session manager init: %v", err)
	}
	return store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test_session" {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestSessionMiddlewareSavesBeforeBody(t *testing.T) {
	store := newSessionStoreForTest(t)

	var ids []string
	handler := Session(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatalf("session missing in context")
		}
		ids = append(ids, sess.ID())
		_, _ = w.Write([]byte("ok"))
	}))

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, rec1)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)

	if len(ids) != 2 || ids[0] == "" || ids[0] != ids[1] {
		t.Fatalf("expected stable session id, got %v", ids)
	}
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	store := newSessionStoreForTest(t)

	var issued string
	handler := Session(store)(CSRF(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued = CSRFTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if issued == "" {
		t.Fatalf("expected csrf token on safe request")
	}
	cookie := sessionCookie(t, rec)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/actions/search", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/actions/search", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", issued)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("form token", func(t *testing.T) {
		form := url.Values{"csrf_token": {issued}, "q": {"Srirangam"}}
		req := httptest.NewRequest(http.MethodPost, "/actions/search", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	})

	t.Run("token from another session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/actions/search", nil)
		req.Header.Set("X-CSRF-Token", issued)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without the issuing session, got %d", rr.Code)
		}
	})
}

func TestLocalePrefersQueryThenSessionThenHeader(t *testing.T) {
	store := newSessionStoreForTest(t)
	bundle, err := i18n.Default("en")
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}

	var got string
	handler := Session(store)(Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ta-IN,ta;q=0.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got != "ta" {
		t.Fatalf("expected ta from header, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "ta")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got != "en" {
		t.Fatalf("expected query to win, got %s", got)
	}
	if rec.Header().Get("Content-Language") != "en" {
		t.Fatalf("expected Content-Language en")
	}

	req = httptest.NewRequest(http.MethodGet, "/places", nil)
	req.Header.Set("Accept-Language", "ta")
	req.AddCookie(sessionCookie(t, rec))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got != "en" {
		t.Fatalf("expected remembered session locale, got %s", got)
	}
}

func TestRequireHTMX(t *testing.T) {
	handler := HTMX()(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/views/x/map", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for direct navigation, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/views/x/map", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for htmx, got %d", rec.Code)
	}
	if rec.Header().Get("Vary") != "HX-Request" {
		t.Fatalf("expected Vary header")
	}
}
