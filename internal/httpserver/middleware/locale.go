package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Vijaysathappan4/Tourdoxa/internal/i18n"
)

type localeContextKey struct{}

// Locale resolves the visitor language. An explicit ?lang= that the bundle supports is
// remembered in the session; otherwise the session choice wins over Accept-Language.
// It must run after Session.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())

			lang := ""
			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang"))); q != "" && bundle.IsSupported(q) {
				lang = q
				if sess != nil {
					sess.SetLocale(q)
				}
			}
			if lang == "" && sess != nil && bundle.IsSupported(sess.Locale()) {
				lang = sess.Locale()
			}
			if lang == "" {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			w.Header().Set("Content-Language", lang)
			ctx := context.WithValue(r.Context(), localeContextKey{}, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the resolved language, or "" outside Locale.
func LocaleFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(localeContextKey{}).(string); ok {
		return lang
	}
	return ""
}
