package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// Browser is a cookie-keeping client that remembers the CSRF token of the last page
// it loaded, the way the real page does.
type Browser struct {
	t       testing.TB
	base    string
	client  *http.Client
	CSRF    string
	Headers http.Header
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewBrowser returns a Browser bound to ts. Redirects are not followed.
func NewBrowser(t testing.TB, ts *httptest.Server) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Browser{
		t:    t,
		base: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Headers: http.Header{},
	}
}

// Get loads path. Full-page HTML responses refresh the remembered CSRF token.
func (b *Browser) Get(path string) *Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	return b.do(req)
}

// HTMXGet issues a GET as htmx would.
func (b *Browser) HTMXGet(path string) *Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", b.CSRF)
	return b.do(req)
}

// Post submits form as a plain browser form post, adding the CSRF field.
func (b *Browser) Post(path string, form url.Values) *Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", b.CSRF)
	}
	return b.PostRaw(path, form, false)
}

// HTMXPost submits form as htmx would, carrying the CSRF header.
func (b *Browser) HTMXPost(path string, form url.Values) *Response {
	b.t.Helper()
	b.Headers.Set("X-CSRF-Token", b.CSRF)
	defer b.Headers.Del("X-CSRF-Token")
	return b.PostRaw(path, form, true)
}

// PostRaw submits form without adding any CSRF token.
func (b *Browser) PostRaw(path string, form url.Values, htmx bool) *Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return b.do(req)
}

func (b *Browser) do(req *http.Request) *Response {
	b.t.Helper()
	for key, values := range b.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("read body: %v", err)
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
	if req.Header.Get("HX-Request") == "" && strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		if token, ok := out.Doc(b.t).Find(`meta[name="csrf-token"]`).Attr("content"); ok && token != "" {
			b.CSRF = token
		}
	}
	return out
}

// Doc parses the body as HTML.
func (r *Response) Doc(t testing.TB) *goquery.Document {
	t.Helper()
	return ParseHTML(t, r.Body)
}

// ActivationID returns the data-activation of a full page response.
func (r *Response) ActivationID(t testing.TB) string {
	t.Helper()
	id, _ := r.Doc(t).Find("body").Attr("data-activation")
	return id
}
