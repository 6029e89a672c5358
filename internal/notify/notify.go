// Package notify is the toast boundary. Handlers receive a Sink for the current request
// and never reach for a global toast service.
package notify

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
)

// TriggerEvent is the HX-Trigger event name the browser listens on.
const TriggerEvent = "toast"

// Kind classifies a notification for styling.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
)

// Notification is one toast.
type Notification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Kind        Kind   `json:"kind"`
}

// Sink accepts notifications for display. Notify is fire-and-forget; display order is
// call order.
type Sink interface {
	Notify(Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

// Notify calls f(n).
func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

var (
	strict     = bluemonday.StrictPolicy()
	entropyMu  sync.Mutex
	entropySrc = ulid.Monotonic(rand.Reader, 0)
)

// New builds a notification with a fresh id. Title and description are reduced to plain
// text so visitor input cannot inject markup into the toast region.
func New(kind Kind, title, description string) Notification {
	return Notification{
		ID:          newID(time.Now()),
		Title:       plain(title),
		Description: plain(description),
		Kind:        kind,
	}
}

// Info is shorthand for New(KindInfo, ...).
func Info(title, description string) Notification { return New(KindInfo, title, description) }

// plain drops tags and returns unescaped text; templates escape it again on output.
func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func newID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropySrc).String()
}

// Buffer is a request-scoped Sink that keeps notifications in call order.
type Buffer struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (b *Buffer) Notify(n Notification) {
	b.mu.Lock()
	b.items = append(b.items, n)
	b.mu.Unlock()
}

// Items returns a copy of the buffered notifications.
func (b *Buffer) Items() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notification(nil), b.items...)
}

// Len returns the number of buffered notifications.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// WriteTrigger sets the HX-Trigger header to {"toast": [...]} when anything is buffered.
// Must run before the response header is written.
func (b *Buffer) WriteTrigger(h http.Header) error {
	items := b.Items()
	if len(items) == 0 {
		return nil
	}
	raw, err := json.Marshal(map[string]any{TriggerEvent: items})
	if err != nil {
		return fmt.Errorf("notify: encode trigger: %w", err)
	}
	h.Set("HX-Trigger", string(raw))
	return nil
}

// ParseTrigger decodes the toasts carried by an HX-Trigger header value.
func ParseTrigger(header string) ([]Notification, error) {
	if header == "" {
		return nil, nil
	}
	var payload map[string][]Notification
	if err := json.Unmarshal([]byte(header), &payload); err != nil {
		return nil, fmt.Errorf("notify: decode trigger: %w", err)
	}
	return payload[TriggerEvent], nil
}
