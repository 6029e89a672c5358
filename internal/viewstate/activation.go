package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/Vijaysathappan4/Tourdoxa/internal/location"
	"github.com/Vijaysathappan4/Tourdoxa/internal/selection"
	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
	"github.com/Vijaysathappan4/Tourdoxa/internal/weather"
)

// Slot names used by activations.
const (
	SlotCategory  = "category"
	SlotService   = "service"
	SlotGroupSize = "group_size"
)

// EventKind distinguishes recorded activation events.
type EventKind string

const (
	EventSelection EventKind = "selection"
	EventDropdown  EventKind = "dropdown"
)

// Event is a state change observed on one of the activation's stores.
type Event struct {
	Kind   EventKind
	Slot   string
	Value  string
	Was    string
	HadWas bool
	State  selection.DropdownState
}

// Activation is one live instance of a view. It owns the page-scoped stores, the
// dropdown and, for Home, the location request and weather snapshot. Nothing inside
// an activation is shared with another one.
type Activation struct {
	id        string
	view      views.ViewID
	owner     string
	createdAt time.Time
	seq       uint64

	ctx    context.Context
	cancel context.CancelFunc

	// mu serialises handler work against this activation.
	mu sync.Mutex

	seenMu   sync.Mutex
	lastSeen time.Time

	categories *selection.Store
	services   *selection.Store
	group      *selection.Dropdown
	locator    *location.ClientLocator
	request    *location.Request
	snapshot   weather.Snapshot
	hasWeather bool

	eventsMu sync.Mutex
	events   []Event
	unsubs   []func()
}

// ID returns the activation identifier embedded in the page.
func (a *Activation) ID() string { return a.id }

// View returns the view this activation renders.
func (a *Activation) View() views.ViewID { return a.view }

// Owner returns the session id the activation is bound to.
func (a *Activation) Owner() string { return a.owner }

// CreatedAt returns the activation time.
func (a *Activation) CreatedAt() time.Time { return a.createdAt }

// Context is cancelled when the activation is released.
func (a *Activation) Context() context.Context { return a.ctx }

// Released reports whether the activation has been released.
func (a *Activation) Released() bool { return a.ctx.Err() != nil }

// Do runs fn while holding the activation lock so events for one activation are
// handled one at a time.
func (a *Activation) Do(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn()
}

// Categories returns the Places category store, or nil on other views.
func (a *Activation) Categories() *selection.Store { return a.categories }

// Services returns the Booking service store, or nil on other views.
func (a *Activation) Services() *selection.Store { return a.services }

// Group returns the Home travel-group dropdown, or nil on other views.
func (a *Activation) Group() *selection.Dropdown { return a.group }

// Locator returns the browser-backed locator waiting for the page's report.
func (a *Activation) Locator() *location.ClientLocator { return a.locator }

// Location returns the in-flight or resolved location request for Home.
func (a *Activation) Location() *location.Request { return a.request }

// Weather returns the snapshot taken at activation.
func (a *Activation) Weather() (weather.Snapshot, bool) { return a.snapshot, a.hasWeather }

// DrainEvents returns and clears the events recorded since the last call.
func (a *Activation) DrainEvents() []Event {
	a.eventsMu.Lock()
	defer a.eventsMu.Unlock()
	out := a.events
	a.events = nil
	return out
}

func (a *Activation) record(ev Event) {
	a.eventsMu.Lock()
	a.events = append(a.events, ev)
	a.eventsMu.Unlock()
}

func (a *Activation) watch(store *selection.Store) {
	a.unsubs = append(a.unsubs, store.Subscribe(func(c selection.Change) {
		a.record(Event{Kind: EventSelection, Slot: c.Slot, Value: c.Current, Was: c.Previous, HadWas: c.HadValue})
	}))
}

func (a *Activation) watchDropdown(d *selection.Dropdown) {
	a.unsubs = append(a.unsubs, d.Subscribe(func(s selection.DropdownState) {
		a.record(Event{Kind: EventDropdown, Slot: d.Store().Slot(), State: s})
	}))
}

func (a *Activation) touch(now time.Time) {
	a.seenMu.Lock()
	a.lastSeen = now
	a.seenMu.Unlock()
}

// LastSeen returns the last time the activation was addressed.
func (a *Activation) LastSeen() time.Time {
	a.seenMu.Lock()
	defer a.seenMu.Unlock()
	return a.lastSeen
}

func (a *Activation) release() {
	a.cancel()
	if a.request != nil {
		a.request.Cancel()
	}
	a.eventsMu.Lock()
	unsubs := a.unsubs
	a.unsubs = nil
	a.eventsMu.Unlock()
	for _, u := range unsubs {
		u()
	}
}
