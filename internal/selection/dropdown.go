package selection

import (
	"errors"
	"slices"
	"sync"
)

// ErrNotOpen is returned when an option is chosen while the dropdown is closed.
var ErrNotOpen = errors.New("selection: dropdown is not open")

// DropdownState is the open/closed state of a Dropdown.
type DropdownState int

const (
	Closed DropdownState = iota
	Open
)

func (s DropdownState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Dropdown is the travel-group picker: a two-state toggle wired to a Store.
type Dropdown struct {
	store *Store

	mu        sync.Mutex
	state     DropdownState
	observers []*stateObserver
}

type stateObserver struct {
	fn func(DropdownState)
}

// NewDropdown returns a closed dropdown selecting into store.
func NewDropdown(store *Store) *Dropdown {
	return &Dropdown{store: store}
}

// Store returns the backing selection store.
func (d *Dropdown) Store() *Store { return d.store }

// State returns the current state.
func (d *Dropdown) State() DropdownState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Toggle flips between Closed and Open.
func (d *Dropdown) Toggle() DropdownState {
	d.mu.Lock()
	next := Open
	if d.state == Open {
		next = Closed
	}
	d.mu.Unlock()
	d.transition(next)
	return next
}

// SelectOption selects value and closes the dropdown. It fails with ErrNotOpen from
// Closed. An invalid value leaves both the selection and the Open state untouched.
func (d *Dropdown) SelectOption(value string) error {
	if d.State() != Open {
		return ErrNotOpen
	}
	if err := d.store.Select(value); err != nil {
		return err
	}
	d.transition(Closed)
	return nil
}

// Dismiss closes the dropdown without changing the selection (click outside).
func (d *Dropdown) Dismiss() {
	d.transition(Closed)
}

// Subscribe registers fn for state changes and returns its removal func.
func (d *Dropdown) Subscribe(fn func(DropdownState)) func() {
	o := &stateObserver{fn: fn}
	d.mu.Lock()
	d.observers = append(d.observers, o)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.observers = slices.DeleteFunc(d.observers, func(x *stateObserver) bool { return x == o })
		})
	}
}

func (d *Dropdown) transition(next DropdownState) {
	d.mu.Lock()
	if d.state == next {
		d.mu.Unlock()
		return
	}
	d.state = next
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	for _, o := range observers {
		o.fn(next)
	}
}
