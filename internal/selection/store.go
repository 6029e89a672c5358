// Package selection holds the page-scoped single-choice slots (selected category,
// selected service, travel group) and the group-size dropdown.
package selection

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidOption is returned when a value is not part of a slot's option set.
var ErrInvalidOption = errors.New("selection: invalid option")

// Change describes one transition of a slot.
type Change struct {
	Slot     string
	Previous string
	HadValue bool
	Current  string
}

// Store is a single-selection slot over a fixed option set. The zero selection (unset)
// is valid. Stores are owned by one view activation and never shared.
type Store struct {
	slot    string
	options []string

	mu        sync.Mutex
	current   string
	set       bool
	observers []*observer
}

type observer struct {
	fn func(Change)
}

// New returns a store for slot. def must be empty (unset) or one of options.
func New(slot string, options []string, def string) (*Store, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("selection: slot %q has no options", slot)
	}
	s := &Store{slot: slot, options: slices.Clone(options)}
	if def != "" {
		if !slices.Contains(s.options, def) {
			return nil, fmt.Errorf("selection: default %q for slot %q: %w", def, slot, ErrInvalidOption)
		}
		s.current, s.set = def, true
	}
	return s, nil
}

// Slot returns the slot name.
func (s *Store) Slot() string { return s.slot }

// Options returns a copy of the option set in configuration order.
func (s *Store) Options() []string { return slices.Clone(s.options) }

// Current returns the selected value, or false when the slot is unset.
func (s *Store) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.set
}

// Is reports whether value is the current selection.
func (s *Store) Is(value string) bool {
	cur, ok := s.Current()
	return ok && cur == value
}

// Select makes value the current selection. Re-selecting the current value is a no-op
// and does not notify observers.
func (s *Store) Select(value string) error {
	if !slices.Contains(s.options, value) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidOption, value, s.slot)
	}

	s.mu.Lock()
	if s.set && s.current == value {
		s.mu.Unlock()
		return nil
	}
	change := Change{Slot: s.slot, Previous: s.current, HadValue: s.set, Current: value}
	s.current, s.set = value, true
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(change)
	}
	return nil
}

// Subscribe registers fn to run after every change, in subscription order. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	o := &observer{fn: fn}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.observers = slices.DeleteFunc(s.observers, func(x *observer) bool { return x == o })
		})
	}
}
