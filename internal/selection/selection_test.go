package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var groups = []string{
	"Single member", "Couples", "Gang", "Family", "Boys gang",
	"Girls gang", "Old agers gang", "School students", "College students",
}

func newGroupStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("group", groups, "Single member")
	require.NoError(t, err)
	return s
}

func TestNewValidatesDefault(t *testing.T) {
	t.Parallel()

	_, err := New("group", groups, "Everyone")
	require.ErrorIs(t, err, ErrInvalidOption)

	_, err = New("empty", nil, "")
	require.Error(t, err)

	s, err := New("category", []string{"hotels", "temples"}, "")
	require.NoError(t, err)
	_, ok := s.Current()
	require.False(t, ok)
}

func TestSelectIsIdempotent(t *testing.T) {
	t.Parallel()

	s, err := New("category", []string{"hotels", "temples", "parks"}, "")
	require.NoError(t, err)

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.Select("temples"))
	require.NoError(t, s.Select("temples"))

	cur, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "temples", cur)
	require.Len(t, changes, 1)
	require.Equal(t, Change{Slot: "category", Current: "temples"}, changes[0])
}

func TestSelectReplacesPreviousValue(t *testing.T) {
	t.Parallel()

	s, err := New("category", []string{"hotels", "temples", "parks"}, "")
	require.NoError(t, err)

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.Select("temples"))
	require.NoError(t, s.Select("parks"))

	cur, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "parks", cur)
	require.False(t, s.Is("temples"))
	require.Equal(t, []Change{
		{Slot: "category", Current: "temples"},
		{Slot: "category", Previous: "temples", HadValue: true, Current: "parks"},
	}, changes)
}

func TestSelectRejectsUnknownValue(t *testing.T) {
	t.Parallel()

	s := newGroupStore(t)
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	require.ErrorIs(t, s.Select("Everyone"), ErrInvalidOption)
	cur, _ := s.Current()
	require.Equal(t, "Single member", cur)
	require.Zero(t, calls)
}

func TestObserversRunInOrderAndUnsubscribe(t *testing.T) {
	t.Parallel()

	s := newGroupStore(t)
	var order []string
	s.Subscribe(func(Change) { order = append(order, "first") })
	stop := s.Subscribe(func(Change) { order = append(order, "second") })

	require.NoError(t, s.Select("Family"))
	stop()
	stop()
	require.NoError(t, s.Select("Gang"))

	require.Equal(t, []string{"first", "second", "first"}, order)
}

func TestDropdownTogglePairsAreNoOps(t *testing.T) {
	t.Parallel()

	d := NewDropdown(newGroupStore(t))
	for i := 0; i < 3; i++ {
		d.Toggle()
		d.Toggle()
	}
	require.Equal(t, Closed, d.State())
	require.Equal(t, Open, d.Toggle())
}

func TestDropdownSelectsAndCloses(t *testing.T) {
	t.Parallel()

	d := NewDropdown(newGroupStore(t))
	require.Equal(t, Closed, d.State())

	require.Equal(t, Open, d.Toggle())
	require.NoError(t, d.SelectOption("Family"))

	require.Equal(t, Closed, d.State())
	require.True(t, d.Store().Is("Family"))
}

func TestDropdownSelectRequiresOpen(t *testing.T) {
	t.Parallel()

	d := NewDropdown(newGroupStore(t))
	require.ErrorIs(t, d.SelectOption("Couples"), ErrNotOpen)
	require.True(t, d.Store().Is("Single member"))
}

func TestDropdownInvalidOptionStaysOpen(t *testing.T) {
	t.Parallel()

	d := NewDropdown(newGroupStore(t))
	d.Toggle()
	require.ErrorIs(t, d.SelectOption("Everyone"), ErrInvalidOption)
	require.Equal(t, Open, d.State())
	require.True(t, d.Store().Is("Single member"))
}

func TestDropdownDismissKeepsSelection(t *testing.T) {
	t.Parallel()

	d := NewDropdown(newGroupStore(t))
	var states []DropdownState
	d.Subscribe(func(s DropdownState) { states = append(states, s) })

	d.Dismiss()
	d.Toggle()
	d.Dismiss()

	require.Equal(t, Closed, d.State())
	require.True(t, d.Store().Is("Single member"))
	require.Equal(t, []DropdownState{Open, Closed}, states)
}
