package viewstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
	"github.com/Vijaysathappan4/Tourdoxa/internal/location"
	"github.com/Vijaysathappan4/Tourdoxa/internal/selection"
	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
	"github.com/Vijaysathappan4/Tourdoxa/internal/weather"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newRegistry(t *testing.T, mutate func(*Config)) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	cfg := Config{Now: clock.Now, LocationTimeout: time.Second}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRegistry(cfg), clock
}

func TestActivateBuildsViewScopedState(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	ctx := context.Background()

	places, err := reg.Activate(ctx, views.Places, "owner")
	require.NoError(t, err)
	require.NotNil(t, places.Categories())
	require.Nil(t, places.Services())
	require.Nil(t, places.Group())
	_, ok := places.Categories().Current()
	require.False(t, ok)

	booking, err := reg.Activate(ctx, views.Booking, "owner")
	require.NoError(t, err)
	require.NotNil(t, booking.Services())
	require.Nil(t, booking.Location())

	home, err := reg.Activate(ctx, views.Home, "owner")
	require.NoError(t, err)
	require.NotNil(t, home.Group())
	require.NotNil(t, home.Location())
	require.NotNil(t, home.Locator())
	group, ok := home.Group().Store().Current()
	require.True(t, ok)
	require.Equal(t, "Single member", group)
	snap, ok := home.Weather()
	require.True(t, ok)
	require.Equal(t, weather.Placeholder(), snap)

	require.NotEqual(t, places.ID(), booking.ID())
	require.Equal(t, 3, reg.Len())

	_, err = reg.Activate(ctx, views.ViewID("nope"), "owner")
	require.ErrorIs(t, err, ErrUnknownView)
}

func TestActivationsDoNotShareSelections(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	a, err := reg.Activate(context.Background(), views.Places, "owner")
	require.NoError(t, err)
	b, err := reg.Activate(context.Background(), views.Places, "owner")
	require.NoError(t, err)

	require.NoError(t, a.Categories().Select("temples"))
	_, ok := b.Categories().Current()
	require.False(t, ok)
}

func TestGetChecksOwnership(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	a, err := reg.Activate(context.Background(), views.About, "owner")
	require.NoError(t, err)

	got, err := reg.Get(a.ID(), "owner")
	require.NoError(t, err)
	require.Same(t, a, got)

	_, err = reg.Get(a.ID(), "intruder")
	require.ErrorIs(t, err, ErrForbidden)
	_, err = reg.Get("missing", "owner")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, reg.Release(a.ID(), "intruder"), ErrForbidden)
	require.NoError(t, reg.Release(a.ID(), "owner"))
	require.ErrorIs(t, reg.Release(a.ID(), "owner"), ErrNotFound)
	_, err = reg.Get(a.ID(), "owner")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReleaseCancelsPendingLocation(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	home, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)

	_, resolved := home.Location().Fix()
	require.False(t, resolved)

	require.NoError(t, reg.Release(home.ID(), "owner"))
	require.True(t, home.Released())

	select {
	case <-home.Location().Done():
	case <-time.After(time.Second):
		t.Fatal("location request still pending after release")
	}
	fix, ok := home.Location().Fix()
	require.True(t, ok)
	require.True(t, fix.IsFallback())
	require.ErrorIs(t, fix.Reason, context.Canceled)
	require.Equal(t, geo.Fallback(), fix.Coordinate)
}

func TestBrowserReportResolvesHomeLocation(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	home, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)

	coord, err := geo.NewCoordinate(10.8155, 78.6965)
	require.NoError(t, err)
	require.NoError(t, home.Locator().Report(coord, nil))

	fix, ok := home.Location().Wait(context.Background())
	require.True(t, ok)
	require.False(t, fix.IsFallback())
	require.Equal(t, "10.8155, 78.6965", fix.Coordinate.Format())
}

func TestNewLocatorOverride(t *testing.T) {
	reg, _ := newRegistry(t, func(cfg *Config) {
		cfg.NewLocator = func(time.Duration) location.Locator {
			return location.StaticLocator{Err: location.ErrDenied}
		}
	})
	home, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)

	fix, ok := home.Location().Wait(context.Background())
	require.True(t, ok)
	require.True(t, fix.IsFallback())
	require.ErrorIs(t, fix.Reason, location.ErrDenied)
}

func TestWeatherFailureLeavesSnapshotUnset(t *testing.T) {
	reg, _ := newRegistry(t, func(cfg *Config) {
		cfg.Weather = weather.StaticProvider{Snapshot: weather.Snapshot{Condition: "foggy"}}
	})
	home, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)
	_, ok := home.Weather()
	require.False(t, ok)
}

func TestSweepExpiresIdleActivations(t *testing.T) {
	reg, clock := newRegistry(t, func(cfg *Config) { cfg.IdleTTL = 10 * time.Minute })
	stale, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)
	fresh, err := reg.Activate(context.Background(), views.Helpline, "owner")
	require.NoError(t, err)

	clock.now = clock.now.Add(8 * time.Minute)
	_, err = reg.Get(fresh.ID(), "owner")
	require.NoError(t, err)

	clock.now = clock.now.Add(5 * time.Minute)
	require.Equal(t, 1, reg.Sweep())
	require.True(t, stale.Released())
	require.False(t, fresh.Released())

	_, err = reg.Get(stale.ID(), "owner")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepeatedPageLoadsStayWithinOwnerCap(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	ctx := context.Background()

	var first, last *Activation
	for i := 0; i < 200; i++ {
		a, err := reg.Activate(ctx, views.Home, "same-owner")
		require.NoError(t, err)
		if first == nil {
			first = a
		}
		last = a
	}

	require.Equal(t, defaultMaxPerOwner, reg.Len())
	require.True(t, first.Released())
	select {
	case <-first.Location().Done():
	case <-time.After(time.Second):
		t.Fatal("evicted activation kept its location request running")
	}
	_, err := reg.Get(first.ID(), "same-owner")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = reg.Get(last.ID(), "same-owner")
	require.NoError(t, err)
}

func TestOwnerCapReleasesOldestFirst(t *testing.T) {
	reg, _ := newRegistry(t, func(cfg *Config) { cfg.MaxPerOwner = 3 })
	ctx := context.Background()

	var mine []*Activation
	for i := 0; i < 5; i++ {
		a, err := reg.Activate(ctx, views.Places, "owner")
		require.NoError(t, err)
		mine = append(mine, a)
	}
	other, err := reg.Activate(ctx, views.Places, "other")
	require.NoError(t, err)

	require.Equal(t, 4, reg.Len())
	for _, a := range mine[:2] {
		require.True(t, a.Released())
	}
	for _, a := range mine[2:] {
		require.False(t, a.Released())
	}
	require.False(t, other.Released())
}

func TestGlobalCapReleasesLeastRecentlyUsed(t *testing.T) {
	reg, clock := newRegistry(t, func(cfg *Config) {
		cfg.MaxPerOwner = 2
		cfg.MaxActive = 3
	})
	ctx := context.Background()

	a, err := reg.Activate(ctx, views.Places, "a")
	require.NoError(t, err)
	clock.now = clock.now.Add(time.Minute)
	b, err := reg.Activate(ctx, views.Places, "b")
	require.NoError(t, err)
	clock.now = clock.now.Add(time.Minute)
	c, err := reg.Activate(ctx, views.Places, "c")
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Minute)
	_, err = reg.Get(a.ID(), "a")
	require.NoError(t, err)

	d, err := reg.Activate(ctx, views.Places, "d")
	require.NoError(t, err)

	require.Equal(t, 3, reg.Len())
	require.True(t, b.Released())
	require.False(t, a.Released())
	require.False(t, c.Released())
	require.False(t, d.Released())
}

func TestRunReleasesEverythingOnShutdown(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	a, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.True(t, a.Released())
	require.Zero(t, reg.Len())
}

func TestEventsRecordObservedChanges(t *testing.T) {
	reg, _ := newRegistry(t, nil)
	home, err := reg.Activate(context.Background(), views.Home, "owner")
	require.NoError(t, err)

	err = home.Do(func() error {
		home.Group().Toggle()
		return home.Group().SelectOption("Family")
	})
	require.NoError(t, err)

	events := home.DrainEvents()
	require.Len(t, events, 3)
	require.Equal(t, EventDropdown, events[0].Kind)
	require.Equal(t, selection.Open, events[0].State)
	require.Equal(t, EventSelection, events[1].Kind)
	require.Equal(t, "Family", events[1].Value)
	require.Equal(t, "Single member", events[1].Was)
	require.Equal(t, EventDropdown, events[2].Kind)
	require.Equal(t, selection.Closed, events[2].State)
	require.Empty(t, home.DrainEvents())

	// Errors from Do pass through untouched.
	sentinel := errors.New("boom")
	require.ErrorIs(t, home.Do(func() error { return sentinel }), sentinel)
}
