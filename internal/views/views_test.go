package views

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathToView(t *testing.T) {
	t.Parallel()

	cases := map[string]ViewID{
		"/":         Home,
		"/places":   Places,
		"/places/":  Places,
		"/booking":  Booking,
		"/helpline": Helpline,
		"/about":    About,
		"/about/":   About,
	}
	for path, want := range cases {
		got, ok := PathToView(path)
		require.True(t, ok, path)
		require.Equal(t, want, got, path)
	}

	for _, path := range []string{"", "/unknown", "/places/temples", "/About", "places"} {
		_, ok := PathToView(path)
		require.False(t, ok, path)
	}
}

func TestOnlyHomeIsPrimary(t *testing.T) {
	t.Parallel()

	for _, v := range All() {
		require.Equal(t, v == Home, IsPrimaryView(v), v)
	}
}

func TestPathRoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range All() {
		got, ok := PathToView(v.Path())
		require.True(t, ok)
		require.Equal(t, v, got)
		require.Equal(t, "nav."+string(v), v.LabelKey())
	}
	require.False(t, ViewID("settings").Valid())
}
