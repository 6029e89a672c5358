package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
)

func TestBuildMarksActiveItem(t *testing.T) {
	t.Parallel()

	bar := Build(views.Booking)
	require.False(t, bar.Primary)
	require.Len(t, bar.Items, 5)

	var active []string
	for _, it := range bar.Items {
		if it.Active {
			active = append(active, it.Href)
		}
	}
	require.Equal(t, []string{"/booking"}, active)
}

func TestBuildPrimaryOnHome(t *testing.T) {
	t.Parallel()

	bar := Build(views.Home)
	require.True(t, bar.Primary)
	require.True(t, bar.Items[0].Active)
	require.Equal(t, "/", bar.Items[0].Href)
}

func TestBreadcrumbs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []Crumb{{Href: "/", LabelKey: "nav.home", Active: true}}, Breadcrumbs(views.Home))

	crumbs := Breadcrumbs(views.Helpline)
	require.Len(t, crumbs, 2)
	require.False(t, crumbs[0].Active)
	require.Equal(t, Crumb{Href: "/helpline", LabelKey: "nav.helpline", Active: true}, crumbs[1])
}
