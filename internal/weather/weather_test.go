package weather

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
)

func TestPlaceholderProvider(t *testing.T) {
	t.Parallel()

	snap, err := NewPlaceholderProvider().Current(context.Background(), geo.Fallback())
	require.NoError(t, err)
	require.Equal(t, Snapshot{TemperatureCelsius: 28, Condition: Sunny, HumidityPercent: 65, WindSpeedKmh: 12}, snap)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Placeholder().Validate())

	snap := Placeholder()
	snap.TemperatureCelsius = -40
	require.NotEqual(t, snap, Placeholder())
	require.Equal(t, 28, Placeholder().TemperatureCelsius)

	bad := []Snapshot{
		{Condition: "hail"},
		{Condition: Rainy, HumidityPercent: 101},
		{Condition: Rainy, HumidityPercent: -1},
		{Condition: Snowy, WindSpeedKmh: -0.5},
	}
	for _, s := range bad {
		require.ErrorIs(t, s.Validate(), ErrInvalidSnapshot, "%+v", s)
	}

	_, err := StaticProvider{Snapshot: bad[0]}.Current(context.Background(), geo.Fallback())
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestConditionPresentation(t *testing.T) {
	t.Parallel()

	require.Equal(t, "weather.advice.sunny", Sunny.AdviceKey())
	require.Equal(t, "weather.advice.rainy", Rainy.AdviceKey())
	require.Empty(t, Snowy.AdviceKey())
	require.Equal(t, "cloud-snow", Snowy.Icon())
	require.Equal(t, "sun", Condition("fog").Icon())
}
