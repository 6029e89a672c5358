// Package weather models the Home view weather widget.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
)

// ErrInvalidSnapshot is returned by Validate.
var ErrInvalidSnapshot = errors.New("weather: invalid snapshot")

// Condition is the coarse sky condition.
type Condition string

const (
	Sunny  Condition = "sunny"
	Cloudy Condition = "cloudy"
	Rainy  Condition = "rainy"
	Snowy  Condition = "snowy"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case Sunny, Cloudy, Rainy, Snowy:
		return true
	}
	return false
}

// Icon names the icon drawn for c; unknown conditions draw the sun.
func (c Condition) Icon() string {
	switch c {
	case Cloudy:
		return "cloud"
	case Rainy:
		return "cloud-rain"
	case Snowy:
		return "cloud-snow"
	default:
		return "sun"
	}
}

// AdviceKey is the i18n key of the tip appended to the widget footer, or "" for none.
func (c Condition) AdviceKey() string {
	switch c {
	case Sunny, Rainy, Cloudy:
		return "weather.advice." + string(c)
	}
	return ""
}

// Snapshot is a point-in-time weather reading.
type Snapshot struct {
	TemperatureCelsius int
	Condition          Condition
	HumidityPercent    int
	WindSpeedKmh       float64
}

// Validate checks the snapshot invariants.
func (s Snapshot) Validate() error {
	switch {
	case !s.Condition.Valid():
		return fmt.Errorf("%w: condition %q", ErrInvalidSnapshot, s.Condition)
	case s.HumidityPercent < 0 || s.HumidityPercent > 100:
		return fmt.Errorf("%w: humidity %d", ErrInvalidSnapshot, s.HumidityPercent)
	case s.WindSpeedKmh < 0 || math.IsNaN(s.WindSpeedKmh):
		return fmt.Errorf("%w: wind speed %v", ErrInvalidSnapshot, s.WindSpeedKmh)
	}
	return nil
}

// Provider yields the current conditions near a coordinate.
type Provider interface {
	Current(ctx context.Context, at geo.Coordinate) (Snapshot, error)
}

// Placeholder returns the fixed reading shown until a real weather source exists.
func Placeholder() Snapshot {
	return Snapshot{TemperatureCelsius: 28, Condition: Sunny, HumidityPercent: 65, WindSpeedKmh: 12}
}

// StaticProvider always returns the same snapshot.
type StaticProvider struct {
	Snapshot Snapshot
}

// NewPlaceholderProvider returns a provider serving Placeholder.
func NewPlaceholderProvider() StaticProvider {
	return StaticProvider{Snapshot: Placeholder()}
}

// Current returns the configured snapshot.
func (p StaticProvider) Current(ctx context.Context, _ geo.Coordinate) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if err := p.Snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}
	return p.Snapshot, nil
}
