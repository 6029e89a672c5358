package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange indicates a latitude or longitude outside the WGS84 bounds.
var ErrOutOfRange = errors.New("geo: coordinate out of range")

const (
	fallbackLatitude  = 10.7905
	fallbackLongitude = 78.7047
)

// Fallback returns the Trichy reference point used whenever a device location is unavailable.
func Fallback() Coordinate {
	return Coordinate{Latitude: fallbackLatitude, Longitude: fallbackLongitude}
}

// Coordinate is an immutable latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// NewCoordinate validates the pair and returns a Coordinate.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Coordinate{}, fmt.Errorf("%w: NaN", ErrOutOfRange)
	}
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("%w: latitude %v", ErrOutOfRange, lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, fmt.Errorf("%w: longitude %v", ErrOutOfRange, lng)
	}
	return Coordinate{Latitude: lat, Longitude: lng}, nil
}

// Valid reports whether the coordinate lies within the WGS84 bounds.
func (c Coordinate) Valid() bool {
	_, err := NewCoordinate(c.Latitude, c.Longitude)
	return err == nil
}

// Format renders the pair with four decimals, e.g. "10.7905, 78.7047".
func (c Coordinate) Format() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

func (c Coordinate) String() string { return c.Format() }
