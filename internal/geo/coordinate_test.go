package geo

import (
	"errors"
	"math"
	"testing"
)

func TestNewCoordinateBounds(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"trichy", 10.7905, 78.7047, false},
		{"poles", 90, -180, false},
		{"lat too high", 90.0001, 0, true},
		{"lng too low", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCoordinate(tc.lat, tc.lng)
			if tc.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFormatUsesFourDecimals(t *testing.T) {
	if got := Fallback().Format(); got != "10.7905, 78.7047" {
		t.Fatalf("unexpected format %q", got)
	}
	c := Coordinate{Latitude: 11, Longitude: 79}
	if got := c.Format(); got != "11.0000, 79.0000" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestFallbackIsAFreshValue(t *testing.T) {
	c := Fallback()
	c.Latitude = 0
	if got := Fallback(); got == c || got.Latitude != 10.7905 || got.Longitude != 78.7047 {
		t.Fatalf("fallback changed to %+v", got)
	}
}
