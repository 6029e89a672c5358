package location

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
)

var (
	// ErrAlreadyReported is returned when a browser reports a second result for the same request.
	ErrAlreadyReported = errors.New("location: result already reported")
	// ErrAlreadyResolved is returned when a report arrives after Locate has given up.
	ErrAlreadyResolved = errors.New("location: request already resolved")
)

type report struct {
	coord geo.Coordinate
	err   error
}

// ClientLocator treats the visitor's browser as the location capability. The page asks
// navigator.geolocation and posts the outcome back, which Report hands to the waiting Locate.
type ClientLocator struct {
	timeout time.Duration
	reports chan report

	mu       sync.Mutex
	reported bool
	resolved bool
}

// NewClientLocator returns a locator that waits at most timeout for the browser (0 waits
// until the context ends).
func NewClientLocator(timeout time.Duration) *ClientLocator {
	return &ClientLocator{
		timeout: timeout,
		reports: make(chan report, 1),
	}
}

// Report delivers the browser outcome. Exactly one report is accepted, and only while
// Locate is still waiting for it.
func (l *ClientLocator) Report(coord geo.Coordinate, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reported {
		return ErrAlreadyReported
	}
	if l.resolved {
		return ErrAlreadyResolved
	}
	l.reported = true
	l.reports <- report{coord: coord, err: err}
	return nil
}

// Reported reports whether the browser has answered.
func (l *ClientLocator) Reported() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reported
}

// Locate waits for the browser report.
func (l *ClientLocator) Locate(ctx context.Context) (geo.Coordinate, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	select {
	case rep := <-l.reports:
		l.markResolved()
		return rep.coord, rep.err
	case <-ctx.Done():
	}

	l.mu.Lock()
	l.resolved = true
	// A report accepted while the deadline fired still wins.
	select {
	case rep := <-l.reports:
		l.mu.Unlock()
		return rep.coord, rep.err
	default:
	}
	l.mu.Unlock()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return geo.Coordinate{}, ErrTimeout
	}
	return geo.Coordinate{}, ctx.Err()
}

func (l *ClientLocator) markResolved() {
	l.mu.Lock()
	l.resolved = true
	l.mu.Unlock()
}

// ParseBrowserError maps a reported geolocation failure onto the taxonomy. Both the
// GeolocationPositionError codes (1, 2, 3) and their names are understood; anything
// else, including an empty value, means the capability is unavailable.
func ParseBrowserError(raw string) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "denied", "permission_denied":
		return ErrDenied
	case "3", "timeout":
		return ErrTimeout
	default:
		return ErrUnavailable
	}
}

// ParseBrowserPosition parses the lat/lng form values posted by the page.
func ParseBrowserPosition(rawLat, rawLng string) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(rawLng), 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.NewCoordinate(lat, lng)
}

// StaticLocator always answers with the configured coordinate or error.
type StaticLocator struct {
	Coordinate geo.Coordinate
	Err        error
}

// Locate returns the configured outcome.
func (s StaticLocator) Locate(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	return s.Coordinate, s.Err
}
