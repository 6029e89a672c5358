package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
)

const instrumentationName = "github.com/Vijaysathappan4/Tourdoxa/internal/location"

var (
	// ErrUnavailable indicates the device has no location capability or it failed.
	ErrUnavailable = errors.New("location: capability unavailable")
	// ErrDenied indicates the visitor refused the location permission prompt.
	ErrDenied = errors.New("location: permission denied")
	// ErrTimeout indicates the capability did not answer within its time budget.
	ErrTimeout = errors.New("location: request timed out")
)

// Locator is the platform location capability.
type Locator interface {
	Locate(ctx context.Context) (geo.Coordinate, error)
}

// LocatorFunc adapts ordinary functions to Locator.
type LocatorFunc func(ctx context.Context) (geo.Coordinate, error)

// Locate calls f(ctx).
func (f LocatorFunc) Locate(ctx context.Context) (geo.Coordinate, error) { return f(ctx) }

// Source records where a Fix came from.
type Source string

const (
	// SourceDevice means the capability reported the position.
	SourceDevice Source = "device"
	// SourceFallback means the reference coordinate was substituted.
	SourceFallback Source = "fallback"
)

// Fix is the resolved outcome of one acquisition. Reason is set only for fallbacks.
type Fix struct {
	Coordinate geo.Coordinate
	Source     Source
	Reason     error
}

// IsFallback reports whether the fix is the substituted reference coordinate.
func (f Fix) IsFallback() bool { return f.Source == SourceFallback }

// Option customises a Provider.
type Option func(*Provider)

// WithLogger sets the logger used to record fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFallback overrides the reference coordinate.
func WithFallback(c geo.Coordinate) Option {
	return func(p *Provider) { p.fallback = c }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Provider) {
		if tp != nil {
			p.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Provider) {
		if mp != nil {
			p.meter = mp.Meter(instrumentationName)
		}
	}
}

// Provider turns a Locator into a best-effort coordinate source that never fails.
type Provider struct {
	locator   Locator
	fallback  geo.Coordinate
	logger    *zap.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	fallbacks metric.Int64Counter
}

// NewProvider builds a Provider around locator. A nil locator behaves as an absent capability.
func NewProvider(locator Locator, opts ...Option) *Provider {
	p := &Provider{
		locator:  locator,
		fallback: geo.Fallback(),
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}
	counter, err := p.meter.Int64Counter("tourdoxa.location.fallbacks",
		metric.WithDescription("Location acquisitions resolved to the reference coordinate."))
	if err != nil {
		p.logger.Warn("location: fallback counter unavailable", zap.Error(err))
	}
	p.fallbacks = counter
	return p
}

// Acquire asks the capability once and returns its coordinate, or the fallback on any failure.
func (p *Provider) Acquire(ctx context.Context) geo.Coordinate {
	return p.Locate(ctx).Coordinate
}

// Locate is Acquire with the resolution details attached.
func (p *Provider) Locate(ctx context.Context) Fix {
	ctx, span := p.tracer.Start(ctx, "location.acquire")
	defer span.End()

	if p.locator == nil {
		return p.substitute(ctx, span, ErrUnavailable)
	}
	coord, err := p.locator.Locate(ctx)
	if err == nil && !coord.Valid() {
		err = fmt.Errorf("%w: %w", ErrUnavailable, geo.ErrOutOfRange)
	}
	if err != nil {
		return p.substitute(ctx, span, err)
	}
	span.SetAttributes(attribute.String("location.source", string(SourceDevice)))
	return Fix{Coordinate: coord, Source: SourceDevice}
}

func (p *Provider) substitute(ctx context.Context, span trace.Span, cause error) Fix {
	reason := Classify(cause)
	label := ReasonLabel(reason)
	span.SetAttributes(
		attribute.String("location.source", string(SourceFallback)),
		attribute.String("location.fallback_reason", label),
	)
	if p.fallbacks != nil {
		p.fallbacks.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("reason", label)))
	}
	p.logger.Info("location: using fallback coordinate",
		zap.String("reason", label),
		zap.NamedError("cause", cause),
		zap.Stringer("coordinate", p.fallback),
	)
	return Fix{Coordinate: p.fallback, Source: SourceFallback, Reason: reason}
}

// Start issues the acquisition in the background. Cancelling ctx (or calling Cancel)
// abandons the capability request and resolves the Request to the fallback.
func (p *Provider) Start(ctx context.Context) *Request {
	ctx, cancel := context.WithCancel(ctx)
	req := &Request{cancel: cancel, done: make(chan struct{})}
	go func() {
		fix := p.Locate(ctx)
		req.resolve(fix)
	}()
	return req
}

// Request is a single outstanding acquisition. It resolves exactly once.
type Request struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	fix Fix
}

func (r *Request) resolve(fix Fix) {
	r.mu.Lock()
	r.fix = fix
	r.mu.Unlock()
	close(r.done)
	r.cancel()
}

// Done is closed once the request has resolved.
func (r *Request) Done() <-chan struct{} { return r.done }

// Fix returns the resolved fix, or false while still pending.
func (r *Request) Fix() (Fix, bool) {
	select {
	case <-r.done:
	default:
		return Fix{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fix, true
}

// Wait blocks until the request resolves or ctx ends. The request keeps running when
// only the caller's ctx ends.
func (r *Request) Wait(ctx context.Context) (Fix, bool) {
	select {
	case <-r.done:
		return r.Fix()
	case <-ctx.Done():
		return Fix{}, false
	}
}

// Cancel abandons the in-flight capability request.
func (r *Request) Cancel() { r.cancel() }

// Classify maps any acquisition error onto the capability taxonomy.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDenied):
		return ErrDenied
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return context.Canceled
	default:
		return ErrUnavailable
	}
}

// ReasonLabel returns a short metric/log label for a classified error.
func ReasonLabel(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDenied):
		return "denied"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unavailable"
	}
}
