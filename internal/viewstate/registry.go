// Package viewstate keeps the live view activations. Each full-page render creates an
// activation; later HTMX requests address it by id until it is released or expires.
package viewstate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
	"github.com/Vijaysathappan4/Tourdoxa/internal/location"
	"github.com/Vijaysathappan4/Tourdoxa/internal/selection"
	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
	"github.com/Vijaysathappan4/Tourdoxa/internal/weather"
)

var (
	// ErrNotFound is returned for unknown, expired or released activations.
	ErrNotFound = errors.New("viewstate: activation not found")
	// ErrForbidden is returned when the caller does not own the activation.
	ErrForbidden = errors.New("viewstate: activation belongs to another session")
	// ErrUnknownView is returned when activating a view outside the known set.
	ErrUnknownView = errors.New("viewstate: unknown view")
)

const (
	defaultIdleTTL         = 30 * time.Minute
	defaultLocationTimeout = 10 * time.Second
	defaultMaxPerOwner     = 8
	defaultMaxActive       = 10000
)

// Config wires a Registry.
type Config struct {
	Catalog         *catalog.Catalog
	Weather         weather.Provider
	LocationTimeout time.Duration
	IdleTTL         time.Duration
	// MaxPerOwner caps live activations per session; the owner's oldest activation is
	// released when a new one would exceed it.
	MaxPerOwner int
	// MaxActive caps live activations overall; the least recently used are released first.
	MaxActive int
	Logger    *zap.Logger
	// LocationOptions are passed to every Home activation's location provider.
	LocationOptions []location.Option
	// NewLocator overrides the browser-backed locator, mostly for tests.
	NewLocator func(timeout time.Duration) location.Locator
	Now        func() time.Time
}

// Registry owns every live activation.
type Registry struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.RWMutex
	items map[string]*Activation
	seq   uint64
}

// NewRegistry builds a registry, filling unset fields with defaults.
func NewRegistry(cfg Config) *Registry {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Weather == nil {
		cfg.Weather = weather.NewPlaceholderProvider()
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = defaultLocationTimeout
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.MaxPerOwner <= 0 {
		cfg.MaxPerOwner = defaultMaxPerOwner
	}
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = defaultMaxActive
	}
	if cfg.MaxActive < cfg.MaxPerOwner {
		cfg.MaxActive = cfg.MaxPerOwner
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		cfg:    cfg,
		logger: cfg.Logger.Named("viewstate"),
		items:  map[string]*Activation{},
	}
}

// Activate creates a fresh activation of view for owner. Home activations start the
// location request immediately and take the weather snapshot.
func (r *Registry) Activate(ctx context.Context, view views.ViewID, owner string) (*Activation, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	now := r.cfg.Now()
	// Activations outlive the request that created them.
	actx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a := &Activation{
		id:        uuid.NewString(),
		view:      view,
		owner:     owner,
		createdAt: now,
		lastSeen:  now,
		ctx:       actx,
		cancel:    cancel,
	}

	if err := r.populate(actx, a); err != nil {
		cancel()
		return nil, err
	}

	r.mu.Lock()
	r.seq++
	a.seq = r.seq
	evicted := r.evictLocked(owner)
	r.items[a.id] = a
	r.mu.Unlock()

	for _, old := range evicted {
		old.release()
	}
	if len(evicted) > 0 {
		r.logger.Info("evicted activations over capacity", zap.Int("count", len(evicted)))
	}
	r.logger.Debug("activation created",
		zap.String("activation_id", a.id),
		zap.String("view", view.String()),
	)
	return a, nil
}

// evictLocked makes room for one more activation of owner and returns what it removed.
// The caller holds r.mu and releases the returned activations after unlocking.
func (r *Registry) evictLocked(owner string) []*Activation {
	var evicted []*Activation

	var mine []*Activation
	for _, a := range r.items {
		if a.owner == owner {
			mine = append(mine, a)
		}
	}
	if over := len(mine) - r.cfg.MaxPerOwner + 1; over > 0 {
		slices.SortFunc(mine, func(x, y *Activation) int { return cmp.Compare(x.seq, y.seq) })
		for _, a := range mine[:over] {
			delete(r.items, a.id)
			evicted = append(evicted, a)
		}
	}

	if over := len(r.items) - r.cfg.MaxActive + 1; over > 0 {
		all := make([]*Activation, 0, len(r.items))
		for _, a := range r.items {
			all = append(all, a)
		}
		slices.SortFunc(all, func(x, y *Activation) int {
			if c := x.LastSeen().Compare(y.LastSeen()); c != 0 {
				return c
			}
			return cmp.Compare(x.seq, y.seq)
		})
		for _, a := range all[:over] {
			delete(r.items, a.id)
			evicted = append(evicted, a)
		}
	}
	return evicted
}

func (r *Registry) populate(ctx context.Context, a *Activation) error {
	cat := r.cfg.Catalog
	switch a.view {
	case views.Places:
		store, err := selection.New(SlotCategory, cat.CategoryIDs(), "")
		if err != nil {
			return fmt.Errorf("viewstate: category store: %w", err)
		}
		a.categories = store
		a.watch(store)
	case views.Booking:
		store, err := selection.New(SlotService, cat.ServiceIDs(), "")
		if err != nil {
			return fmt.Errorf("viewstate: service store: %w", err)
		}
		a.services = store
		a.watch(store)
	case views.Home:
		store, err := selection.New(SlotGroupSize, cat.GroupSizes.Options, cat.GroupSizes.Default)
		if err != nil {
			return fmt.Errorf("viewstate: group store: %w", err)
		}
		a.group = selection.NewDropdown(store)
		a.watch(store)
		a.watchDropdown(a.group)

		a.locator = location.NewClientLocator(r.cfg.LocationTimeout)
		var locator location.Locator = a.locator
		if r.cfg.NewLocator != nil {
			locator = r.cfg.NewLocator(r.cfg.LocationTimeout)
		}
		opts := append([]location.Option{location.WithLogger(r.logger)}, r.cfg.LocationOptions...)
		a.request = location.NewProvider(locator, opts...).Start(ctx)

		snap, err := r.cfg.Weather.Current(ctx, geo.Fallback())
		if err != nil {
			r.logger.Warn("weather snapshot unavailable", zap.String("activation_id", a.id), zap.Error(err))
		} else {
			a.snapshot, a.hasWeather = snap, true
		}
	}
	return nil
}

// Get returns the activation with id when owner matches, refreshing its idle timer.
func (r *Registry) Get(id, owner string) (*Activation, error) {
	r.mu.RLock()
	a, ok := r.items[id]
	r.mu.RUnlock()
	if !ok || a.Released() {
		return nil, ErrNotFound
	}
	if a.owner != owner {
		return nil, ErrForbidden
	}
	a.touch(r.cfg.Now())
	return a, nil
}

// Release ends the activation and cancels its location request.
func (r *Registry) Release(id, owner string) error {
	r.mu.Lock()
	a, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if a.owner != owner {
		r.mu.Unlock()
		return ErrForbidden
	}
	delete(r.items, id)
	r.mu.Unlock()

	a.release()
	r.logger.Debug("activation released", zap.String("activation_id", id))
	return nil
}

// ReleaseAll ends every activation. Used on shutdown.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	items := r.items
	r.items = map[string]*Activation{}
	r.mu.Unlock()

	for _, a := range items {
		a.release()
	}
	return len(items)
}

// Len returns the number of live activations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Sweep releases activations idle for longer than the configured TTL.
func (r *Registry) Sweep() int {
	cutoff := r.cfg.Now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	var expired []*Activation
	for id, a := range r.items {
		if a.LastSeen().Before(cutoff) {
			expired = append(expired, a)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, a := range expired {
		a.release()
	}
	return len(expired)
}

// Run sweeps idle activations until ctx ends, then releases the rest.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.IdleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Info("expired idle activations", zap.Int("count", removed))
			}
		case <-ctx.Done():
			if n := r.ReleaseAll(); n > 0 {
				r.logger.Info("released activations on shutdown", zap.Int("count", n))
			}
			return
		}
	}
}
