// Package session owns the per-browser-session widget sets. Each session gets
// exactly one drawer, one cart mirror, and one product selector, built once by
// the registry and looked up by the cookie-carried session id. Widgets receive
// their collaborators explicitly; nothing is discovered by tree traversal.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	"github.com/FarhanRj389/storefront-widgets/internal/cartview"
	"github.com/FarhanRj389/storefront-widgets/internal/drawer"
	"github.com/FarhanRj389/storefront-widgets/internal/selector"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
)

// Widgets is one session's widget set.
type Widgets struct {
	Cart     *cart.Mirror
	View     *cartview.View
	Drawer   *drawer.Shell
	Selector *selector.Selector

	logg *logger.Logger

	mu       sync.Mutex
	fragment []byte
}

// NewWidgets wires the widget set together: the mirror re-renders the drawer
// fragment on every applied snapshot change.
func NewWidgets(mirror *cart.Mirror, view *cartview.View, shell *drawer.Shell, sel *selector.Selector, logg *logger.Logger) *Widgets {
	w := &Widgets{
		Cart:     mirror,
		View:     view,
		Drawer:   shell,
		Selector: sel,
		logg:     logg,
	}
	mirror.OnChange(w.snapshotChanged)
	return w
}

func (w *Widgets) snapshotChanged(snap cart.Snapshot, state cart.State) {
	// A mirror that never left Uninitialized has no server truth to cache;
	// rendering its empty snapshot would show a false empty cart.
	if state.Phase == cart.PhaseUninitialized {
		return
	}
	frag, err := w.View.Render(snap, state, cartview.Options{})
	if err != nil {
		w.logg.Error(context.Background(), "drawer render failed", err)
		return
	}
	w.mu.Lock()
	w.fragment = frag
	w.mu.Unlock()
}

// DrawerFragment returns the latest rendered drawer. Before any successful
// sync it renders from the current state; a mirror that never left
// Uninitialized yields the error fragment, not a false empty cart.
func (w *Widgets) DrawerFragment() []byte {
	w.mu.Lock()
	cached := w.fragment
	w.mu.Unlock()
	if cached != nil {
		return cached
	}

	state := w.Cart.State()
	if state.Phase == cart.PhaseUninitialized {
		return w.View.RenderError()
	}
	frag, err := w.View.Render(w.Cart.Snapshot(), state, cartview.Options{})
	if err != nil {
		w.logg.Error(context.Background(), "drawer render failed", err)
		return w.View.RenderError()
	}
	return frag
}

// EnsureFetched triggers the initial cart fetch for a fresh session. Failure
// is reported but leaves the mirror uninitialized for a later attempt.
func (w *Widgets) EnsureFetched(ctx context.Context) error {
	state := w.Cart.State()
	if state.Phase != cart.PhaseUninitialized || state.Loading {
		return nil
	}
	return w.Cart.FetchAndReplace(ctx)
}

// RefreshIfStale reconciles an optimistic snapshot that has outlived the
// configured TTL without any user action triggering a sync.
func (w *Widgets) RefreshIfStale(ctx context.Context, ttl time.Duration, now time.Time) error {
	state := w.Cart.State()
	if !state.Optimistic || ttl <= 0 {
		return nil
	}
	if now.Sub(state.PendingSince) < ttl {
		return nil
	}
	w.logg.Info(w.logg.WithField(ctx, "pending_since", state.PendingSince), "refreshing stale optimistic snapshot")
	return w.Cart.FetchAndReplace(ctx)
}

// Factory builds the widget set for a new session.
type Factory func(sessionID string) (*Widgets, error)

type entry struct {
	widgets  *Widgets
	lastSeen time.Time
}

// Registry maps session ids to widget sets and evicts idle sessions.
type Registry struct {
	factory Factory
	ttl     time.Duration
	logg    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry builds a registry around the widget factory.
func NewRegistry(factory Factory, ttl time.Duration, logg *logger.Logger) (*Registry, error) {
	if factory == nil {
		return nil, fmt.Errorf("widget factory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		logg:     logg,
		sessions: map[string]*entry{},
	}, nil
}

// GetOrCreate returns the session's widget set, building it on first use, and
// marks the session as seen.
func (r *Registry) GetOrCreate(ctx context.Context, sessionID string) (*Widgets, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[sessionID]; ok {
		e.lastSeen = time.Now()
		return e.widgets, nil
	}

	widgets, err := r.factory(sessionID)
	if err != nil {
		return nil, err
	}
	r.sessions[sessionID] = &entry{widgets: widgets, lastSeen: time.Now()}
	r.logg.Info(r.logg.WithField(ctx, "session_id", sessionID), "session widgets created")
	return widgets, nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle past the TTL and reports how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until the context is cancelled.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := r.Sweep(now); removed > 0 {
				r.logg.Info(r.logg.WithField(ctx, "removed", removed), "idle sessions evicted")
			}
		}
	}
}
