// Package cart keeps the client-held cart snapshot consistent with the remote
// cart resource. The server is authoritative: every successful sync replaces
// the snapshot wholesale. The one deliberate exception is the optimistic add
// path, which mutates locally because the add endpoint returns a single item
// rather than a full cart; that state stays tagged as optimistic until the
// next reconciling round trip.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
	"github.com/FarhanRj389/storefront-widgets/pkg/metrics"
	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

// Phase is the coarse lifecycle of a mirror instance. Sync failures never
// demote a populated mirror back to Uninitialized.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseSyncing
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSyncing:
		return "syncing"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// State is the observable sync state alongside a snapshot. Optimistic marks a
// snapshot known to drift from server truth until the next reconciliation.
type State struct {
	Phase        Phase
	Loading      bool
	Optimistic   bool
	PendingSince time.Time
}

// Controller is the capability contract other widgets use to drive cart sync.
// Collaborators receive it explicitly instead of assuming a sibling exists.
type Controller interface {
	FetchAndReplace(ctx context.Context) error
	RequestQuantityChange(ctx context.Context, updates PendingUpdate) error
	OptimisticAdd(ctx context.Context, item platform.LineItem)
	Snapshot() Snapshot
	State() State
}

type syncAPI interface {
	FetchCart(ctx context.Context) (*platform.Cart, error)
	UpdateCart(ctx context.Context, updates map[string]int) (*platform.Cart, error)
}

// Params wires a mirror's collaborators.
type Params struct {
	Client        syncAPI
	Logger        *logger.Logger
	Metrics       *metrics.SyncMetrics
	RowImageWidth int
}

// Mirror owns one cart snapshot for one drawer instance. All mutation is
// serialized behind its mutex; responses carry a sequence number so a stale
// out-of-order response cannot overwrite newer state.
type Mirror struct {
	client  syncAPI
	logg    *logger.Logger
	metrics *metrics.SyncMetrics
	rowW    int

	onChange func(Snapshot, State)

	mu           sync.Mutex
	phase        Phase
	loading      bool
	populated    bool
	optimistic   bool
	pendingSince time.Time
	snap         Snapshot
	nextSeq      uint64
	appliedSeq   uint64
}

// NewMirror builds a mirror over the given platform client.
func NewMirror(p Params) (*Mirror, error) {
	if p.Client == nil {
		return nil, fmt.Errorf("platform client required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.RowImageWidth <= 0 {
		p.RowImageWidth = 100
	}
	return &Mirror{
		client:  p.Client,
		logg:    p.Logger,
		metrics: p.Metrics,
		rowW:    p.RowImageWidth,
	}, nil
}

// OnChange registers the single re-render hook invoked after every applied
// snapshot change. Must be called before the mirror is shared.
func (m *Mirror) OnChange(fn func(Snapshot, State)) {
	m.onChange = fn
}

// Snapshot returns a copy of the current snapshot.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

// State returns the current sync state.
func (m *Mirror) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Mirror) stateLocked() State {
	return State{
		Phase:        m.phase,
		Loading:      m.loading,
		Optimistic:   m.optimistic,
		PendingSince: m.pendingSince,
	}
}

// FetchAndReplace reads the remote cart and replaces the snapshot. On failure
// the previous snapshot stays untouched and the caller decides how loudly to
// report; there is no retry.
func (m *Mirror) FetchAndReplace(ctx context.Context) error {
	seq := m.beginSync()
	ctx = m.logg.WithField(ctx, "op", "fetch_cart")

	start := time.Now()
	remote, err := m.client.FetchCart(ctx)
	m.metrics.ObserveDuration("fetch", time.Since(start))

	if err != nil {
		m.metrics.IncFailure("fetch")
		m.failSync()
		m.logg.Warn(ctx, "cart fetch failed, keeping previous snapshot")
		return err
	}

	m.metrics.IncSuccess("fetch")
	m.applyServerCart(ctx, "fetch", seq, remote)
	return nil
}

// RequestQuantityChange sends a batch of absolute quantity targets and applies
// the returned cart wholesale. The loading flag is raised before the request
// and cleared in the response handler, success or failure, so the view can dim
// itself during the round trip. Failure is soft: snapshot unchanged, logged.
func (m *Mirror) RequestQuantityChange(ctx context.Context, updates PendingUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	seq := m.beginSync()
	ctx = m.logg.WithFields(ctx, map[string]any{"op": "update_cart", "targets": len(updates)})

	start := time.Now()
	remote, err := m.client.UpdateCart(ctx, updates)
	m.metrics.ObserveDuration("update", time.Since(start))

	if err != nil {
		m.metrics.IncFailure("update")
		m.failSync()
		m.logg.Warn(ctx, "cart update failed, keeping previous snapshot")
		return err
	}

	m.metrics.IncSuccess("update")
	m.applyServerCart(ctx, "update", seq, remote)
	return nil
}

// OptimisticAdd folds the add endpoint's single-item response into the local
// snapshot. An existing item with the same line identity gains the added
// quantity, with the line total recomputed from the existing unit price to
// avoid unit mismatches between endpoints; otherwise the item is appended
// under a locally generated key. The result is provisional until the next
// reconciling sync.
func (m *Mirror) OptimisticAdd(ctx context.Context, item platform.LineItem) {
	m.mu.Lock()

	merged := false
	for i := range m.snap.Items {
		if m.snap.Items[i].ID == item.ID {
			m.snap.Items[i].Quantity += item.Quantity
			m.snap.Items[i].LineTotal = m.snap.Items[i].UnitPrice * int64(m.snap.Items[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		m.snap.Items = append(m.snap.Items, LineItem{
			Key:          newLocalKey(),
			ID:           item.ID,
			VariantID:    item.VariantID,
			ProductTitle: item.ProductTitle,
			VariantTitle: item.VariantTitle,
			Quantity:     item.Quantity,
			UnitPrice:    item.Price,
			LineTotal:    item.Price * int64(item.Quantity),
			ImageURL:     item.DisplayImageURL(m.rowW),
		})
	}
	m.snap.recomputeTotals()

	m.phase = PhaseReady
	m.populated = true
	m.optimistic = true
	m.pendingSince = time.Now()

	snap := m.snap.Clone()
	state := m.stateLocked()
	m.mu.Unlock()

	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"op":     "optimistic_add",
		"merged": merged,
		"line":   item.ID,
	}), "optimistic add applied")
	m.emit(snap, state)
}

// beginSync raises the loading flag, advances the lifecycle phase, and hands
// out the sequence number guarding this round trip.
func (m *Mirror) beginSync() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loading = true
	if m.populated {
		m.phase = PhaseSyncing
	} else {
		m.phase = PhaseLoading
	}
	m.nextSeq++
	return m.nextSeq
}

func (m *Mirror) failSync() {
	m.mu.Lock()
	m.loading = false
	if m.populated {
		m.phase = PhaseReady
	} else {
		m.phase = PhaseUninitialized
	}
	snap := m.snap.Clone()
	state := m.stateLocked()
	m.mu.Unlock()

	m.emit(snap, state)
}

// applyServerCart replaces the snapshot with an authoritative response unless
// a newer response has already been applied, in which case the stale one is
// discarded instead of overwriting newer state.
func (m *Mirror) applyServerCart(ctx context.Context, op string, seq uint64, remote *platform.Cart) {
	m.mu.Lock()
	m.loading = false

	if seq <= m.appliedSeq {
		m.metrics.IncStale(op)
		state := m.stateLocked()
		snap := m.snap.Clone()
		m.mu.Unlock()
		m.logg.Warn(m.logg.WithField(ctx, "seq", seq), "discarding stale sync response")
		m.emit(snap, state)
		return
	}

	m.appliedSeq = seq
	m.snap = snapshotFromCart(remote, m.rowW)
	m.phase = PhaseReady
	m.populated = true
	m.optimistic = false
	m.pendingSince = time.Time{}

	snap := m.snap.Clone()
	state := m.stateLocked()
	m.mu.Unlock()

	m.emit(snap, state)
}

func (m *Mirror) emit(snap Snapshot, state State) {
	if m.onChange != nil {
		m.onChange(snap, state)
	}
}
