package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/google/uuid"
)

// SnapshotLoader reads the current catalog of a store.
type SnapshotLoader func(ctx context.Context, storeID uuid.UUID) (Snapshot, error)

// Hub fans catalog snapshots out to subscribers. Each subscriber holds at most
// one pending snapshot; a newer one replaces it.
type Hub struct {
	load    SnapshotLoader
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	version atomic.Uint64

	mu     sync.Mutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	ch   chan Snapshot
	last uint64
}

func NewHub(load SnapshotLoader, m *metrics.OrderMetrics, logg *logger.Logger) *Hub {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Hub{
		load:    load,
		metrics: m,
		logg:    logg,
		subs:    map[uuid.UUID]map[*subscriber]struct{}{},
	}
}

// Subscribe emits the current snapshot of storeID and then a new one after
// every change. The channel is closed once ctx is done or the hub closes.
//
// The subscriber is registered before the first load, so a change committed
// while that load runs is still published to it.
func (h *Hub) Subscribe(ctx context.Context, storeID uuid.UUID) (<-chan Snapshot, error) {
	sub := &subscriber{ch: make(chan Snapshot, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, nil
	}
	set, ok := h.subs[storeID]
	if !ok {
		set = map[*subscriber]struct{}{}
		h.subs[storeID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	h.metrics.SubscriptionOpened()

	snap, err := h.snapshot(ctx, storeID)
	if err != nil {
		h.remove(storeID, sub)
		return nil, err
	}

	h.mu.Lock()
	if _, ok := h.subs[storeID][sub]; ok && snap.Version > sub.last {
		sub.last = snap.Version
		deliver(sub.ch, snap)
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(storeID, sub)
	}()
	return sub.ch, nil
}

// Publish loads a fresh snapshot of storeID and hands it to its subscribers.
func (h *Hub) Publish(ctx context.Context, storeID uuid.UUID) {
	h.mu.Lock()
	n := len(h.subs[storeID])
	h.mu.Unlock()
	if n == 0 {
		return
	}

	snap, err := h.snapshot(ctx, storeID)
	if err != nil {
		h.logg.Error(h.logg.WithStoreID(ctx, storeID.String()), "catalog snapshot failed", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[storeID] {
		if snap.Version <= sub.last {
			continue
		}
		sub.last = snap.Version
		deliver(sub.ch, snap)
	}
}

// Subscribers reports the open subscriptions for storeID.
func (h *Hub) Subscribers(storeID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[storeID])
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for storeID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
			h.metrics.SubscriptionClosed()
		}
		delete(h.subs, storeID)
	}
}

func (h *Hub) remove(storeID uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[storeID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, storeID)
	}
	close(sub.ch)
	h.metrics.SubscriptionClosed()
}

// snapshot stamps the version before reading, so a higher version always
// comes from a read that started later and saw at least as many changes.
func (h *Hub) snapshot(ctx context.Context, storeID uuid.UUID) (Snapshot, error) {
	version := h.version.Add(1)
	snap, err := h.load(ctx, storeID)
	if err != nil {
		return Snapshot{}, err
	}
	snap.StoreID = storeID
	snap.Version = version
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	return snap, nil
}

// deliver replaces any unread snapshot with snap. Callers hold the hub lock,
// so ch cannot be closed concurrently.
func deliver(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
