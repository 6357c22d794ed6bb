// Package orderbook is the append-only order log. Orders are listed
// per user most-recent-first; the wait-queue for a (train, day) key is
// a filtered view over the same records, never a second structure.
package orderbook

import (
	"fmt"
	"sort"
	"sync"

	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/repository"
)

type key struct {
	trainID string
	day     int
}

type OrderBook struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Order
	byUser map[string][]*domain.Order // append order, oldest first
	byKey  map[key][]*domain.Order    // append order, oldest first
}

func New() *OrderBook {
	return &OrderBook{
		nextID: 1,
		byID:   make(map[int64]*domain.Order),
		byUser: make(map[string][]*domain.Order),
		byKey:  make(map[key][]*domain.Order),
	}
}

// Append assigns the next creation sequence and records the order.
// The returned copy carries the assigned ID.
func (b *OrderBook) Append(o domain.Order) domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	o.ID = b.nextID
	b.nextID++

	stored := o
	b.byID[stored.ID] = &stored
	b.byUser[stored.Username] = append(b.byUser[stored.Username], &stored)
	k := key{trainID: stored.TrainID, day: stored.Day}
	b.byKey[k] = append(b.byKey[k], &stored)

	return stored
}

var legal = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending: {domain.OrderSuccess, domain.OrderRefunded},
	domain.OrderSuccess: {domain.OrderRefunded},
}

// SetStatus applies one transition of the order state machine.
// Anything outside pending->success, pending->refunded and
// success->refunded fails without mutating.
func (b *OrderBook) SetStatus(id int64, next domain.OrderStatus) error {
	const op = "orderbook.SetStatus"

	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%s: order %d: %w", op, id, repository.ErrNotFound)
	}

	for _, s := range legal[o.Status] {
		if s == next {
			o.Status = next
			return nil
		}
	}

	return fmt.Errorf("%s: order %d: %s -> %s: %w",
		op, id, o.Status, next, repository.ErrInvalidTransition)
}

// Get returns a copy of one order.
func (b *OrderBook) Get(id int64) (domain.Order, error) {
	const op = "orderbook.Get"

	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.byID[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%s: order %d: %w", op, id, repository.ErrNotFound)
	}

	return *o, nil
}

// OrdersFor lists a user's orders, most recent first.
func (b *OrderBook) OrdersFor(username string) []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	src := b.byUser[username]
	out := make([]domain.Order, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, *src[i])
	}

	return out
}

// NthFor resolves the n-th order (1-based, most recent first) of a
// user, the addressing scheme refunds use.
func (b *OrderBook) NthFor(username string, n int) (domain.Order, error) {
	const op = "orderbook.NthFor"

	b.mu.RLock()
	defer b.mu.RUnlock()

	src := b.byUser[username]
	if n < 1 || n > len(src) {
		return domain.Order{}, fmt.Errorf("%s: %s #%d: %w", op, username, n, repository.ErrNotFound)
	}

	return *src[len(src)-n], nil
}

// PendingQueue is the FIFO wait-queue view for a key: pending orders
// only, oldest first.
func (b *OrderBook) PendingQueue(trainID string, day int) []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []domain.Order
	for _, o := range b.byKey[key{trainID: trainID, day: day}] {
		if o.Status == domain.OrderPending {
			out = append(out, *o)
		}
	}

	return out
}

// Reset drops every order and restarts the sequence.
func (b *OrderBook) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID = 1
	b.byID = make(map[int64]*domain.Order)
	b.byUser = make(map[string][]*domain.Order)
	b.byKey = make(map[key][]*domain.Order)
}

// Snapshot copies every order in creation order for the storage
// collaborator.
func (b *OrderBook) Snapshot() []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Order, 0, len(b.byID))
	for _, o := range b.byID {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Restore rebuilds the book, its per-user lists and the queue views
// from stored orders. The wait-queue is never persisted separately;
// this is the only way it comes back.
func (b *OrderBook) Restore(orders []domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID = 1
	b.byID = make(map[int64]*domain.Order, len(orders))
	b.byUser = make(map[string][]*domain.Order)
	b.byKey = make(map[key][]*domain.Order)

	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for i := range sorted {
		o := sorted[i]
		b.byID[o.ID] = &o
		b.byUser[o.Username] = append(b.byUser[o.Username], &o)
		k := key{trainID: o.TrainID, day: o.Day}
		b.byKey[k] = append(b.byKey[k], &o)
		if o.ID >= b.nextID {
			b.nextID = o.ID + 1
		}
	}
}
