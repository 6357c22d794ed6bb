// Package ledger tracks remaining seats per (train, boarding day), one
// counter per leg. Entries are created lazily at full capacity the
// first time a day is written; reads of an untouched day report full
// capacity without allocating.
//
// Mutations for one key run under that key's own lock via Update, so a
// capacity check and the decision taken on it form one critical
// section. Distinct keys never contend.
package ledger

import (
	"fmt"
	"sync"

	"github.com/railbook/rail-go/internal/repository"
)

type key struct {
	trainID string
	day     int
}

// Seats is the per-key slice of remaining seats. Only valid inside an
// Update callback; the ledger owns the locking.
type Seats struct {
	cap  int
	left []int
}

// Available is the minimum remaining count across legs [fromLeg, toLeg).
func (s *Seats) Available(fromLeg, toLeg int) int {
	m := s.cap
	for j := fromLeg; j < toLeg; j++ {
		if s.left[j] < m {
			m = s.left[j]
		}
	}
	return m
}

// Reserve takes count seats on every leg in [fromLeg, toLeg),
// all-or-nothing.
func (s *Seats) Reserve(fromLeg, toLeg, count int) error {
	const op = "ledger.Seats.Reserve"

	if s.Available(fromLeg, toLeg) < count {
		return fmt.Errorf("%s: %w", op, repository.ErrInsufficientSeats)
	}

	for j := fromLeg; j < toLeg; j++ {
		s.left[j] -= count
	}

	return nil
}

// Release returns count seats on every leg in [fromLeg, toLeg). The
// total released for a key never exceeds the total reserved, so counts
// stay within capacity.
func (s *Seats) Release(fromLeg, toLeg, count int) {
	for j := fromLeg; j < toLeg; j++ {
		s.left[j] += count
		if s.left[j] > s.cap {
			s.left[j] = s.cap
		}
	}
}

// Remaining copies the per-leg counters.
func (s *Seats) Remaining() []int {
	out := make([]int, len(s.left))
	copy(out, s.left)
	return out
}

type entry struct {
	mu    sync.Mutex
	seats Seats
}

type SeatLedger struct {
	mu      sync.Mutex
	entries map[key]*entry
}

func New() *SeatLedger {
	return &SeatLedger{entries: make(map[key]*entry)}
}

// forDate is the get-or-create accessor: the first touch of a key
// materializes the day at full capacity.
func (l *SeatLedger) forDate(trainID string, day, legs, seatCap int) *entry {
	k := key{trainID: trainID, day: day}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[k]
	if !ok {
		left := make([]int, legs)
		for j := range left {
			left[j] = seatCap
		}
		e = &entry{seats: Seats{cap: seatCap, left: left}}
		l.entries[k] = e
	}

	return e
}

// Update runs fn with exclusive access to the key's seat counters.
// An error from fn is returned as-is; partial mutations are up to fn
// to avoid (Reserve is already all-or-nothing).
func (l *SeatLedger) Update(trainID string, day, legs, seatCap int, fn func(s *Seats) error) error {
	e := l.forDate(trainID, day, legs, seatCap)

	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(&e.seats)
}

// Available reads the minimum remaining count across [fromLeg, toLeg)
// without creating the entry.
func (l *SeatLedger) Available(trainID string, day, fromLeg, toLeg, seatCap int) int {
	l.mu.Lock()
	e, ok := l.entries[key{trainID: trainID, day: day}]
	l.mu.Unlock()

	if !ok {
		return seatCap
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.seats.Available(fromLeg, toLeg)
}

// Remaining reads all per-leg counters for display. An untouched day
// reports full capacity on every leg.
func (l *SeatLedger) Remaining(trainID string, day, legs, seatCap int) []int {
	l.mu.Lock()
	e, ok := l.entries[key{trainID: trainID, day: day}]
	l.mu.Unlock()

	if !ok {
		out := make([]int, legs)
		for j := range out {
			out[j] = seatCap
		}
		return out
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.seats.Remaining()
}

// Reset drops every entry.
func (l *SeatLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[key]*entry)
}
