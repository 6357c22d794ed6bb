// Package catalog owns train topology. Trains are created unreleased,
// become bookable exactly once on release, and can be deleted only
// while unreleased.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/railbook/rail-go/internal/calendar"
	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/repository"
)

const (
	MinStations    = 2
	MaxStations    = 100
	MaxTrainIDLen  = 20
	MaxStationName = 30
)

type Catalog struct {
	mu        sync.RWMutex
	trains    map[string]*domain.Train
	byStation map[string][]string // station -> released train IDs, sorted
}

func New() *Catalog {
	return &Catalog{
		trains:    make(map[string]*domain.Train),
		byStation: make(map[string][]string),
	}
}

// Create validates and stores a new unreleased train.
func (c *Catalog) Create(t *domain.Train) error {
	const op = "catalog.Create"

	if err := validate(t); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.trains[t.ID]; ok {
		return fmt.Errorf("%s: %s: %w", op, t.ID, repository.ErrDuplicateTrainID)
	}

	cp := *t
	cp.Released = false
	c.trains[t.ID] = &cp

	return nil
}

// Release makes a train visible to booking. One-way: a second call
// fails and changes nothing.
func (c *Catalog) Release(id string) error {
	const op = "catalog.Release"

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.trains[id]
	if !ok {
		return fmt.Errorf("%s: %s: %w", op, id, repository.ErrNotFound)
	}

	if t.Released {
		return fmt.Errorf("%s: %s: %w", op, id, repository.ErrAlreadyReleased)
	}

	t.Released = true
	for _, s := range t.Stations {
		c.byStation[s] = insertSorted(c.byStation[s], id)
	}

	return nil
}

// Delete removes an unreleased train. Released trains are permanent:
// orders may reference them.
func (c *Catalog) Delete(id string) error {
	const op = "catalog.Delete"

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.trains[id]
	if !ok {
		return fmt.Errorf("%s: %s: %w", op, id, repository.ErrNotFound)
	}

	if t.Released {
		return fmt.Errorf("%s: %s: %w", op, id, repository.ErrAlreadyReleased)
	}

	delete(c.trains, id)

	return nil
}

// Get returns a train whether or not it is released.
func (c *Catalog) Get(id string) (*domain.Train, error) {
	const op = "catalog.Get"

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.trains[id]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", op, id, repository.ErrNotFound)
	}

	return t, nil
}

// Released returns a train only if it has been released; unreleased
// trains do not exist as far as booking is concerned.
func (c *Catalog) Released(id string) (*domain.Train, error) {
	const op = "catalog.Released"

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.trains[id]
	if !ok || !t.Released {
		return nil, fmt.Errorf("%s: %s: %w", op, id, repository.ErrNotFound)
	}

	return t, nil
}

// TrainsThrough lists released trains calling at station, in ID order.
func (c *Catalog) TrainsThrough(station string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.byStation[station]
	out := make([]string, len(ids))
	copy(out, ids)

	return out
}

// Reset drops all trains.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.trains = make(map[string]*domain.Train)
	c.byStation = make(map[string][]string)
}

// Snapshot copies every train for the storage collaborator.
func (c *Catalog) Snapshot() []domain.Train {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Train, 0, len(c.trains))
	for _, t := range c.trains {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Restore replaces the catalog with a stored snapshot.
func (c *Catalog) Restore(trains []domain.Train) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.trains = make(map[string]*domain.Train, len(trains))
	c.byStation = make(map[string][]string)
	for i := range trains {
		t := trains[i]
		c.trains[t.ID] = &t
		if t.Released {
			for _, s := range t.Stations {
				c.byStation[s] = insertSorted(c.byStation[s], t.ID)
			}
		}
	}
}

func validate(t *domain.Train) error {
	if t.ID == "" || len(t.ID) > MaxTrainIDLen {
		return fmt.Errorf("train id %q: %w", t.ID, repository.ErrInvalidTrain)
	}

	if t.StationNum < MinStations || t.StationNum > MaxStations {
		return fmt.Errorf("station count %d: %w", t.StationNum, repository.ErrInvalidTrain)
	}

	if t.SeatNum < 1 {
		return fmt.Errorf("seat count %d: %w", t.SeatNum, repository.ErrInvalidTrain)
	}

	for _, s := range t.Stations {
		if s == "" || len(s) > MaxStationName {
			return fmt.Errorf("station name %q: %w", s, repository.ErrInvalidTrain)
		}
	}

	if len(t.Stations) != t.StationNum ||
		len(t.Prices) != t.StationNum-1 ||
		len(t.TravelTimes) != t.StationNum-1 ||
		len(t.StopoverTimes) != t.StationNum-2 {
		return fmt.Errorf("inconsistent array lengths: %w", repository.ErrInvalidTrain)
	}

	if t.SaleFirst > t.SaleLast ||
		!calendar.InSeason(t.SaleFirst) || !calendar.InSeason(t.SaleLast) {
		return fmt.Errorf("sale window [%d,%d]: %w", t.SaleFirst, t.SaleLast, repository.ErrInvalidTrain)
	}

	return nil
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
