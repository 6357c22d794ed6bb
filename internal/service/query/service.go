// Package query is the read-only half of the booking engine: timetable
// projection, single-train quotes, direct-ticket search and the
// two-train transfer search. Nothing here mutates the ledger.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/orderbook"
	redisx "github.com/railbook/rail-go/internal/redis"
	"github.com/railbook/rail-go/internal/repository"
	redisrepo "github.com/railbook/rail-go/internal/repository/redis"
	"github.com/railbook/rail-go/internal/schedule"
)

// SortKey orders search results: total elapsed time or total price,
// ties broken by train ID.
type SortKey string

const (
	SortByTime SortKey = "time"
	SortByCost SortKey = "cost"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByTime, SortByCost, "":
		if s == "" {
			return SortByTime, nil
		}
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("query.ParseSortKey: %q", s)
	}
}

type Config struct {
	ScheduleTTL time.Duration
	SearchTTL   time.Duration
}

type Service struct {
	catalog *catalog.Catalog
	book    *orderbook.OrderBook
	proj    *schedule.Projector
	cache   *redisrepo.Cache
	cfg     Config
}

func New(
	cat *catalog.Catalog,
	book *orderbook.OrderBook,
	proj *schedule.Projector,
	cache *redisrepo.Cache,
	cfg Config,
) *Service {
	if cfg.ScheduleTTL <= 0 {
		cfg.ScheduleTTL = 60 * time.Second
	}

	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = 15 * time.Second
	}

	return &Service{
		catalog: cat,
		book:    book,
		proj:    proj,
		cache:   cache,
		cfg:     cfg,
	}
}

// QueryTrain projects the full timetable of one run. Works on
// unreleased trains too: this is the management/display view.
//
// Returns:
//   - query.ErrTrainNotFound if the train does not exist.
func (s *Service) QueryTrain(ctx context.Context, trainID string, day int) ([]domain.StationStop, error) {
	const op = "service.query.QueryTrain"

	stops, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyTrainSchedule(trainID, day),
		s.cfg.ScheduleTTL,
		func(ctx context.Context) ([]domain.StationStop, error) {
			t, err := s.catalog.Get(trainID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrTrainNotFound
				}
				return nil, err
			}

			return s.proj.Project(t, day), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stops, nil
}

// QueryTicket quotes one train for one segment: price and current
// availability, validated exactly like a purchase.
//
// Returns:
//   - query.ErrTrainNotFound if the train is absent or unreleased.
//   - query.ErrInvalidRoute if from does not precede to on the route.
//   - query.ErrOutOfSaleWindow if the run is not on sale that day.
func (s *Service) QueryTicket(ctx context.Context, trainID string, day int, from, to string) (domain.TicketQuote, error) {
	const op = "service.query.QueryTicket"

	t, err := s.catalog.Released(trainID)
	if err != nil {
		return domain.TicketQuote{}, fmt.Errorf("%s: %w", op, ErrTrainNotFound)
	}

	q, err := s.quoteSegment(t, day, from, to)
	if err != nil {
		return domain.TicketQuote{}, fmt.Errorf("%s: %w", op, err)
	}

	return q, nil
}

// SearchDirect lists every released train that carries a passenger
// from from to to boarding on day, best first by the sort key.
func (s *Service) SearchDirect(ctx context.Context, from, to string, day int, sort SortKey) ([]domain.TicketQuote, error) {
	const op = "service.query.SearchDirect"

	quotes, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyDirectSearch(from, to, day, string(sort)),
		s.cfg.SearchTTL,
		func(ctx context.Context) ([]domain.TicketQuote, error) {
			var out []domain.TicketQuote
			for _, id := range s.catalog.TrainsThrough(from) {
				t, err := s.catalog.Released(id)
				if err != nil {
					continue
				}
				q, err := s.quoteSegment(t, day, from, to)
				if err != nil {
					continue
				}
				out = append(out, q)
			}

			sortQuotes(out, sort)
			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return quotes, nil
}

// QueryTransfer finds the best two-train itinerary joined at a common
// intermediate station, the second train leaving the junction no
// earlier than the first arrives (waiting over days is allowed while
// the second run stays on sale). The same train cannot serve both
// legs.
//
// Returns:
//   - query.ErrTransferNotFound if no feasible pair exists.
func (s *Service) QueryTransfer(ctx context.Context, from, to string, day int, sort SortKey) (domain.TransferPlan, error) {
	const op = "service.query.QueryTransfer"

	var best *domain.TransferPlan

	for _, id1 := range s.catalog.TrainsThrough(from) {
		t1, err := s.catalog.Released(id1)
		if err != nil {
			continue
		}

		f1 := t1.StationIndex(from)
		if f1 < 0 || f1 >= t1.StationNum-1 {
			continue
		}

		origin1 := day - schedule.DepartureOffset(t1, f1)
		if origin1 < t1.SaleFirst || origin1 > t1.SaleLast {
			continue
		}

		for m1 := f1 + 1; m1 < t1.StationNum; m1++ {
			mid := t1.Stations[m1]

			q1, err := s.proj.Quote(t1, origin1, f1, m1)
			if err != nil {
				continue
			}

			for _, id2 := range s.catalog.TrainsThrough(mid) {
				if id2 == id1 {
					continue
				}

				t2, err := s.catalog.Released(id2)
				if err != nil {
					continue
				}

				m2 := t2.StationIndex(mid)
				to2 := t2.StationIndex(to)
				if m2 < 0 || to2 <= m2 {
					continue
				}

				origin2, ok := earliestConnection(t2, m2, q1.ArrDay, q1.ArrMinute)
				if !ok {
					continue
				}

				q2, err := s.proj.Quote(t2, origin2, m2, to2)
				if err != nil {
					continue
				}

				plan := domain.TransferPlan{First: q1, Second: q2, Via: mid}
				if best == nil || planLess(plan, *best, sort) {
					p := plan
					best = &p
				}
			}
		}
	}

	if best == nil {
		return domain.TransferPlan{}, fmt.Errorf("%s: %s->%s day %d: %w",
			op, from, to, day, ErrTransferNotFound)
	}

	return *best, nil
}

// OrdersFor lists a user's orders, most recent first.
func (s *Service) OrdersFor(ctx context.Context, username string) []domain.Order {
	return s.book.OrdersFor(username)
}

// OrderTicket pairs an order with the projected times of its segment.
type OrderTicket struct {
	Order domain.Order       `json:"order"`
	Quote domain.TicketQuote `json:"quote"`
}

// OrderTickets lists a user's orders, most recent first, each with its
// segment projection. Orders whose train has since vanished are
// skipped rather than failing the whole listing.
func (s *Service) OrderTickets(ctx context.Context, username string) ([]OrderTicket, error) {
	out := make([]OrderTicket, 0)

	for _, o := range s.book.OrdersFor(username) {
		t, err := s.catalog.Get(o.TrainID)
		if err != nil {
			continue
		}

		q, err := s.proj.Quote(t, o.Day, o.FromIdx, o.ToIdx)
		if err != nil {
			continue
		}

		out = append(out, OrderTicket{Order: o, Quote: q})
	}

	return out, nil
}

func (s *Service) quoteSegment(t *domain.Train, day int, from, to string) (domain.TicketQuote, error) {
	fromIdx := t.StationIndex(from)
	toIdx := t.StationIndex(to)
	if fromIdx < 0 || toIdx < 0 || fromIdx >= toIdx {
		return domain.TicketQuote{}, fmt.Errorf("%s->%s: %w", from, to, ErrInvalidRoute)
	}

	originDay := day - schedule.DepartureOffset(t, fromIdx)
	if originDay < t.SaleFirst || originDay > t.SaleLast {
		return domain.TicketQuote{}, fmt.Errorf("day %d: %w", day, ErrOutOfSaleWindow)
	}

	return s.proj.Quote(t, originDay, fromIdx, toIdx)
}

// earliestConnection picks the earliest origin day for t, within its
// sale window, whose departure at station idx is at or after the given
// arrival instant.
func earliestConnection(t *domain.Train, idx, arrDay, arrMinute int) (int, bool) {
	off, depMinute := schedule.DepartureAt(t, idx)

	// Smallest d with (d+off)*1440 + depMinute >= arrDay*1440 + arrMinute.
	need := arrDay*24*60 + arrMinute - depMinute
	d := ceilDiv(need, 24*60) - off

	if d < t.SaleFirst {
		d = t.SaleFirst
	}
	if d > t.SaleLast {
		return 0, false
	}

	return d, true
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

func sortQuotes(qs []domain.TicketQuote, key SortKey) {
	sort.Slice(qs, func(i, j int) bool {
		a, b := qs[i], qs[j]
		var pa, pb int
		if key == SortByCost {
			pa, pb = a.Price, b.Price
		} else {
			pa, pb = a.Duration(), b.Duration()
		}
		if pa != pb {
			return pa < pb
		}
		return a.TrainID < b.TrainID
	})
}

func planLess(a, b domain.TransferPlan, key SortKey) bool {
	var pa, pb int
	if key == SortByCost {
		pa, pb = a.TotalPrice(), b.TotalPrice()
	} else {
		pa, pb = a.TotalTime(), b.TotalTime()
	}
	if pa != pb {
		return pa < pb
	}
	if a.First.TrainID != b.First.TrainID {
		return a.First.TrainID < b.First.TrainID
	}
	return a.Second.TrainID < b.Second.TrainID
}
