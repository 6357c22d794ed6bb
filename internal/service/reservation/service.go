// Package reservation is the mutating half of the booking engine:
// optimistic purchase against the seat ledger, optional wait-queue when
// capacity is exhausted, and refund with FIFO re-settlement of that
// queue. Every check-then-act on one (train, day) key runs inside that
// key's critical section.
package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/ledger"
	"github.com/railbook/rail-go/internal/orderbook"
	redisx "github.com/railbook/rail-go/internal/redis"
	"github.com/railbook/rail-go/internal/repository"
	redisrepo "github.com/railbook/rail-go/internal/repository/redis"
	"github.com/railbook/rail-go/internal/schedule"
)

type Service struct {
	catalog *catalog.Catalog
	ledger  *ledger.SeatLedger
	book    *orderbook.OrderBook
	proj    *schedule.Projector
	cache   *redisrepo.Cache
	pubsub  *redisx.TrainsPubSub
	limiter *redisrepo.SlidingWindowLimiter
}

func New(
	cat *catalog.Catalog,
	led *ledger.SeatLedger,
	book *orderbook.OrderBook,
	proj *schedule.Projector,
	cache *redisrepo.Cache,
	pubsub *redisx.TrainsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
) *Service {
	return &Service{
		catalog: cat,
		ledger:  led,
		book:    book,
		proj:    proj,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
	}
}

// BuyResult reports the recorded order. Queued means no seats moved:
// the order waits for a refund to free capacity.
type BuyResult struct {
	Order  domain.Order
	Queued bool
}

// Buy purchases count seats from station from to station to, boarding
// on day (the day the passenger leaves the from station). With
// allowQueue the order is recorded pending when capacity is short;
// otherwise nothing is recorded.
//
// Returns:
//   - reservation.ErrTrainNotFound if the train is absent or unreleased.
//   - reservation.ErrInvalidRoute if from does not precede to on the route.
//   - reservation.ErrOutOfSaleWindow if the run is not on sale that day.
//   - reservation.ErrExceedsCapacity if count can never fit, even empty.
//   - reservation.ErrInsufficientSeats if capacity is short and queueing
//     was not requested.
func (s *Service) Buy(
	ctx context.Context,
	username, trainID string,
	day int,
	from, to string,
	count int,
	allowQueue bool,
	rlKey string,
) (BuyResult, error) {
	const op = "service.reservation.Buy"

	if count < 1 {
		return BuyResult{}, fmt.Errorf("%s: count must be positive", op)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return BuyResult{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return BuyResult{}, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	t, err := s.catalog.Released(trainID)
	if err != nil {
		return BuyResult{}, fmt.Errorf("%s: %w", op, ErrTrainNotFound)
	}

	fromIdx := t.StationIndex(from)
	toIdx := t.StationIndex(to)
	if fromIdx < 0 || toIdx < 0 || fromIdx >= toIdx {
		return BuyResult{}, fmt.Errorf("%s: %s->%s: %w", op, from, to, ErrInvalidRoute)
	}

	// Seat keys are per origin run; boarding mid-route on day means the
	// run that left the origin DepartureOffset days earlier.
	originDay := day - schedule.DepartureOffset(t, fromIdx)
	if originDay < t.SaleFirst || originDay > t.SaleLast {
		return BuyResult{}, fmt.Errorf("%s: day %d: %w", op, day, ErrOutOfSaleWindow)
	}

	// A request larger than the empty train is rejected outright, never
	// queued: no refund could ever make it fit.
	if count > t.SeatNum {
		return BuyResult{}, fmt.Errorf("%s: %d > %d: %w", op, count, t.SeatNum, ErrExceedsCapacity)
	}

	quote, err := s.proj.Quote(t, originDay, fromIdx, toIdx)
	if err != nil {
		return BuyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var res BuyResult

	err = s.ledger.Update(t.ID, originDay, t.Legs(), t.SeatNum, func(seats *ledger.Seats) error {
		order := domain.Order{
			Username: username,
			TrainID:  t.ID,
			Day:      originDay,
			FromIdx:  fromIdx,
			ToIdx:    toIdx,
			Count:    count,
			Price:    quote.Price,
		}

		if seats.Available(fromIdx, toIdx) >= count {
			if err := seats.Reserve(fromIdx, toIdx, count); err != nil {
				return err
			}
			order.Status = domain.OrderSuccess
			res.Order = s.book.Append(order)
			return nil
		}

		if !allowQueue {
			return fmt.Errorf("%w", ErrInsufficientSeats)
		}

		order.Status = domain.OrderPending
		res.Order = s.book.Append(order)
		res.Queued = true
		return nil
	})
	if err != nil {
		return BuyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !res.Queued {
		_ = s.cache.InvalidateTrainDay(ctx, t.ID, originDay)
		if s.pubsub != nil {
			_ = s.pubsub.PublishTrainChanged(ctx, t.ID, originDay)
		}
	}

	return res, nil
}

// Refund cancels one of the caller's orders. Ordinal 0 targets the
// newest order that is not already refunded; an explicit ordinal
// addresses the caller's history 1-based, most recent first, whatever
// its status. A refunded success order returns its seats and
// re-settles the wait-queue; a refunded pending order held no seats,
// so nothing else moves.
//
// Returns:
//   - reservation.ErrOrderNotFound if the caller has no such order.
//   - reservation.ErrAlreadyRefunded on a second refund of the same order.
func (s *Service) Refund(ctx context.Context, username string, ordinal int) (domain.Order, error) {
	const op = "service.reservation.Refund"

	target, err := s.refundTarget(username, ordinal)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	t, err := s.catalog.Get(target.TrainID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	var refunded domain.Order
	released := false

	err = s.ledger.Update(t.ID, target.Day, t.Legs(), t.SeatNum, func(seats *ledger.Seats) error {
		// Status may have changed since the lookup; the copy inside the
		// critical section is authoritative.
		cur, err := s.book.Get(target.ID)
		if err != nil {
			return fmt.Errorf("%w", ErrOrderNotFound)
		}

		if cur.Status == domain.OrderRefunded {
			return fmt.Errorf("%w", ErrAlreadyRefunded)
		}

		if err := s.book.SetStatus(cur.ID, domain.OrderRefunded); err != nil {
			return err
		}

		if cur.Status == domain.OrderSuccess {
			seats.Release(cur.FromIdx, cur.ToIdx, cur.Count)
			released = true
			s.resettle(seats, t.ID, target.Day)
		}

		cur.Status = domain.OrderRefunded
		refunded = cur
		return nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	if released {
		_ = s.cache.InvalidateTrainDay(ctx, t.ID, target.Day)
		if s.pubsub != nil {
			_ = s.pubsub.PublishTrainChanged(ctx, t.ID, target.Day)
		}
	}

	return refunded, nil
}

// refundTarget resolves which order a refund addresses. Without an
// explicit ordinal the newest refunded orders are skipped, so a user
// who just refunded can keep issuing bare refunds and walk backwards
// through their live orders.
func (s *Service) refundTarget(username string, ordinal int) (domain.Order, error) {
	if ordinal >= 1 {
		target, err := s.book.NthFor(username, ordinal)
		if err != nil {
			return domain.Order{}, ErrOrderNotFound
		}
		return target, nil
	}

	for _, o := range s.book.OrdersFor(username) {
		if o.Status != domain.OrderRefunded {
			return o, nil
		}
	}

	return domain.Order{}, ErrOrderNotFound
}

// resettle promotes queued orders in FIFO order after a refund freed
// seats. Strict head-of-line: the scan stops at the first pending
// order that still does not fit, so a later, smaller order can never
// overtake it.
func (s *Service) resettle(seats *ledger.Seats, trainID string, day int) {
	for _, q := range s.book.PendingQueue(trainID, day) {
		if seats.Available(q.FromIdx, q.ToIdx) < q.Count {
			break
		}
		if err := seats.Reserve(q.FromIdx, q.ToIdx, q.Count); err != nil {
			break
		}
		if err := s.book.SetStatus(q.ID, domain.OrderSuccess); err != nil {
			// The queue view only yields pending orders and this key is
			// locked, so the transition cannot legally fail; undo and stop.
			seats.Release(q.FromIdx, q.ToIdx, q.Count)
			break
		}
	}
}

// Reset drops all seat state and orders.
func (s *Service) Reset() {
	s.ledger.Reset()
	s.book.Reset()
}

// Snapshot returns every order in creation order, for persistence.
func (s *Service) Snapshot() []domain.Order {
	return s.book.Snapshot()
}

// RestoreFromOrders replays a stored order log: the book is rebuilt
// as-is and every success order re-reserves its segment, so ledger
// counters match the log without the queue ever being persisted.
func (s *Service) RestoreFromOrders(orders []domain.Order) error {
	const op = "service.reservation.RestoreFromOrders"

	s.ledger.Reset()
	s.book.Restore(orders)

	for _, o := range orders {
		if o.Status != domain.OrderSuccess {
			continue
		}

		t, err := s.catalog.Get(o.TrainID)
		if err != nil {
			return fmt.Errorf("%s: order %d: %w", op, o.ID, err)
		}

		err = s.ledger.Update(t.ID, o.Day, t.Legs(), t.SeatNum, func(seats *ledger.Seats) error {
			return seats.Reserve(o.FromIdx, o.ToIdx, o.Count)
		})
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientSeats) {
				return fmt.Errorf("%s: order %d oversells its run: %w", op, o.ID, err)
			}
			return fmt.Errorf("%s: order %d: %w", op, o.ID, err)
		}
	}

	return nil
}
