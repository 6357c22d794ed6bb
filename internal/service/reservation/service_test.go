package reservation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/ledger"
	"github.com/railbook/rail-go/internal/orderbook"
	"github.com/railbook/rail-go/internal/schedule"
	"github.com/railbook/rail-go/internal/service/reservation"
)

type engine struct {
	svc  *reservation.Service
	cat  *catalog.Catalog
	led  *ledger.SeatLedger
	book *orderbook.OrderBook
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	cat := catalog.New()
	led := ledger.New()
	book := orderbook.New()
	proj := schedule.New(led)

	return &engine{
		svc:  reservation.New(cat, led, book, proj, nil, nil, nil),
		cat:  cat,
		led:  led,
		book: book,
	}
}

func (e *engine) addReleased(t *testing.T, tr *domain.Train) {
	t.Helper()
	require.NoError(t, e.cat.Create(tr))
	require.NoError(t, e.cat.Release(tr.ID))
}

func smallTrain(seats int) *domain.Train {
	return &domain.Train{
		ID:            "T1",
		StationNum:    3,
		SeatNum:       seats,
		Stations:      []string{"alpha", "beta", "gamma"},
		Prices:        []int{100, 200},
		TravelTimes:   []int{60, 60},
		StopoverTimes: []int{5},
		StartTime:     8 * 60,
		SaleFirst:     0,
		SaleLast:      30,
		Type:          'G',
	}
}

func TestBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves seats and records a success order", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		res, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 3, false, "")
		require.NoError(t, err)

		assert.False(t, res.Queued)
		assert.Equal(t, domain.OrderSuccess, res.Order.Status)
		assert.Equal(t, 300, res.Order.Price)
		assert.Equal(t, 900, res.Order.Total())

		assert.Equal(t, []int{7, 7}, e.led.Remaining("T1", 0, 2, 10))
	})

	t.Run("fails without queueing when seats are short", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(1))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		_, err = e.svc.Buy(ctx, "u2", "T1", 0, "alpha", "beta", 1, false, "")
		assert.ErrorIs(t, err, reservation.ErrInsufficientSeats)

		// nothing was recorded for the failed attempt
		assert.Empty(t, e.book.OrdersFor("u2"))
	})

	t.Run("queues when seats are short and queueing is allowed", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(1))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		res, err := e.svc.Buy(ctx, "u2", "T1", 0, "alpha", "beta", 1, true, "")
		require.NoError(t, err)

		assert.True(t, res.Queued)
		assert.Equal(t, domain.OrderPending, res.Order.Status)

		// a pending order holds no seats
		assert.Equal(t, []int{0, 0}, e.led.Remaining("T1", 0, 2, 1))
	})

	t.Run("rejects a count no refund could ever satisfy", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(5))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 6, true, "")
		assert.ErrorIs(t, err, reservation.ErrExceedsCapacity)
		assert.Empty(t, e.book.OrdersFor("u1"))
	})

	t.Run("treats an unreleased train as absent", func(t *testing.T) {
		e := newEngine(t)
		require.NoError(t, e.cat.Create(smallTrain(10)))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		assert.ErrorIs(t, err, reservation.ErrTrainNotFound)
	})

	t.Run("rejects a backwards segment", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "gamma", "alpha", 1, false, "")
		assert.ErrorIs(t, err, reservation.ErrInvalidRoute)
	})

	t.Run("rejects a day outside the sale window", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		_, err := e.svc.Buy(ctx, "u1", "T1", 40, "alpha", "gamma", 1, false, "")
		assert.ErrorIs(t, err, reservation.ErrOutOfSaleWindow)
	})

	t.Run("reports the sale window before capacity", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		// off-sale day and an oversized count at once
		_, err := e.svc.Buy(ctx, "u1", "T1", 40, "alpha", "gamma", 50, false, "")
		assert.ErrorIs(t, err, reservation.ErrOutOfSaleWindow)
	})

	t.Run("charges the bought segment only", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		res, err := e.svc.Buy(ctx, "u1", "T1", 0, "beta", "gamma", 2, false, "")
		require.NoError(t, err)

		assert.Equal(t, 200, res.Order.Price)
		assert.Equal(t, []int{10, 8}, e.led.Remaining("T1", 0, 2, 10))
	})
}

func TestBuy_MidRouteBoardingDay(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	// reaches beta after midnight, so boarding beta on day d rides the
	// run that left alpha on day d-1
	e.addReleased(t, &domain.Train{
		ID:            "N1",
		StationNum:    3,
		SeatNum:       10,
		Stations:      []string{"alpha", "beta", "gamma"},
		Prices:        []int{100, 200},
		TravelTimes:   []int{90, 60},
		StopoverTimes: []int{10},
		StartTime:     23 * 60,
		SaleFirst:     0,
		SaleLast:      30,
		Type:          'D',
	})

	res, err := e.svc.Buy(ctx, "u1", "N1", 6, "beta", "gamma", 1, false, "")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Order.Day)
	assert.Equal(t, []int{10, 9}, e.led.Remaining("N1", 5, 2, 10))

	// boarding beta on day 0 would need a run from before the window
	_, err = e.svc.Buy(ctx, "u2", "N1", 0, "beta", "gamma", 1, false, "")
	assert.ErrorIs(t, err, reservation.ErrOutOfSaleWindow)
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("returns seats and promotes the queue in FIFO order", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(1))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		q1, err := e.svc.Buy(ctx, "u2", "T1", 0, "beta", "gamma", 1, true, "")
		require.NoError(t, err)
		require.True(t, q1.Queued)

		q2, err := e.svc.Buy(ctx, "u3", "T1", 0, "alpha", "beta", 1, true, "")
		require.NoError(t, err)
		require.True(t, q2.Queued)

		refunded, err := e.svc.Refund(ctx, "u1", 1)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderRefunded, refunded.Status)

		// both queued orders fit on disjoint legs
		got, err := e.book.Get(q1.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderSuccess, got.Status)

		got, err = e.book.Get(q2.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderSuccess, got.Status)

		assert.Equal(t, []int{0, 0}, e.led.Remaining("T1", 0, 2, 1))
	})

	t.Run("stops at the first order that does not fit", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(1))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		// head of the queue needs both legs, the later orders only one
		head, err := e.svc.Buy(ctx, "u2", "T1", 0, "alpha", "gamma", 1, true, "")
		require.NoError(t, err)
		second, err := e.svc.Buy(ctx, "u3", "T1", 0, "alpha", "beta", 1, true, "")
		require.NoError(t, err)
		third, err := e.svc.Buy(ctx, "u4", "T1", 0, "beta", "gamma", 1, true, "")
		require.NoError(t, err)

		// the freed seat goes to the head; the next order no longer
		// fits and nothing behind it may overtake
		_, err = e.svc.Refund(ctx, "u1", 1)
		require.NoError(t, err)

		got, err := e.book.Get(head.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderSuccess, got.Status)

		got, err = e.book.Get(second.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, got.Status)

		got, err = e.book.Get(third.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, got.Status)
	})

	t.Run("refunding a pending order moves no seats", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(1))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		queued, err := e.svc.Buy(ctx, "u2", "T1", 0, "alpha", "beta", 1, true, "")
		require.NoError(t, err)
		require.True(t, queued.Queued)

		refunded, err := e.svc.Refund(ctx, "u2", 1)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderRefunded, refunded.Status)

		assert.Equal(t, []int{0, 0}, e.led.Remaining("T1", 0, 2, 1))
		assert.Empty(t, e.book.PendingQueue("T1", 0))
	})

	t.Run("a second refund of the same order fails", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		_, err = e.svc.Refund(ctx, "u1", 1)
		require.NoError(t, err)

		_, err = e.svc.Refund(ctx, "u1", 1)
		assert.ErrorIs(t, err, reservation.ErrAlreadyRefunded)

		// no seat drift from the failed second refund
		assert.Equal(t, []int{10, 10}, e.led.Remaining("T1", 0, 2, 10))
	})

	t.Run("addresses orders most recent first", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		first, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "beta", 1, false, "")
		require.NoError(t, err)
		_, err = e.svc.Buy(ctx, "u1", "T1", 0, "beta", "gamma", 1, false, "")
		require.NoError(t, err)

		// ordinal 2 is the older order
		refunded, err := e.svc.Refund(ctx, "u1", 2)
		require.NoError(t, err)
		assert.Equal(t, first.Order.ID, refunded.ID)
	})

	t.Run("fails when the user has no such order", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		_, err := e.svc.Refund(ctx, "nobody", 1)
		assert.ErrorIs(t, err, reservation.ErrOrderNotFound)
	})

	t.Run("targets the newest non-refunded order by default", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		older, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "beta", 1, false, "")
		require.NoError(t, err)
		newer, err := e.svc.Buy(ctx, "u1", "T1", 0, "beta", "gamma", 1, false, "")
		require.NoError(t, err)

		_, err = e.svc.Refund(ctx, "u1", 1)
		require.NoError(t, err)

		// the newest order is already refunded, so a bare refund falls
		// through to the older one
		refunded, err := e.svc.Refund(ctx, "u1", 0)
		require.NoError(t, err)
		assert.Equal(t, older.Order.ID, refunded.ID)
		assert.NotEqual(t, newer.Order.ID, refunded.ID)
	})

	t.Run("a bare refund fails once every order is refunded", func(t *testing.T) {
		e := newEngine(t)
		e.addReleased(t, smallTrain(10))

		_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 1, false, "")
		require.NoError(t, err)

		_, err = e.svc.Refund(ctx, "u1", 0)
		require.NoError(t, err)

		_, err = e.svc.Refund(ctx, "u1", 0)
		assert.ErrorIs(t, err, reservation.ErrOrderNotFound)
	})
}

func TestSeatAccounting(t *testing.T) {
	ctx := context.Background()

	e := newEngine(t)
	e.addReleased(t, smallTrain(3))

	// a mixed history: two buys, a queued order, a refund that promotes
	// it and a bare refund
	_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 2, false, "")
	require.NoError(t, err)
	_, err = e.svc.Buy(ctx, "u2", "T1", 0, "alpha", "beta", 1, false, "")
	require.NoError(t, err)
	queued, err := e.svc.Buy(ctx, "u3", "T1", 0, "alpha", "gamma", 2, true, "")
	require.NoError(t, err)
	require.True(t, queued.Queued)

	_, err = e.svc.Refund(ctx, "u1", 1)
	require.NoError(t, err)
	_, err = e.svc.Refund(ctx, "u2", 0)
	require.NoError(t, err)

	got, err := e.book.Get(queued.Order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderSuccess, got.Status)

	// leg by leg, seats held by success orders account for every seat
	// missing from the ledger
	remaining := e.led.Remaining("T1", 0, 2, 3)
	for leg := 0; leg < 2; leg++ {
		reserved := 0
		for _, o := range e.book.Snapshot() {
			if o.Status == domain.OrderSuccess && o.FromIdx <= leg && leg < o.ToIdx {
				reserved += o.Count
			}
		}
		assert.Equal(t, 3-remaining[leg], reserved, "leg %d", leg)
	}
}

func TestRestoreFromOrders(t *testing.T) {
	ctx := context.Background()

	e := newEngine(t)
	e.addReleased(t, smallTrain(2))

	_, err := e.svc.Buy(ctx, "u1", "T1", 0, "alpha", "gamma", 2, false, "")
	require.NoError(t, err)
	queued, err := e.svc.Buy(ctx, "u2", "T1", 0, "alpha", "beta", 1, true, "")
	require.NoError(t, err)
	require.True(t, queued.Queued)

	snap := e.book.Snapshot()

	// rebuild on a fresh ledger and book sharing the same catalog
	led := ledger.New()
	book := orderbook.New()
	restored := reservation.New(e.cat, led, book, schedule.New(led), nil, nil, nil)
	require.NoError(t, restored.RestoreFromOrders(snap))

	assert.Equal(t, []int{0, 0}, led.Remaining("T1", 0, 2, 2))

	// the queue view survives, so a refund still promotes the order
	_, err = restored.Refund(ctx, "u1", 1)
	require.NoError(t, err)

	got, err := book.Get(queued.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSuccess, got.Status)
}
