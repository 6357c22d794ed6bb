package query_test

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
	"github.com/railbook/rail-go/internal/service/query"
)

type fixture struct {
	svc *query.Service
	cat *catalog.Catalog
	led *ledger.SeatLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := catalog.New()
	led := ledger.New()
	book := orderbook.New()
	proj := schedule.New(led)

	return &fixture{
		svc: query.New(cat, book, proj, nil, query.Config{}),
		cat: cat,
		led: led,
	}
}

func (f *fixture) addReleased(t *testing.T, tr *domain.Train) {
	t.Helper()
	require.NoError(t, f.cat.Create(tr))
	require.NoError(t, f.cat.Release(tr.ID))
}

func twoLeg(id string, stations []string, price, travel, start int) *domain.Train {
	return &domain.Train{
		ID:          id,
		StationNum:  2,
		SeatNum:     100,
		Stations:    stations,
		Prices:      []int{price},
		TravelTimes: []int{travel},
		StartTime:   start,
		SaleFirst:   0,
		SaleLast:    10,
		Type:        'G',
	}
}

func TestParseSortKey(t *testing.T) {
	for s, want := range map[string]query.SortKey{
		"":     query.SortByTime,
		"time": query.SortByTime,
		"cost": query.SortByCost,
	} {
		got, err := query.ParseSortKey(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := query.ParseSortKey("speed")
	assert.Error(t, err)
}

func TestQueryTrain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// unreleased trains are visible here, unlike in searches
	require.NoError(t, f.cat.Create(twoLeg("T1", []string{"alpha", "gamma"}, 100, 120, 8*60)))

	stops, err := f.svc.QueryTrain(ctx, "T1", 0)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "alpha", stops[0].Station)
	assert.Equal(t, 100, stops[0].SeatsLeft)

	_, err = f.svc.QueryTrain(ctx, "nope", 0)
	assert.ErrorIs(t, err, query.ErrTrainNotFound)
}

func TestQueryTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("quotes a released train", func(t *testing.T) {
		f := newFixture(t)
		f.addReleased(t, twoLeg("T1", []string{"alpha", "gamma"}, 150, 120, 8*60))

		q, err := f.svc.QueryTicket(ctx, "T1", 0, "alpha", "gamma")
		require.NoError(t, err)
		assert.Equal(t, 150, q.Price)
		assert.Equal(t, 100, q.Seats)
		assert.Equal(t, 120, q.Duration())
	})

	t.Run("hides unreleased trains", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.cat.Create(twoLeg("T1", []string{"alpha", "gamma"}, 150, 120, 8*60)))

		_, err := f.svc.QueryTicket(ctx, "T1", 0, "alpha", "gamma")
		assert.ErrorIs(t, err, query.ErrTrainNotFound)
	})

	t.Run("rejects a day outside the sale window", func(t *testing.T) {
		f := newFixture(t)
		f.addReleased(t, twoLeg("T1", []string{"alpha", "gamma"}, 150, 120, 8*60))

		_, err := f.svc.QueryTicket(ctx, "T1", 50, "alpha", "gamma")
		assert.ErrorIs(t, err, query.ErrOutOfSaleWindow)
	})

	t.Run("rejects stations off the route", func(t *testing.T) {
		f := newFixture(t)
		f.addReleased(t, twoLeg("T1", []string{"alpha", "gamma"}, 150, 120, 8*60))

		_, err := f.svc.QueryTicket(ctx, "T1", 0, "gamma", "alpha")
		assert.ErrorIs(t, err, query.ErrInvalidRoute)
	})
}

func TestSearchDirect(t *testing.T) {
	ctx := context.Background()

	newPair := func(t *testing.T) *fixture {
		f := newFixture(t)
		// fast but expensive vs slow but cheap
		f.addReleased(t, twoLeg("TA", []string{"alpha", "gamma"}, 400, 100, 8*60))
		f.addReleased(t, twoLeg("TB", []string{"alpha", "gamma"}, 300, 120, 9*60))
		return f
	}

	t.Run("sorts by elapsed time", func(t *testing.T) {
		f := newPair(t)

		quotes, err := f.svc.SearchDirect(ctx, "alpha", "gamma", 0, query.SortByTime)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, "TA", quotes[0].TrainID)
		assert.Equal(t, "TB", quotes[1].TrainID)
	})

	t.Run("sorts by price", func(t *testing.T) {
		f := newPair(t)

		quotes, err := f.svc.SearchDirect(ctx, "alpha", "gamma", 0, query.SortByCost)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, "TB", quotes[0].TrainID)
		assert.Equal(t, "TA", quotes[1].TrainID)
	})

	t.Run("returns an empty list for an unserved pair", func(t *testing.T) {
		f := newPair(t)

		quotes, err := f.svc.SearchDirect(ctx, "alpha", "nowhere", 0, query.SortByTime)
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("skips runs outside the sale window", func(t *testing.T) {
		f := newPair(t)

		quotes, err := f.svc.SearchDirect(ctx, "alpha", "gamma", 50, query.SortByTime)
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})
}

func TestQueryTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("joins two trains at a common station, waiting over midnight", func(t *testing.T) {
		f := newFixture(t)

		// arrives mid at 23:50 on day 0
		f.addReleased(t, twoLeg("TA", []string{"alpha", "mid"}, 100, 120, 21*60+50))
		// leaves mid at 00:30, so the earliest usable run is day 1
		f.addReleased(t, twoLeg("TB", []string{"mid", "omega"}, 50, 60, 30))

		plan, err := f.svc.QueryTransfer(ctx, "alpha", "omega", 0, query.SortByTime)
		require.NoError(t, err)

		assert.Equal(t, "mid", plan.Via)
		assert.Equal(t, "TA", plan.First.TrainID)
		assert.Equal(t, "TB", plan.Second.TrainID)
		assert.Equal(t, 1, plan.Second.DepDay)
		assert.Equal(t, 150, plan.TotalPrice())

		// 21:50 day 0 departure to 01:30 day 1 arrival
		assert.Equal(t, 220, plan.TotalTime())
	})

	t.Run("never uses one train for both legs", func(t *testing.T) {
		f := newFixture(t)

		f.addReleased(t, &domain.Train{
			ID:            "TA",
			StationNum:    3,
			SeatNum:       100,
			Stations:      []string{"alpha", "mid", "omega"},
			Prices:        []int{100, 100},
			TravelTimes:   []int{60, 60},
			StopoverTimes: []int{5},
			StartTime:     8 * 60,
			SaleFirst:     0,
			SaleLast:      10,
			Type:          'G',
		})

		_, err := f.svc.QueryTransfer(ctx, "alpha", "omega", 0, query.SortByTime)
		assert.ErrorIs(t, err, query.ErrTransferNotFound)
	})

	t.Run("fails when no itinerary exists", func(t *testing.T) {
		f := newFixture(t)
		f.addReleased(t, twoLeg("TA", []string{"alpha", "mid"}, 100, 120, 8*60))

		_, err := f.svc.QueryTransfer(ctx, "alpha", "omega", 0, query.SortByTime)
		assert.ErrorIs(t, err, query.ErrTransferNotFound)
	})

	t.Run("prefers the cheaper pair under cost sort", func(t *testing.T) {
		f := newFixture(t)

		f.addReleased(t, twoLeg("TA", []string{"alpha", "mid"}, 100, 60, 8*60))
		// two candidate second legs: TB is faster, TC is cheaper
		f.addReleased(t, twoLeg("TB", []string{"mid", "omega"}, 200, 30, 10*60))
		f.addReleased(t, twoLeg("TC", []string{"mid", "omega"}, 50, 120, 10*60))

		plan, err := f.svc.QueryTransfer(ctx, "alpha", "omega", 0, query.SortByCost)
		require.NoError(t, err)
		assert.Equal(t, "TC", plan.Second.TrainID)

		plan, err = f.svc.QueryTransfer(ctx, "alpha", "omega", 0, query.SortByTime)
		require.NoError(t, err)
		assert.Equal(t, "TB", plan.Second.TrainID)
	})
}
