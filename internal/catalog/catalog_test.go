package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/repository"
)

func sampleTrain(id string) *domain.Train {
	return &domain.Train{
		ID:            id,
		StationNum:    3,
		SeatNum:       100,
		Stations:      []string{"alpha", "beta", "gamma"},
		Prices:        []int{10, 20},
		TravelTimes:   []int{60, 90},
		StopoverTimes: []int{5},
		StartTime:     8 * 60,
		SaleFirst:     0,
		SaleLast:      30,
		Type:          'G',
	}
}

func TestCatalog_Create(t *testing.T) {
	t.Run("stores a valid train unreleased", func(t *testing.T) {
		c := catalog.New()
		require.NoError(t, c.Create(sampleTrain("T1")))

		got, err := c.Get("T1")
		require.NoError(t, err)
		assert.False(t, got.Released)

		_, err = c.Released("T1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("rejects a duplicate ID", func(t *testing.T) {
		c := catalog.New()
		require.NoError(t, c.Create(sampleTrain("T1")))

		err := c.Create(sampleTrain("T1"))
		assert.ErrorIs(t, err, repository.ErrDuplicateTrainID)
	})

	t.Run("rejects inconsistent arrays", func(t *testing.T) {
		tr := sampleTrain("T1")
		tr.Prices = []int{10}

		err := catalog.New().Create(tr)
		assert.ErrorIs(t, err, repository.ErrInvalidTrain)
	})

	t.Run("rejects a sale window outside the season", func(t *testing.T) {
		tr := sampleTrain("T1")
		tr.SaleLast = 120

		err := catalog.New().Create(tr)
		assert.ErrorIs(t, err, repository.ErrInvalidTrain)
	})

	t.Run("rejects an overlong train ID", func(t *testing.T) {
		tr := sampleTrain(strings.Repeat("x", catalog.MaxTrainIDLen+1))

		err := catalog.New().Create(tr)
		assert.ErrorIs(t, err, repository.ErrInvalidTrain)
	})

	t.Run("rejects an empty station name", func(t *testing.T) {
		tr := sampleTrain("T1")
		tr.Stations[1] = ""

		err := catalog.New().Create(tr)
		assert.ErrorIs(t, err, repository.ErrInvalidTrain)
	})
}

func TestCatalog_Release(t *testing.T) {
	t.Run("makes the train bookable and indexes its stations", func(t *testing.T) {
		c := catalog.New()
		require.NoError(t, c.Create(sampleTrain("T1")))
		require.NoError(t, c.Release("T1"))

		_, err := c.Released("T1")
		require.NoError(t, err)

		assert.Equal(t, []string{"T1"}, c.TrainsThrough("beta"))
	})

	t.Run("is one-way", func(t *testing.T) {
		c := catalog.New()
		require.NoError(t, c.Create(sampleTrain("T1")))
		require.NoError(t, c.Release("T1"))

		assert.ErrorIs(t, c.Release("T1"), repository.ErrAlreadyReleased)
	})

	t.Run("fails for a missing train", func(t *testing.T) {
		assert.ErrorIs(t, catalog.New().Release("nope"), repository.ErrNotFound)
	})

	t.Run("keeps station lists in ID order", func(t *testing.T) {
		c := catalog.New()
		for _, id := range []string{"T3", "T1", "T2"} {
			require.NoError(t, c.Create(sampleTrain(id)))
			require.NoError(t, c.Release(id))
		}

		assert.Equal(t, []string{"T1", "T2", "T3"}, c.TrainsThrough("alpha"))
	})
}

func TestCatalog_Delete(t *testing.T) {
	t.Run("removes an unreleased train", func(t *testing.T) {
		c := catalog.New()
		require.NoError(t, c.Create(sampleTrain("T1")))
		require.NoError(t, c.Delete("T1"))

		_, err := c.Get("T1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("refuses to delete a released train", func(t *testing.T) {
		c := catalog.New()
		require.NoError(t, c.Create(sampleTrain("T1")))
		require.NoError(t, c.Release("T1"))

		assert.ErrorIs(t, c.Delete("T1"), repository.ErrAlreadyReleased)
	})
}

func TestCatalog_Restore(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.Create(sampleTrain("T1")))
	require.NoError(t, c.Create(sampleTrain("T2")))
	require.NoError(t, c.Release("T1"))

	snap := c.Snapshot()
	require.Len(t, snap, 2)

	fresh := catalog.New()
	fresh.Restore(snap)

	_, err := fresh.Released("T1")
	require.NoError(t, err)
	_, err = fresh.Released("T2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// only released trains are searchable
	assert.Equal(t, []string{"T1"}, fresh.TrainsThrough("alpha"))
}
