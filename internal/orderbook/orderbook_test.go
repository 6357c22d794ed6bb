package orderbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/orderbook"
	"github.com/railbook/rail-go/internal/repository"
)

func order(user, train string, day int, status domain.OrderStatus) domain.Order {
	return domain.Order{
		Username: user,
		TrainID:  train,
		Day:      day,
		FromIdx:  0,
		ToIdx:    1,
		Count:    1,
		Price:    10,
		Status:   status,
	}
}

func TestOrderBook_Append(t *testing.T) {
	b := orderbook.New()

	first := b.Append(order("u1", "T1", 0, domain.OrderSuccess))
	second := b.Append(order("u1", "T1", 0, domain.OrderPending))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	got, err := b.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestOrderBook_SetStatus(t *testing.T) {
	t.Run("allows the legal transitions", func(t *testing.T) {
		b := orderbook.New()

		p := b.Append(order("u1", "T1", 0, domain.OrderPending))
		require.NoError(t, b.SetStatus(p.ID, domain.OrderSuccess))
		require.NoError(t, b.SetStatus(p.ID, domain.OrderRefunded))

		q := b.Append(order("u1", "T1", 0, domain.OrderPending))
		require.NoError(t, b.SetStatus(q.ID, domain.OrderRefunded))
	})

	t.Run("rejects everything else", func(t *testing.T) {
		b := orderbook.New()

		o := b.Append(order("u1", "T1", 0, domain.OrderSuccess))
		require.NoError(t, b.SetStatus(o.ID, domain.OrderRefunded))

		// refunded is terminal
		err := b.SetStatus(o.ID, domain.OrderSuccess)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
		err = b.SetStatus(o.ID, domain.OrderPending)
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	})

	t.Run("fails for an unknown order", func(t *testing.T) {
		err := orderbook.New().SetStatus(99, domain.OrderRefunded)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestOrderBook_OrdersFor(t *testing.T) {
	b := orderbook.New()

	b.Append(order("u1", "T1", 0, domain.OrderSuccess))
	b.Append(order("u2", "T1", 0, domain.OrderSuccess))
	b.Append(order("u1", "T2", 1, domain.OrderSuccess))

	got := b.OrdersFor("u1")
	require.Len(t, got, 2)
	assert.Equal(t, "T2", got[0].TrainID) // most recent first
	assert.Equal(t, "T1", got[1].TrainID)

	assert.Empty(t, b.OrdersFor("nobody"))
}

func TestOrderBook_NthFor(t *testing.T) {
	b := orderbook.New()

	oldest := b.Append(order("u1", "T1", 0, domain.OrderSuccess))
	newest := b.Append(order("u1", "T2", 0, domain.OrderSuccess))

	got, err := b.NthFor("u1", 1)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, got.ID)

	got, err = b.NthFor("u1", 2)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, got.ID)

	_, err = b.NthFor("u1", 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = b.NthFor("u1", 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderBook_PendingQueue(t *testing.T) {
	b := orderbook.New()

	a := b.Append(order("u1", "T1", 0, domain.OrderPending))
	b.Append(order("u2", "T1", 0, domain.OrderSuccess))
	c := b.Append(order("u3", "T1", 0, domain.OrderPending))
	b.Append(order("u4", "T1", 1, domain.OrderPending)) // other day

	q := b.PendingQueue("T1", 0)
	require.Len(t, q, 2)
	assert.Equal(t, a.ID, q[0].ID) // oldest first
	assert.Equal(t, c.ID, q[1].ID)

	// the queue is a view: a promotion drops the order from it
	require.NoError(t, b.SetStatus(a.ID, domain.OrderSuccess))
	q = b.PendingQueue("T1", 0)
	require.Len(t, q, 1)
	assert.Equal(t, c.ID, q[0].ID)
}

func TestOrderBook_Restore(t *testing.T) {
	b := orderbook.New()

	b.Append(order("u1", "T1", 0, domain.OrderSuccess))
	pending := b.Append(order("u2", "T1", 0, domain.OrderPending))

	snap := b.Snapshot()
	require.Len(t, snap, 2)

	fresh := orderbook.New()
	fresh.Restore(snap)

	// queue view comes back from the log alone
	q := fresh.PendingQueue("T1", 0)
	require.Len(t, q, 1)
	assert.Equal(t, pending.ID, q[0].ID)

	// sequence resumes past the highest stored ID
	next := fresh.Append(order("u3", "T1", 0, domain.OrderSuccess))
	assert.Equal(t, int64(3), next.ID)
}
