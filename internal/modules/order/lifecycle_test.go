package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

func fillCart(t *testing.T, e *env, actor access.Actor, items ...uuid.UUID) {
	t.Helper()
	for _, id := range items {
		res, err := e.svc.AddToCart(context.Background(), actor, id)
		require.NoError(t, err)
		require.True(t, res.Added)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Checkout(ctx, e.customer)
	assert.True(t, errors.Is(err, apperr.ErrEmptyCart))
	assert.Empty(t, e.repo.st.orders)

	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)
	fillCart(t, e, e.customer, item)
	cart, err := e.svc.ViewCart(ctx, e.customer)
	require.NoError(t, err)
	_, err = e.svc.RemoveFromCart(ctx, e.customer, cart.Lines[0].ID)
	require.NoError(t, err)

	_, err = e.svc.Checkout(ctx, e.customer)
	assert.True(t, errors.Is(err, apperr.ErrEmptyCart))
	history, err := e.svc.ListHistory(ctx, e.customer)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCheckoutSubmitsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)
	fillCart(t, e, e.customer, item, item)

	o, err := e.svc.Checkout(ctx, e.customer)
	require.NoError(t, err)
	assert.True(t, o.Submitted)
	require.NotNil(t, o.SubmittedAt)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, 3, e.repo.stock(item), "checkout does not touch stock")
	submittedAt := *e.repo.st.orders[o.ID].SubmittedAt

	_, err = e.svc.Checkout(ctx, e.customer)
	assert.True(t, errors.Is(err, apperr.ErrEmptyCart))
	assert.Equal(t, submittedAt, *e.repo.st.orders[o.ID].SubmittedAt)

	res, err := e.svc.AddToCart(ctx, e.customer, item)
	require.NoError(t, err)
	assert.NotEqual(t, o.ID, res.Cart.ID, "a new cart follows a submitted order")
	assert.Equal(t, 2, e.repo.st.lines[o.Lines[0].ID].Quantity, "submitted line untouched")
}

func TestDeleteOrderRestoresRecordedQuantities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.repo.addItem(e.storeA.ID, "Apples", "0.40", 10)
	b := e.repo.addItem(e.storeB.ID, "Pears", "0.60", 10)
	fillCart(t, e, e.customer, a, a, b, b, b)

	o, err := e.svc.Checkout(ctx, e.customer)
	require.NoError(t, err)
	assert.Equal(t, 8, e.repo.stock(a))
	assert.Equal(t, 7, e.repo.stock(b))

	require.NoError(t, e.svc.DeleteOrder(ctx, e.customer, o.ID))
	assert.Equal(t, 10, e.repo.stock(a))
	assert.Equal(t, 10, e.repo.stock(b))
	assert.Empty(t, e.repo.st.lines)

	_, err = e.svc.GetOrder(ctx, e.customer, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteOrderSkipsRemovedItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.repo.addItem(e.storeA.ID, "Apples", "0.40", 10)
	b := e.repo.addItem(e.storeB.ID, "Pears", "0.60", 10)
	fillCart(t, e, e.customer, a, b, b)
	o, err := e.svc.Checkout(ctx, e.customer)
	require.NoError(t, err)

	e.repo.tombstone(b)
	require.NoError(t, e.svc.DeleteOrder(ctx, e.customer, o.ID))
	assert.Equal(t, 10, e.repo.stock(a))
	assert.Equal(t, 8, e.repo.stock(b))
}

func TestDeleteOrderOnlyOwnSubmitted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)
	fillCart(t, e, e.customer, item)

	cart, err := e.svc.ViewCart(ctx, e.customer)
	require.NoError(t, err)
	err = e.svc.DeleteOrder(ctx, e.customer, cart.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "carts cannot be deleted as orders")

	o, err := e.svc.Checkout(ctx, e.customer)
	require.NoError(t, err)
	err = e.svc.DeleteOrder(ctx, e.customer2, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = e.svc.GetOrder(ctx, e.customer2, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, 4, e.repo.stock(item))
}

func TestListHistoryNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 10)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		fillCart(t, e, e.customer, item)
		o, err := e.svc.Checkout(ctx, e.customer)
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	fillCart(t, e, e.customer, item)

	history, err := e.svc.ListHistory(ctx, e.customer)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[0], history[2].ID)
	for _, o := range history {
		assert.True(t, o.Submitted)
	}

	other, err := e.svc.ListHistory(ctx, e.customer2)
	require.NoError(t, err)
	assert.Empty(t, other)
}
