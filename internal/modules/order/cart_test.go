package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

func TestAddToCartReusesTheSingleCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bread := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)

	var cartID uuid.UUID
	for i := 0; i < 3; i++ {
		res, err := e.svc.AddToCart(ctx, e.customer, bread)
		require.NoError(t, err)
		require.True(t, res.Added)
		if i == 0 {
			cartID = res.Cart.ID
		}
		assert.Equal(t, cartID, res.Cart.ID)
	}

	cart, err := e.svc.ViewCart(ctx, e.customer)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "7.5", cart.Total.String())
	assert.Equal(t, 2, e.repo.stock(bread))

	carts := 0
	for _, o := range e.repo.st.orders {
		if o.CustomerID == e.customer.ID && !o.Submitted {
			carts++
		}
	}
	assert.Equal(t, 1, carts)
}

func TestCartQuantityScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Yoghurt", "1.20", 5)

	var res *AddToCartResult
	var err error
	for i := 0; i < 3; i++ {
		res, err = e.svc.AddToCart(ctx, e.customer, item)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, e.repo.stock(item))
	lineID := res.Cart.Lines[0].ID

	cart, err := e.svc.UpdateQuantity(ctx, e.customer, lineID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, 4, e.repo.stock(item))

	_, err = e.svc.UpdateQuantity(ctx, e.customer, lineID, 10)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.Equal(t, 4, e.repo.stock(item))
	assert.Equal(t, 1, e.repo.st.lines[lineID].Quantity)
}

func TestAddToCartOutOfStockIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	soldOut := e.repo.addItem(e.storeA.ID, "Cake", "9.00", 0)
	milk := e.repo.addItem(e.storeA.ID, "Milk", "1.10", 1)

	res, err := e.svc.AddToCart(ctx, e.customer, soldOut)
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Nil(t, res.Cart)
	assert.Empty(t, e.repo.st.orders, "no cart is created for an out-of-stock item")

	_, err = e.svc.AddToCart(ctx, e.customer, milk)
	require.NoError(t, err)
	assert.Equal(t, 0, e.repo.stock(milk))

	res, err = e.svc.AddToCart(ctx, e.customer, milk)
	require.NoError(t, err)
	assert.False(t, res.Added)
	require.NotNil(t, res.Cart)
	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, 1, res.Cart.Lines[0].Quantity)
}

func TestAddToCartRejectsUnknownAndRemovedItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gone := e.repo.addItem(e.storeA.ID, "Old stock", "1.00", 4)
	e.repo.tombstone(gone)

	_, err := e.svc.AddToCart(ctx, e.customer, gone)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = e.svc.AddToCart(ctx, e.customer, uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, 4, e.repo.stock(gone))
}

func TestAddToCartForMissingCustomerIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)
	ghost := access.Actor{ID: uuid.New(), Role: access.RoleCustomer}

	_, err := e.svc.AddToCart(ctx, ghost, item)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, 5, e.repo.stock(item))
	for _, o := range e.repo.st.orders {
		assert.NotEqual(t, ghost.ID, o.CustomerID)
	}
}

func TestCartOperationsRequireCustomer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)

	_, err := e.svc.AddToCart(ctx, e.storeA, item)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	_, err = e.svc.ViewCart(ctx, e.storeA)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	_, err = e.svc.Checkout(ctx, e.storeB)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	assert.Equal(t, 5, e.repo.stock(item))
}

func TestRemoveAndZeroQuantityReleaseStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.repo.addItem(e.storeA.ID, "Apples", "0.40", 10)
	b := e.repo.addItem(e.storeB.ID, "Pears", "0.60", 10)

	for i := 0; i < 4; i++ {
		_, err := e.svc.AddToCart(ctx, e.customer, a)
		require.NoError(t, err)
	}
	res, err := e.svc.AddToCart(ctx, e.customer, b)
	require.NoError(t, err)
	require.Len(t, res.Cart.Lines, 2)
	lineA, lineB := res.Cart.Lines[0].ID, res.Cart.Lines[1].ID

	cart, err := e.svc.UpdateQuantity(ctx, e.customer, lineA, 0)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 10, e.repo.stock(a))

	cart, err = e.svc.RemoveFromCart(ctx, e.customer, lineB)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 10, e.repo.stock(b))
}

func TestCartLinesOfOtherCustomersAreNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 5)

	res, err := e.svc.AddToCart(ctx, e.customer, item)
	require.NoError(t, err)
	lineID := res.Cart.Lines[0].ID

	_, err = e.svc.UpdateQuantity(ctx, e.customer2, lineID, 3)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = e.svc.RemoveFromCart(ctx, e.customer2, lineID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, 4, e.repo.stock(item))
}

func TestViewCartAndCount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cart, err := e.svc.ViewCart(ctx, e.customer)
	require.NoError(t, err)
	assert.Nil(t, cart)
	n, err := e.svc.CartItemCount(ctx, e.customer)
	require.NoError(t, err)
	assert.Zero(t, n)

	a := e.repo.addItem(e.storeA.ID, "Apples", "0.40", 10)
	b := e.repo.addItem(e.storeB.ID, "Pears", "0.60", 10)
	for _, id := range []uuid.UUID{a, a, b} {
		_, err := e.svc.AddToCart(ctx, e.customer, id)
		require.NoError(t, err)
	}

	n, err = e.svc.CartItemCount(ctx, e.customer)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cart, err = e.svc.ViewCart(ctx, e.customer)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "1.4", cart.Total.String())
	assert.False(t, cart.Submitted)
}

func TestConcurrentAddToCartNeverOversells(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	item := e.repo.addItem(e.storeA.ID, "Limited", "5.00", 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.svc.AddToCart(ctx, e.customer, item)
			if err == nil && res.Added {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, added)
	assert.Equal(t, 0, e.repo.stock(item))
	n, err := e.svc.CartItemCount(ctx, e.customer)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
