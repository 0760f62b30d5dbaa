package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/modules/inventory"
	"github.com/georgemunganga/predobro/internal/modules/user"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

// memState holds the rows. Orders are stored without lines; lines live in
// their own table like they do in Postgres.
type memState struct {
	orders map[uuid.UUID]*Order
	lines  map[uuid.UUID]*OrderItem
	items  map[uuid.UUID]*inventory.Item
}

func (s *memState) clone() *memState {
	c := &memState{
		orders: make(map[uuid.UUID]*Order, len(s.orders)),
		lines:  make(map[uuid.UUID]*OrderItem, len(s.lines)),
		items:  make(map[uuid.UUID]*inventory.Item, len(s.items)),
	}
	for k, v := range s.orders {
		cp := *v
		c.orders[k] = &cp
	}
	for k, v := range s.lines {
		cp := *v
		c.lines[k] = &cp
	}
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	return c
}

type memQueries struct {
	st    *memState
	clock *fakeClock
}

// memoryRepo serializes transactions with a mutex and restores a snapshot
// when fn fails.
type memoryRepo struct {
	memQueries
	mu sync.Mutex
}

func newMemoryRepo(clock *fakeClock) *memoryRepo {
	return &memoryRepo{memQueries: memQueries{
		st: &memState{
			orders: map[uuid.UUID]*Order{},
			lines:  map[uuid.UUID]*OrderItem{},
			items:  map[uuid.UUID]*inventory.Item{},
		},
		clock: clock,
	}}
}

func (m *memoryRepo) InTx(_ context.Context, fn func(q Queries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.st.clone()
	if err := fn(m.memQueries); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

func (m *memoryRepo) addItem(storeID uuid.UUID, name, price string, qty int) uuid.UUID {
	id := uuid.New()
	m.st.items[id] = &inventory.Item{
		ID:       id,
		StoreID:  storeID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
	return id
}

func (m *memoryRepo) stock(itemID uuid.UUID) int { return m.st.items[itemID].Quantity }

func (m *memoryRepo) tombstone(itemID uuid.UUID) {
	now := m.clock.Now()
	m.st.items[itemID].DeletedAt = &now
}

func (q memQueries) Stock() inventory.StockStore { return q }

func (q memQueries) LoadStock(_ context.Context, id uuid.UUID) (inventory.Stock, error) {
	it, ok := q.st.items[id]
	if !ok {
		return inventory.Stock{}, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	return inventory.Stock{Quantity: it.Quantity, Version: it.Version, Deleted: it.Deleted()}, nil
}

func (q memQueries) CompareAndSetStock(_ context.Context, id uuid.UUID, version int64, qty int) (bool, error) {
	it := q.st.items[id]
	if it.Version != version {
		return false, nil
	}
	if qty < 0 {
		return false, fmt.Errorf("items_quantity_check violated")
	}
	it.Quantity = qty
	it.Version++
	return true, nil
}

func (q memQueries) ItemsByID(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Item, error) {
	out := map[uuid.UUID]*inventory.Item{}
	for _, id := range ids {
		if it, ok := q.st.items[id]; ok {
			cp := *it
			out[id] = &cp
		}
	}
	return out, nil
}

// withLines copies o and attaches its lines, optionally only storeID's.
func (q memQueries) withLines(o *Order, storeID uuid.UUID) *Order {
	cp := *o
	cp.Items = []*OrderItem{}
	for _, l := range q.st.lines {
		if l.OrderID != o.ID {
			continue
		}
		if storeID != uuid.Nil && q.st.items[l.ItemID].StoreID != storeID {
			continue
		}
		lc := *l
		cp.Items = append(cp.Items, &lc)
	}
	sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].CreatedAt.Before(cp.Items[j].CreatedAt) })
	return &cp
}

func (q memQueries) FindCart(_ context.Context, customerID uuid.UUID) (*Order, error) {
	for _, o := range q.st.orders {
		if o.CustomerID == customerID && !o.Submitted {
			return q.withLines(o, uuid.Nil), nil
		}
	}
	return nil, fmt.Errorf("order: %w", apperr.ErrNotFound)
}

func (q memQueries) CreateCart(_ context.Context, o *Order) (bool, error) {
	for _, existing := range q.st.orders {
		if existing.CustomerID == o.CustomerID && !existing.Submitted {
			return false, nil
		}
	}
	now := q.clock.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	cp.Items = nil
	q.st.orders[o.ID] = &cp
	return true, nil
}

func (q memQueries) GetOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := q.st.orders[id]
	if !ok {
		return nil, fmt.Errorf("order: %w", apperr.ErrNotFound)
	}
	return q.withLines(o, uuid.Nil), nil
}

func (q memQueries) GetLine(_ context.Context, id uuid.UUID) (*OrderItem, error) {
	l, ok := q.st.lines[id]
	if !ok {
		return nil, fmt.Errorf("order line %s: %w", id, apperr.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (q memQueries) InsertLine(_ context.Context, l *OrderItem) error {
	for _, existing := range q.st.lines {
		if existing.OrderID == l.OrderID && existing.ItemID == l.ItemID {
			return fmt.Errorf("duplicate line for item %s", l.ItemID)
		}
	}
	now := q.clock.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	cp := *l
	q.st.lines[l.ID] = &cp
	return nil
}

func (q memQueries) line(id uuid.UUID) (*OrderItem, error) {
	l, ok := q.st.lines[id]
	if !ok {
		return nil, fmt.Errorf("order line %s: %w", id, apperr.ErrNotFound)
	}
	return l, nil
}

func (q memQueries) UpdateLineQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	l, err := q.line(id)
	if err != nil {
		return err
	}
	l.Quantity = quantity
	return nil
}

func (q memQueries) UpdateLineStatus(_ context.Context, id uuid.UUID, status Status) error {
	l, err := q.line(id)
	if err != nil {
		return err
	}
	l.Status = status
	return nil
}

func (q memQueries) DeleteLine(_ context.Context, id uuid.UUID) error {
	if _, err := q.line(id); err != nil {
		return err
	}
	delete(q.st.lines, id)
	return nil
}

func (q memQueries) TouchOrder(_ context.Context, id uuid.UUID, at time.Time) error {
	o, ok := q.st.orders[id]
	if !ok {
		return fmt.Errorf("order: %w", apperr.ErrNotFound)
	}
	o.UpdatedAt = at
	return nil
}

func (q memQueries) MarkSubmitted(_ context.Context, id uuid.UUID, at time.Time) error {
	o, ok := q.st.orders[id]
	if !ok || o.Submitted {
		return fmt.Errorf("order: %w", apperr.ErrNotFound)
	}
	o.Submitted = true
	o.SubmittedAt = &at
	o.UpdatedAt = at
	return nil
}

func (q memQueries) DeleteOrder(_ context.Context, id uuid.UUID) error {
	if _, ok := q.st.orders[id]; !ok {
		return fmt.Errorf("order: %w", apperr.ErrNotFound)
	}
	delete(q.st.orders, id)
	for lid, l := range q.st.lines {
		if l.OrderID == id {
			delete(q.st.lines, lid)
		}
	}
	return nil
}

func (q memQueries) ListSubmittedByCustomer(_ context.Context, customerID uuid.UUID) ([]*Order, error) {
	out := []*Order{}
	for _, o := range q.st.orders {
		if o.CustomerID == customerID && o.Submitted {
			out = append(out, q.withLines(o, uuid.Nil))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(*out[j].SubmittedAt) })
	return out, nil
}

func (q memQueries) ListSubmittedForStore(_ context.Context, storeID uuid.UUID) ([]*Order, error) {
	out := []*Order{}
	for _, o := range q.st.orders {
		if !o.Submitted {
			continue
		}
		if withStore := q.withLines(o, storeID); len(withStore.Items) > 0 {
			out = append(out, withStore)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (q memQueries) ListStaleCarts(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, o := range q.st.orders {
		if !o.Submitted && o.UpdatedAt.Before(cutoff) {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

// fakeClock advances one second on every reading so timestamps are
// strictly ordered.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type directory map[uuid.UUID]*user.User

func (d directory) ListUsersByID(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*user.User, error) {
	out := map[uuid.UUID]*user.User{}
	for _, id := range ids {
		if u, ok := d[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type env struct {
	svc       *service
	repo      *memoryRepo
	clock     *fakeClock
	customer  access.Actor
	customer2 access.Actor
	storeA    access.Actor
	storeB    access.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := newMemoryRepo(clock)
	e := &env{
		repo:      repo,
		clock:     clock,
		customer:  access.Actor{ID: uuid.New(), Role: access.RoleCustomer},
		customer2: access.Actor{ID: uuid.New(), Role: access.RoleCustomer},
		storeA:    access.Actor{ID: uuid.New(), Role: access.RoleStore},
		storeB:    access.Actor{ID: uuid.New(), Role: access.RoleStore},
	}
	dir := directory{
		e.customer.ID:  {ID: e.customer.ID, FullName: "Ana Petrova", Email: "ana@example.com"},
		e.customer2.ID: {ID: e.customer2.ID, FullName: "Ivan Georgiev", Email: "ivan@example.com"},
	}
	e.svc = NewService(repo, dir).(*service)
	e.svc.now = clock.Now
	return e
}
