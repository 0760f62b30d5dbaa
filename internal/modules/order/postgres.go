package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/predobro/internal/modules/inventory"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
	"github.com/georgemunganga/predobro/internal/platform/database"
)

type postgresRepo struct {
	queries
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{queries: queries{db: db}, db: db}
}

func (r *postgresRepo) InTx(ctx context.Context, fn func(q Queries) error) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(queries{db: tx})
	})
}

// queries runs against either the pool or a transaction.
type queries struct{ db database.DBTX }

const (
	orderColumns = `o.id, o.customer_id, o.submitted, o.submitted_at, o.created_at, o.updated_at`
	lineColumns  = `oi.id, oi.order_id, oi.item_id, oi.quantity, oi.status, oi.created_at, oi.updated_at`
)

func (q queries) Stock() inventory.StockStore { return inventory.NewItemStore(q.db) }

func (q queries) ItemsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Item, error) {
	return inventory.NewItemStore(q.db).ItemsByID(ctx, ids)
}

func (q queries) FindCart(ctx context.Context, customerID uuid.UUID) (*Order, error) {
	o, err := scanOrder(q.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE o.customer_id = $1 AND NOT o.submitted
		FOR UPDATE`, customerID))
	if err != nil {
		return nil, err
	}
	return o, q.attachLines(ctx, []*Order{o}, uuid.Nil)
}

func (q queries) CreateCart(ctx context.Context, o *Order) (bool, error) {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, customer_id) VALUES ($1, $2)
		ON CONFLICT (customer_id) WHERE NOT submitted DO NOTHING
		RETURNING created_at, updated_at`, o.ID, o.CustomerID).Scan(&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if database.IsForeignKeyViolation(err) {
		return false, fmt.Errorf("customer %s: %w", o.CustomerID, apperr.ErrNotFound)
	}
	return err == nil, err
}

func (q queries) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(q.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return o, q.attachLines(ctx, []*Order{o}, uuid.Nil)
}

func (q queries) GetLine(ctx context.Context, id uuid.UUID) (*OrderItem, error) {
	line, err := scanLine(q.db.QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM order_items oi WHERE oi.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order line %s: %w", id, apperr.ErrNotFound)
	}
	return line, err
}

func (q queries) InsertLine(ctx context.Context, l *OrderItem) error {
	return q.db.QueryRowContext(ctx, `
		INSERT INTO order_items (id, order_id, item_id, quantity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		l.ID, l.OrderID, l.ItemID, l.Quantity, string(l.Status),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (q queries) UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return q.execOne(ctx, "order line", id,
		`UPDATE order_items SET quantity = $1, updated_at = NOW() WHERE id = $2`, quantity, id)
}

func (q queries) UpdateLineStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return q.execOne(ctx, "order line", id,
		`UPDATE order_items SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
}

func (q queries) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, "order line", id, `DELETE FROM order_items WHERE id = $1`, id)
}

func (q queries) TouchOrder(ctx context.Context, id uuid.UUID, at time.Time) error {
	return q.execOne(ctx, "order", id, `UPDATE orders SET updated_at = $1 WHERE id = $2`, at, id)
}

func (q queries) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return q.execOne(ctx, "order", id, `
		UPDATE orders SET submitted = TRUE, submitted_at = $1, updated_at = $1
		WHERE id = $2 AND NOT submitted`, at, id)
}

func (q queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	// order_items rows go with it through ON DELETE CASCADE.
	return q.execOne(ctx, "order", id, `DELETE FROM orders WHERE id = $1`, id)
}

func (q queries) ListSubmittedByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	orders, err := q.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE o.customer_id = $1 AND o.submitted
		ORDER BY o.submitted_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return orders, q.attachLines(ctx, orders, uuid.Nil)
}

func (q queries) ListSubmittedForStore(ctx context.Context, storeID uuid.UUID) ([]*Order, error) {
	orders, err := q.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE o.submitted AND EXISTS (
			SELECT 1 FROM order_items oi JOIN items i ON i.id = oi.item_id
			WHERE oi.order_id = o.id AND i.store_id = $1)
		ORDER BY o.created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	return orders, q.attachLines(ctx, orders, storeID)
}

func (q queries) ListStaleCarts(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id FROM orders WHERE NOT submitted AND updated_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (q queries) execOne(ctx context.Context, what string, id uuid.UUID, query string, args ...interface{}) error {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
	}
	return nil
}

func (q queries) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// attachLines loads the lines of orders in one query. A non-nil storeID
// keeps only lines whose item belongs to that store.
func (q queries) attachLines(ctx context.Context, orders []*Order, storeID uuid.UUID) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Order, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		o.Items = []*OrderItem{}
		byID[o.ID] = o
		ids[i] = o.ID.String()
	}

	query := `SELECT ` + lineColumns + ` FROM order_items oi
		WHERE oi.order_id = ANY($1::uuid[])`
	args := []interface{}{pq.Array(ids)}
	if storeID != uuid.Nil {
		query += ` AND oi.item_id IN (SELECT id FROM items WHERE store_id = $2)`
		args = append(args, storeID)
	}
	query += ` ORDER BY oi.created_at, oi.id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return err
		}
		o := byID[l.OrderID]
		o.Items = append(o.Items, l)
	}
	return rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var submittedAt sql.NullTime
	err := row.Scan(&o.ID, &o.CustomerID, &o.Submitted, &submittedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		o.SubmittedAt = &t
	}
	return o, nil
}

func scanLine(row rowScanner) (*OrderItem, error) {
	l := &OrderItem{}
	var status string
	if err := row.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Status = Status(status)
	return l, nil
}
