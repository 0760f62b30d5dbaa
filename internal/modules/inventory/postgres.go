package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/predobro/internal/platform/apperr"
	"github.com/georgemunganga/predobro/internal/platform/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const itemColumns = `id, store_id, name, description, price, quantity, COALESCE(image_url, ''),
	version, deleted_at, created_at, updated_at`

func (r *postgresRepo) CreateItem(ctx context.Context, it *Item) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO items (id, store_id, name, description, price, quantity, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING version, created_at, updated_at`,
		it.ID, it.StoreID, it.Name, it.Description, it.Price, it.Quantity, it.ImageURL,
	).Scan(&it.Version, &it.CreatedAt, &it.UpdatedAt)
}

func (r *postgresRepo) GetItem(ctx context.Context, storeID, id uuid.UUID) (*Item, error) {
	return scanItem(r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL`, id, storeID))
}

func (r *postgresRepo) ListItemsByStore(ctx context.Context, storeID uuid.UUID) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE store_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) UpdateItem(ctx context.Context, it *Item) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE items
		SET name = $1, description = $2, price = $3, quantity = $4, image_url = NULLIF($5, ''),
		    version = version + 1, updated_at = NOW()
		WHERE id = $6 AND store_id = $7 AND version = $8 AND deleted_at IS NULL
		RETURNING version, updated_at`,
		it.Name, it.Description, it.Price, it.Quantity, it.ImageURL, it.ID, it.StoreID, it.Version,
	).Scan(&it.Version, &it.UpdatedAt)
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var live bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM items WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL)`,
		it.ID, it.StoreID,
	).Scan(&live); err != nil {
		return err
	}
	if live {
		return fmt.Errorf("item %s changed since version %d: %w", it.ID, it.Version, apperr.ErrConflict)
	}
	return fmt.Errorf("item %s: %w", it.ID, apperr.ErrNotFound)
}

func (r *postgresRepo) SoftDeleteItem(ctx context.Context, storeID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE items SET deleted_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL`, id, storeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// ItemStore reads items by id and writes stock. It is bound to whatever db
// it is given, usually the caller's *sql.Tx, so stock moves commit or roll
// back together with the cart.
type ItemStore struct{ db database.DBTX }

func NewItemStore(db database.DBTX) *ItemStore { return &ItemStore{db: db} }

func (s *ItemStore) LoadStock(ctx context.Context, itemID uuid.UUID) (Stock, error) {
	var st Stock
	err := s.db.QueryRowContext(ctx,
		`SELECT quantity, version, deleted_at IS NOT NULL FROM items WHERE id = $1`, itemID).
		Scan(&st.Quantity, &st.Version, &st.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return Stock{}, fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
	}
	return st, err
}

func (s *ItemStore) CompareAndSetStock(ctx context.Context, itemID uuid.UUID, version int64, quantity int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET quantity = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3`, quantity, itemID, version)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ItemsByID returns the requested items keyed by id, tombstoned ones
// included. Unknown ids are absent from the map.
func (s *ItemStore) ItemsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Item, error) {
	out := make(map[uuid.UUID]*Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ANY($1::uuid[])`, uuidArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

func uuidArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

type rowScanner interface{ Scan(dest ...interface{}) error }

// scanItem reads one row selected with itemColumns.
func scanItem(row rowScanner) (*Item, error) {
	it := &Item{}
	var deletedAt sql.NullTime
	err := row.Scan(&it.ID, &it.StoreID, &it.Name, &it.Description, &it.Price, &it.Quantity,
		&it.ImageURL, &it.Version, &deletedAt, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		it.DeletedAt = &t
	}
	return it, nil
}
