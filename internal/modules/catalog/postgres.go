package catalog

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) ListAvailable(ctx context.Context) ([]*Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.description, i.price, i.quantity, COALESCE(i.image_url, ''),
		       u.id, u.full_name, u.address
		FROM items i
		JOIN users u ON u.id = i.store_id
		WHERE i.quantity > 0 AND i.deleted_at IS NULL
		ORDER BY u.full_name, u.id, i.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []*Listing{}
	for rows.Next() {
		l := &Listing{}
		if err := rows.Scan(&l.ItemID, &l.Name, &l.Description, &l.Price, &l.Quantity, &l.ImageURL,
			&l.StoreID, &l.StoreName, &l.StoreAddress); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
