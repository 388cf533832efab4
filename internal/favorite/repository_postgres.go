package favorite

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepository keeps favorites in a composite-key table.
type PostgresRepository struct {
	db *sql.DB
}

const (
	insertFavoriteQuery = `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	deleteFavoriteQuery = `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`
	listFavoritesQuery  = `SELECT product_id FROM favorites WHERE user_id = $1 ORDER BY created_at, product_id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID string) error {
	result, err := r.db.ExecContext(ctx, insertFavoriteQuery, userID, productID, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyFavorite
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID string) error {
	result, err := r.db.ExecContext(ctx, deleteFavoriteQuery, userID, productID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFavorite
	}
	return nil
}

func (r *PostgresRepository) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
