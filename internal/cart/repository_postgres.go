package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PostgresRepository keeps the raw cart document in a jsonb column. Used
// when no Redis is configured.
type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery    = `SELECT items FROM carts WHERE user_id = $1`
	upsertCartQuery = `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
	`
	clearCartQuery = `DELETE FROM carts WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, getCartQuery, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *PostgresRepository) Put(ctx context.Context, userID string, raw json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, upsertCartQuery, userID, string(raw), time.Now().UTC())
	return err
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, clearCartQuery, userID)
	return err
}
