package address

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository stores addresses in the addresses table.
type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `id, user_id, label, name, phone, address, city, postal_code, country, created_at, updated_at`

	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at, id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	insertAddressQuery = `
		INSERT INTO addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	updateAddressQuery = `
		UPDATE addresses
		SET label = $3, name = $4, phone = $5, address = $6, city = $7, postal_code = $8, country = $9, updated_at = $10
		WHERE user_id = $1 AND id = $2
		RETURNING ` + addressColumns
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.Name, &a.Phone, &a.Address,
		&a.City, &a.PostalCode, &a.Country, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	_, err := r.db.ExecContext(ctx, insertAddressQuery, a.ID, a.UserID, a.Label, a.Name, a.Phone,
		a.Address, a.City, a.PostalCode, a.Country, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	row := r.db.QueryRowContext(ctx, updateAddressQuery, a.UserID, a.ID, a.Label, a.Name, a.Phone,
		a.Address, a.City, a.PostalCode, a.Country, a.UpdatedAt)
	out, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return out, err
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
