package category

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery    = `SELECT id, name, created_at FROM categories ORDER BY lower(name)`
	getCategoryByIDQuery   = `SELECT id, name, created_at FROM categories WHERE id = $1`
	getCategoryByNameQuery = `SELECT id, name, created_at FROM categories WHERE lower(name) = lower($1)`
	insertCategoryQuery    = `INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`
	updateCategoryQuery    = `UPDATE categories SET name = $2 WHERE id = $1`
	deleteCategoryQuery    = `DELETE FROM categories WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Category, error) {
	return r.getOne(ctx, getCategoryByIDQuery, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (Category, error) {
	return r.getOne(ctx, getCategoryByNameQuery, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	if _, err := r.db.ExecContext(ctx, insertCategoryQuery, c.ID, c.Name, c.CreatedAt); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Category) (Category, error) {
	result, err := r.db.ExecContext(ctx, updateCategoryQuery, c.ID, c.Name)
	if err != nil {
		return Category{}, err
	}
	if n, err := result.RowsAffected(); err != nil {
		return Category{}, err
	} else if n == 0 {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, deleteCategoryQuery, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
