package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `id, name, price, stock, description, category_id, seller_id, image_data, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category_id = $1)
		  AND ($2 = '' OR seller_id = $2)
		ORDER BY created_at DESC, id
	`
	listProductsByIDsQuery = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	getProductByIDQuery    = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	countByCategoryQuery   = `SELECT COUNT(*) FROM products WHERE category_id = $1`

	insertProductQuery = `
		INSERT INTO products (id, name, price, stock, description, category_id, seller_id, image_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	updateProductQuery = `
		UPDATE products
		SET name = $2,
			price = $3,
			stock = $4,
			description = $5,
			category_id = $6,
			image_data = $7,
			updated_at = $8
		WHERE id = $1
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	return r.query(ctx, listProductsQuery, f.CategoryID, f.SellerID)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(ctx, listProductsByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countByCategoryQuery, categoryID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	_, err := r.db.ExecContext(ctx, insertProductQuery,
		p.ID,
		p.Name,
		p.Price,
		p.Stock,
		p.Description,
		p.Category,
		p.SellerID,
		p.ImageData,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	result, err := r.db.ExecContext(ctx, updateProductQuery,
		p.ID,
		p.Name,
		p.Price,
		p.Stock,
		p.Description,
		p.Category,
		p.ImageData,
		p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(scanner rowScanner) (Product, error) {
	var p Product
	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Description,
		&p.Category,
		&p.SellerID,
		&p.ImageData,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	return p, nil
}
