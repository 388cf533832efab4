package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresRepository stores orders with items, shipping, payment and
// history in jsonb columns and seller ids in a text[] column.
type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `id, user_id, items, total, seller_ids, shipping_info, payment, status, status_history, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	getOrderQuery           = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersByUserQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	listOrdersBySellerQuery = `SELECT ` + orderColumns + ` FROM orders WHERE seller_ids @> ARRAY[$1]::text[] ORDER BY created_at DESC`
	listAllOrdersQuery      = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	appendStatusQuery       = `
		UPDATE orders
		SET status = $2, status_history = status_history || $3::jsonb, updated_at = $4
		WHERE id = $1
		RETURNING ` + orderColumns
	setPaymentStatusQuery = `
		UPDATE orders
		SET payment = jsonb_set(payment, '{paymentStatus}', to_jsonb($2::text)), updated_at = $3
		WHERE id = $1
		RETURNING ` + orderColumns
	deleteOrderQuery = `DELETE FROM orders WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o                                 Order
		items, shipping, payment, history []byte
		status                            string
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, pq.Array(&o.SellerIDs),
		&shipping, &payment, &status, &history, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	for _, part := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"items", items, &o.Items},
		{"shipping_info", shipping, &o.ShippingInfo},
		{"payment", payment, &o.Payment},
		{"status_history", history, &o.StatusHistory},
	} {
		if len(part.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(part.raw, part.dst); err != nil {
			return Order{}, fmt.Errorf("decode order %s %s: %w", o.ID, part.name, err)
		}
	}
	return o, nil
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, err
	}
	shipping, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return Order{}, err
	}
	payment, err := json.Marshal(o.Payment)
	if err != nil {
		return Order{}, err
	}
	history, err := json.Marshal(o.StatusHistory)
	if err != nil {
		return Order{}, err
	}

	_, err = r.db.ExecContext(ctx, insertOrderQuery,
		o.ID, o.UserID, string(items), o.Total.StringFixed(2), pq.Array(o.SellerIDs),
		string(shipping), string(payment), string(o.Status), string(history),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, listOrdersByUserQuery, userID)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return r.list(ctx, listOrdersBySellerQuery, sellerID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, listAllOrdersQuery)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// AppendStatus sets the status and appends the history entry in one UPDATE.
func (r *PostgresRepository) AppendStatus(ctx context.Context, id string, entry HistoryEntry) (Order, error) {
	raw, err := json.Marshal([]HistoryEntry{entry})
	if err != nil {
		return Order{}, err
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, appendStatusQuery, id, string(entry.Status), string(raw), entry.Timestamp))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *PostgresRepository) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus, at time.Time) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, setPaymentStatusQuery, id, string(status), at))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteOrderQuery, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
