package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, user_id, items, original_amount, discount_amount,
	shipping_fee, amount, coupon, address, payment_method, payment_confirmed,
	status, placed_at, cancelled_at`

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	var coupon []byte
	if o.Coupon != nil {
		if coupon, err = json.Marshal(o.Coupon); err != nil {
			return fmt.Errorf("marshal coupon: %w", err)
		}
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		o.ID, o.UserID, items, o.OriginalAmount, o.DiscountAmount,
		o.ShippingFee, o.Amount, coupon, address, o.PaymentMethod,
		o.PaymentConfirmed, o.Status, o.PlacedAt, o.CancelledAt,
	)
	return err
}

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var (
		o       models.Order
		items   []byte
		address []byte
		coupon  []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &o.OriginalAmount, &o.DiscountAmount,
		&o.ShippingFee, &o.Amount, &coupon, &address, &o.PaymentMethod,
		&o.PaymentConfirmed, &o.Status, &o.PlacedAt, &o.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	if len(coupon) > 0 {
		o.Coupon = &models.CouponRef{}
		if err := json.Unmarshal(coupon, o.Coupon); err != nil {
			return nil, fmt.Errorf("unmarshal coupon: %w", err)
		}
	}
	return &o, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid confirms payment. Re-applying it to an already-confirmed order
// is the same write, which keeps the gateway callback idempotent.
func (r *OrderRepo) MarkPaid(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_confirmed = TRUE, status = $2 WHERE id = $1`,
		id, models.OrderStatusPlaced)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, cancelledAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, cancelled_at = COALESCE($3, cancelled_at) WHERE id = $1`,
		id, status, cancelledAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// OrderFilter narrows the admin listing.
type OrderFilter struct {
	UserID        string // restrict to one buyer's orders
	Status        models.OrderStatus
	PaymentStatus string // "paid", "unpaid" or ""
	Search        string // substring match on order id or address email
	Page          int
	Limit         int
}

func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	where := ` WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where += ` AND ` + cond + `$` + strconv.Itoa(len(args))
	}
	if f.UserID != "" {
		add(`user_id = `, f.UserID)
	}
	if f.Status != "" {
		add(`status = `, f.Status)
	}
	switch f.PaymentStatus {
	case "paid":
		where += ` AND payment_confirmed`
	case "unpaid":
		where += ` AND NOT payment_confirmed`
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (id ILIKE $` + n + ` OR address->>'email' ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY placed_at DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *OrderRepo) Stats(ctx context.Context) (*models.OrderStats, error) {
	var s models.OrderStats
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(amount), 0),
		       COALESCE(SUM(discount_amount), 0),
		       COALESCE(AVG(amount), 0)::BIGINT
		FROM orders
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalOrders, &s.TotalRevenue, &s.TotalDiscount, &s.AvgOrderValue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
