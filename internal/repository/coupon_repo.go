package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCode is returned when creating a coupon whose code
// (case-insensitive) is already taken.
var ErrDuplicateCode = errors.New("coupon code already exists")

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

const couponColumns = `id, code, description, discount_type, discount_value,
	max_discount, min_order_value, max_total_uses, current_use_count,
	max_uses_per_user, is_active, start_date, expiry_date, created_at, updated_at`

func scanCoupon(row interface{ Scan(...any) error }) (*models.Coupon, error) {
	var c models.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MaxDiscount,
		&c.MinOrderValue,
		&c.MaxTotalUses,
		&c.CurrentUseCount,
		&c.MaxUsesPerUser,
		&c.IsActive,
		&c.StartDate,
		&c.ExpiryDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE lower(code) = lower($1)`
	return scanCoupon(r.db.QueryRowContext(ctx, query, code))
}

func (r *CouponRepo) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return scanCoupon(r.db.QueryRowContext(ctx, query, id))
}

func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, description, discount_type, discount_value,
			max_discount, min_order_value, max_total_uses, current_use_count,
			max_uses_per_user, is_active, start_date, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue,
		c.MaxDiscount, c.MinOrderValue, c.MaxTotalUses, c.CurrentUseCount,
		c.MaxUsesPerUser, c.IsActive, c.StartDate, c.ExpiryDate, c.CreatedAt, c.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateCode
	}
	return err
}

func (r *CouponRepo) Update(ctx context.Context, c *models.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $2, description = $3, discount_type = $4, discount_value = $5,
		    max_discount = $6, min_order_value = $7, max_total_uses = $8,
		    max_uses_per_user = $9, is_active = $10, start_date = $11,
		    expiry_date = $12, updated_at = $13
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue,
		c.MaxDiscount, c.MinOrderValue, c.MaxTotalUses,
		c.MaxUsesPerUser, c.IsActive, c.StartDate, c.ExpiryDate, time.Now().UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CouponRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CouponRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementUseCount bumps the redemption counter. The counter is only ever
// mutated through this and DecrementUseCount, never read-modify-written.
func (r *CouponRepo) IncrementUseCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET current_use_count = current_use_count + 1 WHERE id = $1`, id)
	return err
}

// DecrementUseCount reverses one redemption, floored at zero.
func (r *CouponRepo) DecrementUseCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET current_use_count = GREATEST(current_use_count - 1, 0) WHERE id = $1`, id)
	return err
}

// CouponFilter narrows the admin listing.
type CouponFilter struct {
	Search string // substring match on code
	Status string // "all", "active", "expired"
	Page   int
	Limit  int
}

func (r *CouponRepo) List(ctx context.Context, f CouponFilter) ([]models.CouponWithUsage, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += ` AND code ILIKE $1`
	}
	switch f.Status {
	case "active":
		where += ` AND is_active AND expiry_date >= NOW()`
	case "expired":
		where += ` AND expiry_date < NOW()`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + couponColumns + `,
		       (SELECT COUNT(*) FROM coupon_usages u WHERE u.coupon_id = coupons.id) AS total_used
		FROM coupons` + where + `
		ORDER BY created_at DESC`
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query += " LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.CouponWithUsage
	for rows.Next() {
		var c models.CouponWithUsage
		err := rows.Scan(
			&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue,
			&c.MaxDiscount, &c.MinOrderValue, &c.MaxTotalUses, &c.CurrentUseCount,
			&c.MaxUsesPerUser, &c.IsActive, &c.StartDate, &c.ExpiryDate,
			&c.CreatedAt, &c.UpdatedAt, &c.TotalUsed,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// ListAvailable returns coupons a buyer can currently apply.
func (r *CouponRepo) ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE is_active AND start_date <= $1 AND expiry_date >= $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CouponRepo) Stats(ctx context.Context) (*models.CouponStats, error) {
	var s models.CouponStats
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND expiry_date >= NOW()),
		       COUNT(*) FILTER (WHERE expiry_date < NOW()),
		       (SELECT COUNT(*) FROM coupon_usages)
		FROM coupons
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalCoupons, &s.ActiveCoupons, &s.ExpiredCoupons, &s.TotalUsages)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
