package repository

import (
	"context"
	"database/sql"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

func (r *UsageRepo) Create(ctx context.Context, u *models.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (id, coupon_id, user_id, order_id, discount_amount, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.CouponID, u.UserID, u.OrderID, u.DiscountAmount, u.UsedAt)
	return err
}

func (r *UsageRepo) CountByCouponAndUser(ctx context.Context, couponID, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID).Scan(&n)
	return n, err
}

// DeleteByOrderAndCoupon removes the usage record for one (order, coupon)
// pair and reports whether one existed. Callers only reverse the coupon's
// counter when a record was actually deleted, which is what makes usage
// reversal idempotent.
func (r *UsageRepo) DeleteByOrderAndCoupon(ctx context.Context, orderID, couponID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM coupon_usages WHERE order_id = $1 AND coupon_id = $2`,
		orderID, couponID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
