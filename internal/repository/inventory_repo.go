package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

// InsufficientStockError names the offending product and how many units
// are actually left, so the buyer gets an actionable message.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q has insufficient stock: %d available, %d requested",
		e.Name, e.Available, e.Requested)
}

// ProductNotFoundError reports a line item referencing a product id the
// catalog does not have.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrNotFound }

type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

func (r *InventoryRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReserveStock decrements the product's available quantity by qty, but only
// if enough is left. The check and the write are a single conditional UPDATE,
// so concurrent reservations can never drive stock negative.
func (r *InventoryRepo) ReserveStock(ctx context.Context, productID string, qty int64) (*models.StockReservation, error) {
	var (
		name     string
		newStock int64
	)
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING name, stock
	`, productID, qty).Scan(&name, &newStock)

	if err == nil {
		return &models.StockReservation{
			ProductID: productID,
			Name:      name,
			Quantity:  qty,
			OldStock:  newStock + qty,
			NewStock:  newStock,
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// No row matched: either the product is gone or the stock is short.
	p, gErr := r.GetProduct(ctx, productID)
	if errors.Is(gErr, ErrNotFound) {
		return nil, &ProductNotFoundError{ProductID: productID}
	}
	if gErr != nil {
		return nil, gErr
	}
	return nil, &InsufficientStockError{
		ProductID: productID,
		Name:      p.Name,
		Available: p.Stock,
		Requested: qty,
	}
}

// ReleaseStock puts qty units back. It reports found=false when the product
// no longer exists; that is the caller's cue to log and move on rather than
// fail a compensation path over a deleted product.
func (r *InventoryRepo) ReleaseStock(ctx context.Context, productID string, qty int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id = $1`, productID, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
