package service

import (
	"context"
	"log"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
)

// StockStore is the storage contract of the inventory ledger. Both
// operations are single conditional updates; no caller is allowed to
// read-then-separately-write a stock count.
type StockStore interface {
	ReserveStock(ctx context.Context, productID string, qty int64) (*models.StockReservation, error)
	ReleaseStock(ctx context.Context, productID string, qty int64) (bool, error)
}

// InventoryService is the inventory ledger: conditional reservations on the
// way in, tolerant releases on every compensation path.
type InventoryService struct {
	stock StockStore
}

func NewInventoryService(stock StockStore) *InventoryService {
	return &InventoryService{stock: stock}
}

// Reserve decrements availability or fails with no partial effect.
func (s *InventoryService) Reserve(ctx context.Context, productID string, qty int64) (*models.StockReservation, error) {
	return s.stock.ReserveStock(ctx, productID, qty)
}

// Release restores qty units. It never fails: a missing product (deleted
// since the order was placed) or a storage error is logged and skipped,
// because every caller is a compensation path that must run to completion.
func (s *InventoryService) Release(ctx context.Context, productID string, qty int64) {
	found, err := s.stock.ReleaseStock(ctx, productID, qty)
	if err != nil {
		log.Printf("stock release: product %s qty %d: %v", productID, qty, err)
		return
	}
	if !found {
		log.Printf("stock release: product %s no longer exists, skipping restore of %d", productID, qty)
	}
}
