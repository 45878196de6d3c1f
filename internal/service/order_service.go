package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
)

// OrderQueries is the read side of the order store.
type OrderQueries interface {
	List(ctx context.Context, f repository.OrderFilter) ([]models.Order, int, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}

// OrderService owns the post-placement lifecycle: the gateway callback,
// cancellation and admin status management. Its compensation steps are the
// same primitives the placement saga uses.
type OrderService struct {
	orders    OrderStore
	queries   OrderQueries
	inventory Inventory
	coupons   CouponLedger
}

func NewOrderService(orders OrderStore, queries OrderQueries, inventory Inventory, coupons CouponLedger) *OrderService {
	return &OrderService{orders: orders, queries: queries, inventory: inventory, coupons: coupons}
}

// HandlePaymentResult consumes the gateway's asynchronous verdict. The
// endpoint is unauthenticated (the gateway carries no buyer session), so an
// unknown orderId is a silent no-op; order ids are unguessable UUIDs.
func (s *OrderService) HandlePaymentResult(ctx context.Context, orderID string, success bool) error {
	if success {
		err := s.orders.MarkPaid(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	s.compensate(ctx, order)

	if order.PaymentMethod == models.PaymentStripe {
		// Payment never completed, so from the buyer's side this order never
		// existed; remove the record entirely.
		if err := s.orders.Delete(ctx, order.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("payment callback: delete order %s: %v", order.ID, err)
		}
		return nil
	}

	// A COD order is a real commitment: keep the record, mark it cancelled.
	now := time.Now().UTC()
	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, &now); err != nil &&
		!errors.Is(err, repository.ErrNotFound) {
		log.Printf("payment callback: cancel order %s: %v", order.ID, err)
	}
	return nil
}

// compensate releases every line item's stock and reverses the coupon usage
// if any. Best effort throughout; sub-errors are logged inside the ledgers.
func (s *OrderService) compensate(ctx context.Context, order *models.Order) {
	for _, it := range order.Items {
		s.inventory.Release(ctx, it.ProductID, it.Quantity)
	}
	if order.Coupon != nil {
		s.coupons.ReverseUsage(ctx, order.ID, order.Coupon.CouponID)
	}
}

// Cancel is the self-service (or admin) cancellation of an unpaid order.
func (s *OrderService) Cancel(ctx context.Context, orderID string, who models.Identity) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	if order.UserID != who.UserID && !who.IsAdmin() {
		return ErrForbidden
	}
	if order.PaymentConfirmed {
		return ErrAlreadyPaid
	}
	if !order.Status.Cancellable() {
		return ErrInvalidState
	}

	s.compensate(ctx, order)

	now := time.Now().UTC()
	return s.orders.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, &now)
}

// UpdateStatus is the dashboard transition. Cancelling a paid order is
// blocked (that needs a refund-aware path); cancelling an unpaid one applies
// the usual compensation. Other transitions are inventory-neutral.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, who models.Identity) error {
	if !who.CanManageOrders() {
		return ErrForbidden
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	if status == models.OrderStatusCancelled {
		if order.PaymentConfirmed {
			return ErrAlreadyPaid
		}
		if order.Status != models.OrderStatusCancelled {
			s.compensate(ctx, order)
		}
		now := time.Now().UTC()
		return s.orders.UpdateStatus(ctx, order.ID, status, &now)
	}

	return s.orders.UpdateStatus(ctx, order.ID, status, nil)
}

// Get returns one order to its owner or to staff.
func (s *OrderService) Get(ctx context.Context, orderID string, who models.Identity) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != who.UserID && !who.IsAdmin() {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, who models.Identity, status models.OrderStatus, page, limit int) ([]models.Order, int, error) {
	return s.queries.List(ctx, repository.OrderFilter{
		UserID: who.UserID,
		Status: status,
		Page:   page,
		Limit:  limit,
	})
}

// ListAll is the dashboard listing with aggregate stats.
func (s *OrderService) ListAll(ctx context.Context, who models.Identity, f repository.OrderFilter) ([]models.Order, int, *models.OrderStats, error) {
	if !who.CanManageOrders() {
		return nil, 0, nil, ErrForbidden
	}
	orders, total, err := s.queries.List(ctx, f)
	if err != nil {
		return nil, 0, nil, err
	}
	stats, err := s.queries.Stats(ctx)
	if err != nil {
		return nil, 0, nil, err
	}
	return orders, total, stats, nil
}
