package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/minhtran-dev/vnshop-order-service/internal/models"
	"github.com/minhtran-dev/vnshop-order-service/internal/payment"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
)

// In-memory stand-ins for the storage interfaces, so the services can be
// exercised without Postgres.

type memCoupons struct {
	mu   sync.Mutex
	byID map[string]*models.Coupon
}

func newMemCoupons() *memCoupons {
	return &memCoupons{byID: make(map[string]*models.Coupon)}
}

func (m *memCoupons) add(c models.Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.byID[c.ID] = &cp
}

func (m *memCoupons) get(id string) models.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

func (m *memCoupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCoupons) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCoupons) Create(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Code, c.Code) {
			return repository.ErrDuplicateCode
		}
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCoupons) Update(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCoupons) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memCoupons) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsActive = active
	return nil
}

func (m *memCoupons) IncrementUseCount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		c.CurrentUseCount++
	}
	return nil
}

func (m *memCoupons) DecrementUseCount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok && c.CurrentUseCount > 0 {
		c.CurrentUseCount--
	}
	return nil
}

func (m *memCoupons) List(_ context.Context, _ repository.CouponFilter) ([]models.CouponWithUsage, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CouponWithUsage
	for _, c := range m.byID {
		out = append(out, models.CouponWithUsage{Coupon: *c})
	}
	return out, len(out), nil
}

func (m *memCoupons) ListAvailable(_ context.Context, now time.Time) ([]models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Coupon
	for _, c := range m.byID {
		if c.IsActive && !now.Before(c.StartDate) && !now.After(c.ExpiryDate) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCoupons) Stats(_ context.Context) (*models.CouponStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.CouponStats{TotalCoupons: len(m.byID)}, nil
}

type memUsages struct {
	mu         sync.Mutex
	records    []models.CouponUsage
	failCreate error
}

func newMemUsages() *memUsages {
	return &memUsages{}
}

func (m *memUsages) Create(_ context.Context, u *models.CouponUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.records = append(m.records, *u)
	return nil
}

func (m *memUsages) CountByCouponAndUser(_ context.Context, couponID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.CouponID == couponID && r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memUsages) DeleteByOrderAndCoupon(_ context.Context, orderID, couponID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.OrderID == orderID && r.CouponID == couponID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memStock struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newMemStock(products ...models.Product) *memStock {
	m := &memStock{products: make(map[string]*models.Product)}
	for _, p := range products {
		cp := p
		m.products[p.ID] = &cp
	}
	return m
}

func (m *memStock) stock(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStock) ReserveStock(_ context.Context, productID string, qty int64) (*models.StockReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, &repository.ProductNotFoundError{ProductID: productID}
	}
	if p.Stock < qty {
		return nil, &repository.InsufficientStockError{
			ProductID: productID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: qty,
		}
	}
	old := p.Stock
	p.Stock -= qty
	return &models.StockReservation{
		ProductID: productID,
		Name:      p.Name,
		Quantity:  qty,
		OldStock:  old,
		NewStock:  p.Stock,
	}, nil
}

func (m *memStock) ReleaseStock(_ context.Context, productID string, qty int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return false, nil
	}
	p.Stock += qty
	return true, nil
}

type memOrders struct {
	mu     sync.Mutex
	byID   map[string]*models.Order
	failCr error
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[string]*models.Order)}
}

func (m *memOrders) add(o models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := o
	m.byID[o.ID] = &cp
}

func (m *memOrders) get(id string) (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return models.Order{}, false
	}
	return *o, true
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCr != nil {
		return m.failCr
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memOrders) MarkPaid(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentConfirmed = true
	o.Status = models.OrderStatusPlaced
	return nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, status models.OrderStatus, cancelledAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	if cancelledAt != nil {
		o.CancelledAt = cancelledAt
	}
	return nil
}

func (m *memOrders) List(_ context.Context, f repository.OrderFilter) ([]models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.byID {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *memOrders) Stats(_ context.Context) (*models.OrderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.OrderStats{TotalOrders: len(m.byID)}
	for _, o := range m.byID {
		s.TotalRevenue += o.Amount
		s.TotalDiscount += o.DiscountAmount
	}
	return s, nil
}

type memCart struct {
	mu      sync.Mutex
	cleared []string
	failErr error
}

func (m *memCart) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.cleared = append(m.cleared, userID)
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	failWith error
	requests []payment.SessionRequest
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.failWith != nil {
		return nil, g.failWith
	}
	return &payment.Session{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}
