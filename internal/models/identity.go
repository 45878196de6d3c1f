package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller || r == RoleAdmin
}

// Identity is the already-authenticated caller, resolved by upstream
// middleware before any request reaches this service.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanManageOrders covers the seller/admin dashboard operations
// (listing all orders, updating statuses).
func (i Identity) CanManageOrders() bool {
	return i.Role == RoleAdmin || i.Role == RoleSeller
}
