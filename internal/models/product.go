package models

// Product is the slice of the catalog the inventory ledger owns:
// identity, display name and the available stock count.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
}

// StockReservation is the before/after snapshot of one conditional
// decrement; callers keep these to build a rollback list.
type StockReservation struct {
	ProductID string
	Name      string
	Quantity  int64
	OldStock  int64
	NewStock  int64
}
