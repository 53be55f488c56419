package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a barcode or search lookup matches no product.
// It marks a normal negative lookup, not a transport failure.
var ErrNotFound = errors.New("product not found")

// DefaultReorderPoint is the low-stock threshold applied to products that do
// not carry their own reorder point.
const DefaultReorderPoint = 5

// Product represents a catalog item. Barcode is the unique lookup key used by
// the scan workflow; Quantity is the stock level reported by the backend at
// fetch time.
type Product struct {
	ID           string
	Name         string
	Barcode      string
	Price        decimal.Decimal
	Quantity     int
	ReorderPoint int
	CategoryID   string
	Favorite     bool
	ImageURL     string
}

// Validate checks the fields this client is responsible for before sending a
// product to the backend.
func (p Product) Validate() error {
	if p.Name == "" {
		return errors.New("name required")
	}
	if !p.Price.IsPositive() {
		return errors.New("price must be greater than 0")
	}
	if p.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Quantity > 0
}

// LowStock reports whether the stock level has fallen to or below the
// product's reorder point, falling back to DefaultReorderPoint when the
// product does not define one.
func (p Product) LowStock() bool {
	threshold := p.ReorderPoint
	if threshold <= 0 {
		threshold = DefaultReorderPoint
	}
	return p.Quantity <= threshold
}

// Catalog defines read operations against the product catalog. The remote
// API client implements it; the in-memory index and the local snapshot cache
// cover subsets of it for the scan resolver chain.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	GetByBarcode(ctx context.Context, code string) (*Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
}
