package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

// ErrInvalidQuantity is returned when Add is called with a non-positive
// quantity. Quantity updates use Remove semantics instead (see
// Store.UpdateQuantity).
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// Item is one cart line: a snapshot of the product as it looked at scan time
// plus the quantity being purchased. The snapshot price is what the sale is
// submitted with, independent of later catalog changes.
type Item struct {
	Product  product.Product
	Quantity int
}

// Subtotal returns price * quantity for this line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Persister stores the cart between sessions. The file-backed implementation
// lives in internal/storage; tests substitute their own.
type Persister interface {
	Save(ctx context.Context, items []Item) error
	Load(ctx context.Context) ([]Item, error)
	Delete(ctx context.Context) error
}
