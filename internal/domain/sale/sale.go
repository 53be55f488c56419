package sale

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scanline/pos-terminal/internal/domain/cart"
)

// ErrEmptyItems is returned when a sale is built from an empty cart.
var ErrEmptyItems = errors.New("items required")

// InvalidQuantityError indicates a line item carries a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// CustomerInfo is optional customer detail attached to a sale at checkout.
// It is sent with the sale request and echoed on the receipt; this client
// never persists it on its own.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// LineItem is one sale line as submitted to the backend.
type LineItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Request is the sale creation payload. Total is the cart total rounded to
// two decimal places, the backend recomputes and verifies it server-side.
// IdempotencyKey lets the backend dedupe retried submissions.
type Request struct {
	Items          []LineItem
	Total          decimal.Decimal
	Customer       CustomerInfo
	IdempotencyKey string
}

// Record is the server-owned sale as returned by the backend. This client
// only reads it to drive the receipt flow and the history screen.
type Record struct {
	ID            string
	ReceiptNumber string
	Status        string
	Total         decimal.Decimal
	Items         []LineItem
	CreatedAt     time.Time
}

// NewRequest builds a sale request from cart lines. Prices are the product
// snapshots taken at scan time.
func NewRequest(items []cart.Item, customer CustomerInfo) (*Request, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	lines := make([]LineItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.Product.ID}
		}
		lines[i] = LineItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		}
		total = total.Add(item.Subtotal())
	}

	return &Request{
		Items:          lines,
		Total:          total.Round(2),
		Customer:       customer,
		IdempotencyKey: uuid.New().String(),
	}, nil
}
