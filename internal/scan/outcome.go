package scan

import (
	"time"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

// Outcome is the closed set of results a scan can produce. The UI layer
// switches over the concrete types; because the set is sealed the switch is
// exhaustively checkable.
type Outcome interface {
	isOutcome()
}

// NavigateToProduct is the inventory-mode hit: open the product detail view.
type NavigateToProduct struct {
	Product product.Product
}

// PromptAddProduct is the inventory-mode miss: offer cancel or creating a
// new product pre-filled with the scanned barcode.
type PromptAddProduct struct {
	Barcode string
}

// AddedToCart is the checkout-mode hit on an in-stock product: one unit was
// added to the cart. The confirmation toast auto-dismisses after
// ToastDuration (the engine emits ToastCleared then).
type AddedToCart struct {
	Product       product.Product
	ToastDuration time.Duration
}

// ToastCleared tells the UI the add-to-cart confirmation expired.
type ToastCleared struct{}

// OutOfStock is the checkout-mode hit on a product with no stock: a blocking
// prompt with a single acknowledge action (the UI calls Engine.ResetScan).
type OutOfStock struct {
	Product product.Product
}

// PromptRescan is the checkout-mode miss: offer rescanning or creating a new
// product pre-filled with the scanned barcode.
type PromptRescan struct {
	Barcode string
}

// IgnoreReason explains why a scan produced no resolution.
type IgnoreReason string

const (
	// IgnoreDuplicate marks a rapid rescan inside the suppression window.
	IgnoreDuplicate IgnoreReason = "duplicate"
)

// Ignored is the silent outcome: no lookup ran, no state changed.
type Ignored struct {
	Reason IgnoreReason
}

func (NavigateToProduct) isOutcome() {}
func (PromptAddProduct) isOutcome()  {}
func (AddedToCart) isOutcome()       {}
func (ToastCleared) isOutcome()      {}
func (OutOfStock) isOutcome()        {}
func (PromptRescan) isOutcome()      {}
func (Ignored) isOutcome()           {}
