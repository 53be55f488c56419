// Package scan implements the barcode workflow: duplicate suppression, the
// ordered resolution chain (in-memory index, local cache, remote lookup) and
// the mode-dependent branching that turns a resolved scan into an outcome.
package scan

// Mode governs how a resolved scan is handled.
type Mode string

const (
	// ModeInventory routes resolved products to the product detail form.
	ModeInventory Mode = "inventory"
	// ModeCheckout routes resolved products into the cart.
	ModeCheckout Mode = "checkout"
)
