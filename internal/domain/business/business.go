// Package business holds the merchant profile used to brand receipts.
package business

// Profile is the merchant identity shown on receipts. The backend owns it;
// this client fetches it at startup and caches it for the checkout flow.
type Profile struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	TaxID    string
	Currency string
	LogoURL  string
}
