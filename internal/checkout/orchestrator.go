// Package checkout turns the cart into a completed sale: guard, submit,
// print, clear.
package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/domain/business"
	"github.com/scanline/pos-terminal/internal/domain/cart"
	"github.com/scanline/pos-terminal/internal/domain/sale"
	"github.com/scanline/pos-terminal/internal/receipt"
)

// ErrEmptyCart is returned by Begin when there is nothing to sell. It is
// raised before any network request.
var ErrEmptyCart = errors.New("cart is empty")

// Backend is the slice of the API client the orchestrator needs.
type Backend interface {
	CreateSale(ctx context.Context, req *sale.Request) (*sale.Record, error)
	ListSales(ctx context.Context) ([]sale.Record, error)
	GetBusiness(ctx context.Context) (*business.Profile, error)
}

// Orchestrator drives the checkout flow against the cart and the backend.
type Orchestrator struct {
	cart    *cart.Store
	backend Backend
	lg      *zap.Logger

	mu      sync.Mutex
	profile *business.Profile
}

// New creates an Orchestrator.
func New(cartStore *cart.Store, backend Backend, lg *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cart:    cartStore,
		backend: backend,
		lg:      lg.Named("checkout"),
	}
}

// Begin validates that checkout can start. An empty cart aborts with
// ErrEmptyCart before any I/O so the operator gets an immediate prompt.
func (o *Orchestrator) Begin(_ context.Context) error {
	if o.cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// Confirm submits the sale. On failure the cart is left intact so the
// operator can retry; the returned error carries the backend's message. On
// success the receipt document is built and a PendingReceipt returned: the
// cart is cleared only when its Complete fires (the operator finished the
// download or share action).
func (o *Orchestrator) Confirm(ctx context.Context, customer sale.CustomerInfo) (*PendingReceipt, error) {
	items := o.cart.Items()

	req, err := sale.NewRequest(items, customer)
	if err != nil {
		if errors.Is(err, sale.ErrEmptyItems) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}

	rec, err := o.backend.CreateSale(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "submit sale")
	}

	o.lg.Info("Sale completed",
		zap.String("sale_id", rec.ID),
		zap.String("receipt", rec.ReceiptNumber),
		zap.String("total", req.Total.String()),
	)

	pending := &PendingReceipt{
		Sale: rec,
		complete: func() {
			o.cart.Clear(ctx)
		},
	}

	// The sale is already committed server-side. A receipt build failure is
	// reported on the pending receipt, never rolled back.
	doc, err := receipt.Build(items, customer, req.Total, o.businessProfile(ctx), rec)
	if err != nil {
		o.lg.Warn("Receipt build failed", zap.String("sale_id", rec.ID), zap.Error(err))
		pending.BuildErr = err
		return pending, nil
	}
	pending.Document = doc
	return pending, nil
}

// History lists past sales for the history screen.
func (o *Orchestrator) History(ctx context.Context) ([]sale.Record, error) {
	records, err := o.backend.ListSales(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	return records, nil
}

// businessProfile returns the cached merchant profile, fetching it on first
// use. A fetch failure brands the receipt with an empty profile rather than
// failing the checkout.
func (o *Orchestrator) businessProfile(ctx context.Context) business.Profile {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.profile != nil {
		return *o.profile
	}

	profile, err := o.backend.GetBusiness(ctx)
	if err != nil {
		o.lg.Warn("Business profile fetch failed", zap.Error(err))
		return business.Profile{}
	}
	o.profile = profile
	return *profile
}

// PendingReceipt is a completed sale waiting for its receipt action. The
// cart survives until Complete is called, so a crash between sale and
// receipt leaves the operator able to re-print from history.
type PendingReceipt struct {
	Sale     *sale.Record
	Document receipt.Document
	// BuildErr is set when the receipt document could not be built. The
	// sale itself succeeded.
	BuildErr error

	once     sync.Once
	complete func()
}

// Complete marks the download/share action finished and clears the cart.
// Calling it more than once is a no-op.
func (p *PendingReceipt) Complete() {
	p.once.Do(p.complete)
}
