package scan

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/cache"
	"github.com/scanline/pos-terminal/internal/domain/product"
	"github.com/scanline/pos-terminal/pkg/availability"
)

// Resolver maps a barcode to a product. Implementations return
// product.ErrNotFound for a clean miss; any other error is a stage failure,
// which the chain logs and treats as a miss too.
type Resolver interface {
	Resolve(ctx context.Context, barcode string) (*product.Product, error)
}

// Chain tries resolvers in order and returns the first hit. The order is
// fixed by the wiring: in-memory index, then local cache, then remote.
type Chain struct {
	resolvers []Resolver
	lg        *zap.Logger
}

// NewChain builds a first-match-wins chain.
func NewChain(lg *zap.Logger, resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers, lg: lg.Named("resolve")}
}

// Resolve walks the chain. A stage error other than ErrNotFound is logged
// and the walk continues: a failed remote lookup ends up as "not found",
// never as a blocking error (the operator gets the add-product prompt).
func (c *Chain) Resolve(ctx context.Context, barcode string) (*product.Product, error) {
	for _, r := range c.resolvers {
		p, err := r.Resolve(ctx, barcode)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, product.ErrNotFound) {
			c.lg.Warn("Resolver stage failed",
				zap.String("barcode", barcode),
				zap.Error(err),
			)
		}
	}
	return nil, product.ErrNotFound
}

// IndexResolver answers from the most recently fetched product list.
type IndexResolver struct {
	Index *product.Index
}

// Resolve implements Resolver.
func (r IndexResolver) Resolve(_ context.Context, barcode string) (*product.Product, error) {
	if p, ok := r.Index.ByBarcode(barcode); ok {
		return &p, nil
	}
	return nil, product.ErrNotFound
}

// CacheResolver answers from the local inventory cache.
type CacheResolver struct {
	Inventory *cache.Inventory
}

// Resolve implements Resolver.
func (r CacheResolver) Resolve(_ context.Context, barcode string) (*product.Product, error) {
	if p, ok := r.Inventory.Lookup(barcode); ok {
		return &p, nil
	}
	return nil, product.ErrNotFound
}

// RemoteLookup is the backend call the RemoteResolver depends on.
type RemoteLookup interface {
	GetByBarcode(ctx context.Context, code string) (*product.Product, error)
}

// RemoteResolver fetches the barcode from the backend when the availability
// gate allows it, and feeds hits back into the local cache so repeat scans
// stay local.
type RemoteResolver struct {
	Lookup    RemoteLookup
	Gate      availability.Gate
	Inventory *cache.Inventory
}

// Resolve implements Resolver.
func (r RemoteResolver) Resolve(ctx context.Context, barcode string) (*product.Product, error) {
	if r.Gate != nil && !r.Gate.Available() {
		return nil, product.ErrNotFound
	}

	p, err := r.Lookup.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if r.Inventory != nil {
		r.Inventory.Insert(*p)
	}
	return p, nil
}
