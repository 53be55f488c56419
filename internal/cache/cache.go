// Package cache holds the local inventory cache: the last catalog snapshot
// plus a bloom filter over its barcodes. It is the second stage of the scan
// resolver chain, answering lookups while the backend is slow or away.
package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/scanline/pos-terminal/internal/domain/product"
	"github.com/scanline/pos-terminal/internal/storage"
)

// Inventory is a read-mostly product cache keyed by barcode. Lookups consult
// the bloom filter first: a negative answer means the barcode did not exist
// at last sync and the scan can skip straight to the remote stage. Products
// resolved remotely are inserted so repeat scans stay local.
type Inventory struct {
	mu       sync.RWMutex
	products []product.Product
	filter   *bloom.BloomFilter
}

// New returns an empty inventory cache.
func New() *Inventory {
	return &Inventory{}
}

// FromSnapshot builds a cache from a catalog snapshot. A snapshot without a
// filter gets one rebuilt from its products.
func FromSnapshot(snap storage.Snapshot) *Inventory {
	filter := snap.Filter
	if filter == nil {
		filter = storage.NewBarcodeFilter(snap.Products)
	}
	return &Inventory{
		products: snap.Products,
		filter:   filter,
	}
}

// Lookup returns the cached product for a barcode. The boolean is false both
// when the filter rules the barcode out and when a filter false positive
// finds no matching product.
func (c *Inventory) Lookup(barcode string) (product.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filter != nil && !c.filter.TestString(barcode) {
		return product.Product{}, false
	}
	for _, p := range c.products {
		if p.Barcode == barcode {
			return p, true
		}
	}
	return product.Product{}, false
}

// Insert adds or replaces a single product, typically after a successful
// remote lookup.
func (c *Inventory) Insert(p product.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.products {
		if c.products[i].ID == p.ID {
			c.products[i] = p
			if c.filter != nil && p.Barcode != "" {
				c.filter.AddString(p.Barcode)
			}
			return
		}
	}
	c.products = append(c.products, p)
	if c.filter == nil {
		c.filter = storage.NewBarcodeFilter(c.products)
		return
	}
	if p.Barcode != "" {
		c.filter.AddString(p.Barcode)
	}
}

// ReplaceAll swaps the cache contents and rebuilds the filter, used when a
// fresh snapshot arrives.
func (c *Inventory) ReplaceAll(products []product.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = make([]product.Product, len(products))
	copy(c.products, products)
	c.filter = storage.NewBarcodeFilter(c.products)
}

// Len returns the number of cached products.
func (c *Inventory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
