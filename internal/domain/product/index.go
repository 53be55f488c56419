package product

import "sync"

// Index holds the most recently fetched full product list in memory. It is
// the first stage of the scan resolver chain and is shared between the scan
// engine and the refresh loop, so access is guarded.
type Index struct {
	mu       sync.RWMutex
	products []Product
}

// NewIndex returns an Index seeded with the given products.
func NewIndex(products []Product) *Index {
	idx := &Index{}
	idx.Replace(products)
	return idx
}

// Replace swaps the full product list. Called after every catalog refresh.
func (i *Index) Replace(products []Product) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.products = make([]Product, len(products))
	copy(i.products, products)
}

// ByBarcode returns the product with the given barcode, if present. Lists
// are small enough that a linear scan beats maintaining a second map.
func (i *Index) ByBarcode(code string) (Product, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, p := range i.products {
		if p.Barcode == code {
			return p, true
		}
	}
	return Product{}, false
}

// ByID returns the product with the given id, if present.
func (i *Index) ByID(id string) (Product, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, p := range i.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// All returns a copy of the indexed products.
func (i *Index) All() []Product {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Product, len(i.products))
	copy(out, i.products)
	return out
}

// Len returns the number of indexed products.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.products)
}
