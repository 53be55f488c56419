package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

// Store holds the session cart. Mutations come from the terminal's event
// loop one at a time; the mutex only exists so the startup snapshot load and
// dashboard reads cannot race a scan in progress.
//
// The in-memory list is authoritative for the session. Every mutation is
// followed by a persist attempt so the cart survives restarts; a failed
// write is logged and otherwise ignored.
type Store struct {
	mu        sync.Mutex
	items     []Item
	persister Persister
	lg        *zap.Logger
}

// NewStore creates an empty cart store backed by the given persister.
func NewStore(persister Persister, lg *zap.Logger) *Store {
	return &Store{
		persister: persister,
		lg:        lg.Named("cart"),
	}
}

// Load restores the persisted cart, if any. A missing snapshot leaves the
// cart empty and is not an error.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.persister.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	return nil
}

// Add merges one purchase into the cart: an existing line for the same
// product id has its quantity incremented, otherwise a new line is appended.
func (s *Store) Add(ctx context.Context, p product.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].Product.ID == p.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, Item{Product: p, Quantity: quantity})
	}

	s.persist(ctx)
	return nil
}

// Remove drops the line for the given product id. Removing an absent product
// is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateQuantity sets the line's quantity to an absolute value. A value of
// zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart and deletes the persisted copy.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.persister.Delete(ctx); err != nil {
		s.lg.Warn("Delete persisted cart failed", zap.Error(err))
	}
}

// Total returns the exact sum of price * quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// persist writes the current list. Callers hold s.mu. Persistence failures
// are non-fatal: the session keeps running on in-memory state.
func (s *Store) persist(ctx context.Context) {
	items := make([]Item, len(s.items))
	copy(items, s.items)

	if err := s.persister.Save(ctx, items); err != nil {
		s.lg.Warn("Persist cart failed", zap.Int("items", len(items)), zap.Error(err))
	}
}
