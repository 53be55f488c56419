package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/domain/product"
)

// --- Mock implementations ---

type mockPersister struct {
	saved     [][]Item
	loaded    []Item
	saveErr   error
	loadErr   error
	deleteErr error
	deleted   int
}

func (m *mockPersister) Save(_ context.Context, items []Item) error {
	m.saved = append(m.saved, items)
	return m.saveErr
}

func (m *mockPersister) Load(_ context.Context) ([]Item, error) {
	return m.loaded, m.loadErr
}

func (m *mockPersister) Delete(_ context.Context) error {
	m.deleted++
	return m.deleteErr
}

// --- Helpers ---

func newTestProduct(id, barcode string, price string, qty int) product.Product {
	return product.Product{
		ID:       id,
		Name:     "Product " + id,
		Barcode:  barcode,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func newStore(p *mockPersister) *Store {
	return NewStore(p, zap.NewNop())
}

// --- Tests ---

func TestAdd_MergesByProductID(t *testing.T) {
	persister := &mockPersister{}
	s := newStore(persister)
	p := newTestProduct("p1", "111", "2.50", 10)

	require.NoError(t, s.Add(context.Background(), p, 2))
	require.NoError(t, s.Add(context.Background(), p, 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Len(t, persister.saved, 2, "every mutation persists")
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	persister := &mockPersister{}
	s := newStore(persister)

	err := s.Add(context.Background(), newTestProduct("p1", "111", "1.00", 1), 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, persister.saved)
}

func TestRemove_AbsentProductIsNoop(t *testing.T) {
	persister := &mockPersister{}
	s := newStore(persister)
	require.NoError(t, s.Add(context.Background(), newTestProduct("p1", "111", "1.00", 1), 1))

	s.Remove(context.Background(), "missing")

	assert.Equal(t, 1, s.Len())
	assert.Len(t, persister.saved, 1, "no-op removal must not persist")
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets absolute quantity", func(t *testing.T) {
		s := newStore(&mockPersister{})
		require.NoError(t, s.Add(ctx, newTestProduct("p1", "111", "1.00", 9), 3))

		s.UpdateQuantity(ctx, "p1", 7)

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 7, items[0].Quantity, "update is absolute, not additive")
	})

	t.Run("zero removes the line", func(t *testing.T) {
		s := newStore(&mockPersister{})
		require.NoError(t, s.Add(ctx, newTestProduct("p1", "111", "1.00", 9), 3))

		s.UpdateQuantity(ctx, "p1", 0)

		assert.True(t, s.IsEmpty())
	})

	t.Run("negative removes the line", func(t *testing.T) {
		s := newStore(&mockPersister{})
		require.NoError(t, s.Add(ctx, newTestProduct("p1", "111", "1.00", 9), 3))

		s.UpdateQuantity(ctx, "p1", -2)

		assert.True(t, s.IsEmpty())
	})
}

func TestTotal_ExactDecimalSum(t *testing.T) {
	s := newStore(&mockPersister{})
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newTestProduct("p1", "111", "0.10", 9), 3))
	require.NoError(t, s.Add(ctx, newTestProduct("p2", "222", "19.99", 9), 2))
	require.NoError(t, s.Add(ctx, newTestProduct("p3", "333", "0.01", 9), 7))

	// 0.30 + 39.98 + 0.07 is exact under decimal arithmetic where binary
	// floats would drift.
	assert.True(t, s.Total().Equal(decimal.RequireFromString("40.35")),
		"got %s", s.Total())
}

func TestClear_DeletesPersistedCopy(t *testing.T) {
	persister := &mockPersister{}
	s := newStore(persister)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, newTestProduct("p1", "111", "1.00", 1), 1))

	s.Clear(ctx)

	assert.True(t, s.IsEmpty())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 1, persister.deleted)
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	persister := &mockPersister{saveErr: errors.New("disk full")}
	s := newStore(persister)

	require.NoError(t, s.Add(context.Background(), newTestProduct("p1", "111", "1.00", 1), 1))

	assert.Equal(t, 1, s.Len(), "in-memory state stays authoritative")
}

func TestLoad(t *testing.T) {
	t.Run("restores persisted items", func(t *testing.T) {
		persister := &mockPersister{loaded: []Item{
			{Product: newTestProduct("p1", "111", "2.00", 5), Quantity: 4},
		}}
		s := newStore(persister)

		require.NoError(t, s.Load(context.Background()))

		assert.Equal(t, 1, s.Len())
		assert.True(t, s.Total().Equal(decimal.RequireFromString("8.00")))
	})

	t.Run("propagates read errors", func(t *testing.T) {
		persister := &mockPersister{loadErr: errors.New("corrupt file")}
		s := newStore(persister)

		require.Error(t, s.Load(context.Background()))
	})
}
