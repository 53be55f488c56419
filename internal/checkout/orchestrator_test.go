package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/domain/business"
	"github.com/scanline/pos-terminal/internal/domain/cart"
	"github.com/scanline/pos-terminal/internal/domain/product"
	"github.com/scanline/pos-terminal/internal/domain/sale"
)

// --- Mock implementations ---

type mockBackend struct {
	createCalls  int
	lastReq      *sale.Request
	record       *sale.Record
	createErr    error
	sales        []sale.Record
	listErr      error
	profile      *business.Profile
	profileErr   error
	profileCalls int
}

func (m *mockBackend) CreateSale(_ context.Context, req *sale.Request) (*sale.Record, error) {
	m.createCalls++
	m.lastReq = req
	return m.record, m.createErr
}

func (m *mockBackend) ListSales(_ context.Context) ([]sale.Record, error) {
	return m.sales, m.listErr
}

func (m *mockBackend) GetBusiness(_ context.Context) (*business.Profile, error) {
	m.profileCalls++
	return m.profile, m.profileErr
}

type nopPersister struct{}

func (nopPersister) Save(_ context.Context, _ []cart.Item) error { return nil }
func (nopPersister) Load(_ context.Context) ([]cart.Item, error) { return nil, nil }
func (nopPersister) Delete(_ context.Context) error              { return nil }

// --- Helpers ---

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	s := cart.NewStore(nopPersister{}, zap.NewNop())
	require.NoError(t, s.Add(context.Background(), product.Product{
		ID:    "p1",
		Name:  "Coffee",
		Price: decimal.RequireFromString("3.50"),
	}, 2))
	return s
}

func okBackend() *mockBackend {
	return &mockBackend{
		record: &sale.Record{
			ID:            "s1",
			ReceiptNumber: "R-0042",
			Status:        "completed",
			CreatedAt:     time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
		},
		profile: &business.Profile{Name: "Corner Shop"},
	}
}

// --- Tests ---

func TestBegin_EmptyCartGuard(t *testing.T) {
	backend := &mockBackend{}
	o := New(cart.NewStore(nopPersister{}, zap.NewNop()), backend, zap.NewNop())

	err := o.Begin(context.Background())

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, backend.createCalls, "guard must fire before any network request")
}

func TestBegin_NonEmptyCart(t *testing.T) {
	o := New(filledCart(t), okBackend(), zap.NewNop())
	require.NoError(t, o.Begin(context.Background()))
}

func TestConfirm_Success(t *testing.T) {
	cartStore := filledCart(t)
	backend := okBackend()
	o := New(cartStore, backend, zap.NewNop())

	pending, err := o.Confirm(context.Background(), sale.CustomerInfo{Name: "Ada"})
	require.NoError(t, err)
	require.NotNil(t, pending)

	assert.Equal(t, "s1", pending.Sale.ID)
	assert.NoError(t, pending.BuildErr)
	assert.Equal(t, "R-0042", pending.Document.ReceiptNumber)
	assert.Equal(t, "Corner Shop", pending.Document.Business.Name)

	require.NotNil(t, backend.lastReq)
	assert.True(t, backend.lastReq.Total.Equal(decimal.RequireFromString("7.00")))

	// The cart survives until the receipt action completes.
	assert.False(t, cartStore.IsEmpty())

	pending.Complete()
	assert.True(t, cartStore.IsEmpty())
	assert.True(t, cartStore.Total().IsZero())

	pending.Complete() // idempotent
	assert.True(t, cartStore.IsEmpty())
}

func TestConfirm_BackendFailureKeepsCart(t *testing.T) {
	cartStore := filledCart(t)
	backend := okBackend()
	backend.createErr = errors.New("insufficient stock")
	o := New(cartStore, backend, zap.NewNop())

	_, err := o.Confirm(context.Background(), sale.CustomerInfo{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.False(t, cartStore.IsEmpty(), "cart stays intact for retry")
}

func TestConfirm_EmptyCart(t *testing.T) {
	o := New(cart.NewStore(nopPersister{}, zap.NewNop()), okBackend(), zap.NewNop())

	_, err := o.Confirm(context.Background(), sale.CustomerInfo{})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestConfirm_ProfileFetchFailureStillPrints(t *testing.T) {
	backend := okBackend()
	backend.profile = nil
	backend.profileErr = errors.New("backend away")
	o := New(filledCart(t), backend, zap.NewNop())

	pending, err := o.Confirm(context.Background(), sale.CustomerInfo{})
	require.NoError(t, err)
	assert.NoError(t, pending.BuildErr)
	assert.Empty(t, pending.Document.Business.Name, "unbranded receipt beats no receipt")
}

func TestConfirm_ProfileCachedAcrossCheckouts(t *testing.T) {
	backend := okBackend()
	cartStore := filledCart(t)
	o := New(cartStore, backend, zap.NewNop())

	ctx := context.Background()
	pending, err := o.Confirm(ctx, sale.CustomerInfo{})
	require.NoError(t, err)
	pending.Complete()

	require.NoError(t, cartStore.Add(ctx, product.Product{
		ID: "p2", Name: "Tea", Price: decimal.NewFromInt(1),
	}, 1))
	_, err = o.Confirm(ctx, sale.CustomerInfo{})
	require.NoError(t, err)

	assert.Equal(t, 1, backend.profileCalls)
}

func TestHistory(t *testing.T) {
	backend := okBackend()
	backend.sales = []sale.Record{{ID: "s2"}, {ID: "s1"}}
	o := New(filledCart(t), backend, zap.NewNop())

	records, err := o.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
