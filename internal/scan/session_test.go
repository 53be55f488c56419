package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateSuppressionWindow(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	now := start
	s := NewSession(ModeCheckout, 3*time.Second)
	s.now = func() time.Time { return now }

	assert.False(t, s.ShouldIgnore("111"), "first scan is never a duplicate")
	s.Record("111")

	now = start.Add(2 * time.Second)
	assert.True(t, s.ShouldIgnore("111"), "rescan inside the window is suppressed")
	assert.False(t, s.ShouldIgnore("222"), "different barcode passes")

	now = start.Add(3500 * time.Millisecond)
	assert.False(t, s.ShouldIgnore("111"), "rescan after the window resolves again")
}

func TestSetModeResetsState(t *testing.T) {
	s := NewSession(ModeCheckout, 3*time.Second)
	s.Record("111")
	s.SetCurrentProduct("p1")

	s.SetMode(ModeInventory)

	assert.Equal(t, ModeInventory, s.Mode())
	assert.False(t, s.Current("111"))
	assert.Empty(t, s.CurrentProduct())
	assert.False(t, s.ShouldIgnore("111"), "mode switch rearms the scanner")
}

func TestClearBarcodeKeepsCurrentProduct(t *testing.T) {
	s := NewSession(ModeInventory, 3*time.Second)
	s.Record("111")
	s.SetCurrentProduct("p1")

	s.ClearBarcode()

	assert.False(t, s.Current("111"))
	assert.Equal(t, "p1", s.CurrentProduct())
}

func TestCurrentTracksLatestScan(t *testing.T) {
	s := NewSession(ModeCheckout, 3*time.Second)
	s.Record("111")
	assert.True(t, s.Current("111"))

	s.Record("222")
	assert.False(t, s.Current("111"), "superseded barcode is no longer current")
	assert.True(t, s.Current("222"))
}
