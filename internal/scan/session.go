package scan

import (
	"sync"
	"time"
)

// Session is the ephemeral per-terminal scan state: the last scanned barcode
// with its timestamp (for duplicate suppression), the current product and
// the active mode. Nothing here is persisted.
type Session struct {
	mu sync.Mutex

	mode             Mode
	lastBarcode      string
	lastScanAt       time.Time
	currentProductID string

	window time.Duration
	now    func() time.Time
}

// NewSession creates a session in the given mode. window is the duplicate
// suppression window.
func NewSession(mode Mode, window time.Duration) *Session {
	return &Session{
		mode:   mode,
		window: window,
		now:    time.Now,
	}
}

// ShouldIgnore reports whether a scan of code is a rapid rescan of the last
// barcode and must be suppressed.
func (s *Session) ShouldIgnore(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return code == s.lastBarcode && s.now().Sub(s.lastScanAt) < s.window
}

// Record notes a scan of code at the current time.
func (s *Session) Record(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastBarcode = code
	s.lastScanAt = s.now()
}

// Current reports whether code is still the barcode being worked on. A
// deferred resolution re-checks this before acting, so a lookup superseded
// by a reset or a newer scan is discarded instead of firing on stale state.
func (s *Session) Current(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBarcode == code
}

// ClearBarcode forgets the last barcode so the next scan of the same code
// resolves again. The current product id is left alone.
func (s *Session) ClearBarcode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBarcode = ""
}

// SetCurrentProduct records which product the terminal is showing.
func (s *Session) SetCurrentProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentProductID = id
}

// CurrentProduct returns the product id recorded by the last resolution.
func (s *Session) CurrentProduct() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentProductID
}

// Mode returns the active scan mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches modes and resets all scan state so no timer or lookup
// started under the old mode can act on the new one.
func (s *Session) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
	s.reset()
}

// Reset clears the last barcode and current product, rearming the scanner.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.lastBarcode = ""
	s.lastScanAt = time.Time{}
	s.currentProductID = ""
}
