package scan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/domain/product"
	"github.com/scanline/pos-terminal/pkg/availability"
)

// Config holds the workflow timings. Zero values fall back to the product
// defaults.
type Config struct {
	// InitialMode the engine starts in. Default ModeCheckout.
	InitialMode Mode
	// DuplicateWindow suppresses rescans of the same barcode. Default 3s.
	DuplicateWindow time.Duration
	// SettleDelay defers resolution so an in-flight lookup can settle
	// before "not found" is decided. Default 1s.
	SettleDelay time.Duration
	// ToastDuration is how long the add-to-cart confirmation shows.
	// Default 3s.
	ToastDuration time.Duration
	// RearmDelay is the pause after an add-to-cart before the next scan of
	// the same product is accepted. Default 1s.
	RearmDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.InitialMode == "" {
		c.InitialMode = ModeCheckout
	}
	if c.DuplicateWindow <= 0 {
		c.DuplicateWindow = 3 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = 3 * time.Second
	}
	if c.RearmDelay <= 0 {
		c.RearmDelay = time.Second
	}
}

// CartAdder is the one cart operation the scan flow needs.
type CartAdder interface {
	Add(ctx context.Context, p product.Product, quantity int) error
}

// Refresher re-fetches the full product list, keeping the in-memory index
// fresh for subsequent scans.
type Refresher interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Deps are the engine's collaborators.
type Deps struct {
	Chain *Chain
	Cart  CartAdder
	Index *product.Index
	// Catalog is optional; when set, every accepted scan triggers an async
	// index refresh.
	Catalog Refresher
	// Gate is optional; when set it guards the catalog refresh (the remote
	// resolver carries its own gate).
	Gate availability.Gate
	// Sink receives every outcome. Called from timer goroutines; the UI
	// adapter is expected to hand outcomes to its event loop.
	Sink func(Outcome)
	// Feedback is the audible scan cue. Optional.
	Feedback func()
	Logger   *zap.Logger
}

// Engine drives the scan workflow.
type Engine struct {
	cfg      Config
	session  *Session
	chain    *Chain
	cart     CartAdder
	index    *product.Index
	catalog  Refresher
	gate     availability.Gate
	sched    *Scheduler
	sink     func(Outcome)
	feedback func()
	lg       *zap.Logger
}

// NewEngine assembles an engine. Close must be called on teardown so no
// scheduled task outlives the terminal session.
func NewEngine(cfg Config, deps Deps) *Engine {
	cfg.applyDefaults()
	return &Engine{
		cfg:      cfg,
		session:  NewSession(cfg.InitialMode, cfg.DuplicateWindow),
		chain:    deps.Chain,
		cart:     deps.Cart,
		index:    deps.Index,
		catalog:  deps.Catalog,
		gate:     deps.Gate,
		sched:    NewScheduler(),
		sink:     deps.Sink,
		feedback: deps.Feedback,
		lg:       deps.Logger.Named("scan"),
	}
}

// HandleScan processes one scan event. Duplicates inside the suppression
// window are ignored silently; everything else emits the feedback cue,
// kicks off an index refresh, and schedules resolution after the settle
// delay.
func (e *Engine) HandleScan(ctx context.Context, barcode string) {
	if barcode == "" {
		return
	}
	if e.session.ShouldIgnore(barcode) {
		e.emit(Ignored{Reason: IgnoreDuplicate})
		return
	}

	e.session.Record(barcode)
	if e.feedback != nil {
		e.feedback()
	}
	e.refreshIndex(ctx)

	e.sched.After(e.cfg.SettleDelay, func() {
		e.resolve(ctx, barcode)
	})
}

// SetMode switches between inventory and checkout. Switching cancels every
// pending task and resets the scan state.
func (e *Engine) SetMode(mode Mode) {
	if mode == e.session.Mode() {
		return
	}
	e.sched.CancelAll()
	e.session.SetMode(mode)
	e.lg.Info("Scan mode switched", zap.String("mode", string(mode)))
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode {
	return e.session.Mode()
}

// CurrentProduct returns the product id recorded by the last inventory-mode
// resolution.
func (e *Engine) CurrentProduct() string {
	return e.session.CurrentProduct()
}

// ResetScan is the operator's cancel / scan-again action: it drops pending
// tasks and rearms the scanner.
func (e *Engine) ResetScan() {
	e.sched.CancelAll()
	e.session.Reset()
}

// Close tears the engine down, cancelling all scheduled tasks.
func (e *Engine) Close() {
	e.sched.Close()
}

// resolve runs when the settle delay fires. It re-checks that the barcode is
// still current so a resolution superseded by a reset, a mode switch or a
// newer scan is discarded instead of acting on stale state.
func (e *Engine) resolve(ctx context.Context, barcode string) {
	if !e.session.Current(barcode) {
		return
	}

	p, err := e.chain.Resolve(ctx, barcode)
	mode := e.session.Mode()

	if err != nil {
		// Settled miss. Failed lookups landed here too, already logged by
		// the chain.
		switch mode {
		case ModeInventory:
			e.emit(PromptAddProduct{Barcode: barcode})
		default:
			e.emit(PromptRescan{Barcode: barcode})
		}
		return
	}

	switch mode {
	case ModeInventory:
		e.session.SetCurrentProduct(p.ID)
		e.session.ClearBarcode()
		e.emit(NavigateToProduct{Product: *p})

	case ModeCheckout:
		if !p.InStock() {
			e.emit(OutOfStock{Product: *p})
			return
		}
		if err := e.cart.Add(ctx, *p, 1); err != nil {
			e.lg.Error("Add to cart failed",
				zap.String("product_id", p.ID),
				zap.Error(err),
			)
			return
		}
		e.emit(AddedToCart{Product: *p, ToastDuration: e.cfg.ToastDuration})
		e.sched.After(e.cfg.ToastDuration, func() {
			e.emit(ToastCleared{})
		})
		e.sched.After(e.cfg.RearmDelay, func() {
			e.session.ClearBarcode()
		})
	}
}

// refreshIndex re-fetches the product list in the background so the next
// scan sees fresher stock numbers. Failures only cost freshness.
func (e *Engine) refreshIndex(ctx context.Context) {
	if e.catalog == nil || e.index == nil {
		return
	}
	if e.gate != nil && !e.gate.Available() {
		return
	}

	go func() {
		products, err := e.catalog.List(ctx)
		if err != nil {
			e.lg.Debug("Catalog refresh failed", zap.Error(err))
			return
		}
		e.index.Replace(products)
	}()
}

func (e *Engine) emit(o Outcome) {
	if e.sink != nil {
		e.sink(o)
	}
}
