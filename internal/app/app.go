package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/api"
	"github.com/scanline/pos-terminal/internal/cache"
	"github.com/scanline/pos-terminal/internal/checkout"
	"github.com/scanline/pos-terminal/internal/domain/cart"
	"github.com/scanline/pos-terminal/internal/domain/product"
	"github.com/scanline/pos-terminal/internal/scan"
	"github.com/scanline/pos-terminal/internal/storage"
	"github.com/scanline/pos-terminal/pkg/availability"
	"github.com/scanline/pos-terminal/pkg/httpclient"
)

// Run creates all dependencies and drives the terminal loop until the
// context is cancelled. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("backend", cfg.BackendURL),
		zap.String("data_dir", cfg.DataDir),
	)

	// Local state: cart persistence + catalog snapshot.
	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "open data dir")
	}

	cartStore := cart.NewStore(storage.NewCartPersister(store), lg)
	if err := cartStore.Load(ctx); err != nil {
		return errors.Wrap(err, "restore cart")
	}
	if n := cartStore.Len(); n > 0 {
		lg.Info("Cart restored", zap.Int("items", n))
	}

	var (
		inventory *cache.Inventory
		index     *product.Index
	)
	snap, err := storage.ReadSnapshot(cfg.SnapshotPath())
	switch {
	case err == nil:
		inventory = cache.FromSnapshot(snap)
		index = product.NewIndex(snap.Products)
		lg.Info("Catalog snapshot loaded",
			zap.Int("products", inventory.Len()),
			zap.Time("synced_at", snap.SyncedAt),
		)
	case errors.Is(err, os.ErrNotExist):
		inventory = cache.New()
		index = product.NewIndex(nil)
		lg.Info("No catalog snapshot, starting cold")
	default:
		return errors.Wrap(err, "read catalog snapshot")
	}

	// Backend client with instrumented transport.
	transport := httpclient.Wrap(
		otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
		httpclient.RequestID(),
		httpclient.Retry(httpclient.RetryConfig{
			Attempts:  cfg.HTTP.RetryAttempts,
			BaseDelay: cfg.HTTP.RetryBaseDelay,
			MaxDelay:  cfg.HTTP.RetryMaxDelay,
		}),
	)
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.BackendURL,
		Token:   cfg.Token,
	}, &http.Client{Transport: transport, Timeout: cfg.HTTP.Timeout}, lg)
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	// Availability gate. Without credentials every remote lookup would be
	// rejected anyway, so the gate stays shut and no probes run.
	var gate availability.Gate
	if client.HasToken() {
		monitor := availability.New(client.Ping, availability.Config{
			Interval:         cfg.Probe.Interval,
			Timeout:          cfg.Probe.Timeout,
			FailureThreshold: cfg.Probe.FailureThreshold,
			SuccessThreshold: cfg.Probe.SuccessThreshold,
		})
		monitor.Start(ctx)
		defer monitor.Stop()
		gate = monitor
	} else {
		lg.Warn("No backend token, running offline")
		gate = availability.Static(false)
	}

	term := NewTerminal(os.Stdin, os.Stdout, lg)

	// Scan workflow: index → cache → remote, gated on availability.
	chain := scan.NewChain(lg,
		scan.IndexResolver{Index: index},
		scan.CacheResolver{Inventory: inventory},
		scan.RemoteResolver{Lookup: client, Gate: gate, Inventory: inventory},
	)
	engine := scan.NewEngine(scan.Config{
		DuplicateWindow: cfg.Scan.DuplicateWindow,
		SettleDelay:     cfg.Scan.SettleDelay,
		ToastDuration:   cfg.Scan.ToastDuration,
		RearmDelay:      cfg.Scan.RearmDelay,
	}, scan.Deps{
		Chain:    chain,
		Cart:     cartStore,
		Index:    index,
		Catalog:  client,
		Gate:     gate,
		Sink:     term.ShowOutcome,
		Feedback: term.Beep,
		Logger:   lg,
	})
	defer engine.Close()

	orchestrator := checkout.New(cartStore, client, lg)

	return term.Loop(ctx, engine, cartStore, orchestrator)
}
