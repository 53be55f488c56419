// Command catalog-sync pulls the full product catalog from the backend and
// writes the local snapshot the terminal reads at start: the product list
// plus a bloom filter of known barcodes, pgzip-compressed. Run it on a
// schedule or before taking a terminal offline.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scanline/pos-terminal/internal/api"
	appkg "github.com/scanline/pos-terminal/internal/app"
	"github.com/scanline/pos-terminal/internal/domain/product"
	"github.com/scanline/pos-terminal/internal/storage"
	"github.com/scanline/pos-terminal/pkg/httpclient"
)

const (
	pageSize    = 200
	pageWorkers = 4
)

func main() {
	var (
		backendURL string
		token      string
		dataDir    string
		timeout    time.Duration
	)

	flag.StringVar(&backendURL, "backend-url", "", "backend API base URL (or POS_BACKEND_URL env)")
	flag.StringVar(&token, "token", "", "bearer token (or POS_TOKEN env)")
	flag.StringVar(&dataDir, "data-dir", "", "snapshot directory (defaults to the terminal's data dir)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	if backendURL == "" {
		backendURL = os.Getenv("POS_BACKEND_URL")
	}
	if token == "" {
		token = os.Getenv("POS_TOKEN")
	}
	if backendURL == "" {
		slog.Error("backend URL is required: set --backend-url or POS_BACKEND_URL")
		os.Exit(1)
	}
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			dataDir = ".pos-terminal"
		} else {
			dataDir = filepath.Join(base, "pos-terminal")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, backendURL, token, dataDir, timeout); err != nil {
		slog.Error("catalog sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog sync completed successfully")
}

func run(ctx context.Context, backendURL, token, dataDir string, timeout time.Duration) error {
	transport := httpclient.Wrap(http.DefaultTransport,
		httpclient.RequestID(),
		httpclient.Retry(httpclient.RetryConfig{Attempts: 3}),
	)
	client, err := api.NewClient(api.Config{BaseURL: backendURL, Token: token},
		&http.Client{Transport: transport, Timeout: timeout}, zap.NewNop())
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	slog.Info("fetching catalog", slog.Int("page_size", pageSize), slog.Int("workers", pageWorkers))

	products, err := fetchCatalog(ctx, client)
	if err != nil {
		return errors.Wrap(err, "fetch catalog")
	}

	slog.Info("catalog fetched", slog.Int("products", len(products)))

	snap := storage.Snapshot{
		Products: products,
		Filter:   storage.NewBarcodeFilter(products),
		SyncedAt: time.Now().UTC(),
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	path := filepath.Join(dataDir, appkg.SnapshotFile)
	if err := storage.WriteSnapshot(path, snap); err != nil {
		return errors.Wrap(err, "write snapshot")
	}

	slog.Info("snapshot written", slog.String("path", path))
	return nil
}

// pageResult is one fetched page, keyed by its offset so the merged catalog
// keeps the backend's ordering.
type pageResult struct {
	offset   int
	products []product.Product
}

// fetchCatalog pages through the catalog with a fixed pool of workers.
// Worker k fetches offsets k, k+N, k+2N, ... and stops only when its own
// fetch comes back short: a sibling hitting the catalog end first must not
// stop a slower worker that still owns full pages below it, or those
// products would silently vanish from the snapshot.
func fetchCatalog(ctx context.Context, client *api.Client) ([]product.Product, error) {
	pages := make([][]pageResult, pageWorkers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range pageWorkers {
		g.Go(func() error {
			for page := w; ; page += pageWorkers {
				offset := page * pageSize
				products, err := client.ListPage(ctx, pageSize, offset)
				if err != nil {
					return errors.Wrapf(err, "fetch page at offset %d", offset)
				}
				if len(products) > 0 {
					pages[w] = append(pages[w], pageResult{offset: offset, products: products})
				}
				if len(products) < pageSize {
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []pageResult
	for _, res := range pages {
		all = append(all, res...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].offset < all[j].offset })

	var products []product.Product
	for _, res := range all {
		products = append(products, res.products...)
	}
	return products, nil
}
