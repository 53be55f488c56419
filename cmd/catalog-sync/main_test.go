package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scanline/pos-terminal/internal/api"
)

// pagedCatalog serves catalogSize sequential products over limit/offset,
// optionally stalling one offset to skew the worker pool.
func pagedCatalog(t *testing.T, catalogSize int, slowOffset int, stall time.Duration) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		if offset == slowOffset && stall > 0 {
			time.Sleep(stall)
		}

		var b strings.Builder
		b.WriteString("[")
		for i := offset; i < offset+limit && i < catalogSize; i++ {
			if i > offset {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"id":"p%d","name":"Product %d","barcode":"%013d","price":"1.00","quantity":1}`, i, i, i)
		}
		b.WriteString("]")
		w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL}, srv.Client(), zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestFetchCatalog_CompleteAndOrdered(t *testing.T) {
	const size = 3*pageSize + 1
	client := pagedCatalog(t, size, -1, 0)

	products, err := fetchCatalog(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, products, size)

	for i, p := range products {
		assert.Equal(t, fmt.Sprintf("p%d", i), p.ID)
	}
}

func TestFetchCatalog_SlowWorkerLosesNoPages(t *testing.T) {
	// A stalled page must not let the workers that already saw the catalog
	// end starve the slow worker's remaining pages out of the result.
	const size = 8*pageSize + 1
	client := pagedCatalog(t, size, 3*pageSize, 150*time.Millisecond)

	products, err := fetchCatalog(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, products, size)

	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		seen[p.ID] = struct{}{}
	}
	assert.Len(t, seen, size, "every product exactly once")
}

func TestFetchCatalog_EmptyCatalog(t *testing.T) {
	client := pagedCatalog(t, 0, -1, 0)

	products, err := fetchCatalog(context.Background(), client)
	require.NoError(t, err)
	assert.Empty(t, products)
}
