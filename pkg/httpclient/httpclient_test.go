package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func response(code int) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return response(200), nil
	})

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	_, err := Wrap(base, mw("outer"), mw("inner")).RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "base"}, order)
}

func TestRequestID(t *testing.T) {
	t.Run("sets a fresh id", func(t *testing.T) {
		var seen string
		base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			seen = r.Header.Get("X-Request-ID")
			return response(200), nil
		})

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		_, err := Wrap(base, RequestID()).RoundTrip(req)
		require.NoError(t, err)
		assert.NotEmpty(t, seen)
	})

	t.Run("keeps a caller-set id", func(t *testing.T) {
		var seen string
		base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			seen = r.Header.Get("X-Request-ID")
			return response(200), nil
		})

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		req.Header.Set("X-Request-ID", "fixed")
		_, err := Wrap(base, RequestID()).RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, "fixed", seen)
	})
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("retries transport errors", func(t *testing.T) {
		calls := 0
		base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection refused")
			}
			return response(200), nil
		})

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		resp, err := Wrap(base, Retry(cfg)).RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, calls)
	})

	t.Run("retries 5xx", func(t *testing.T) {
		calls := 0
		base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return response(503), nil
			}
			return response(200), nil
		})

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		resp, err := Wrap(base, Retry(cfg)).RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection refused")
		})

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		_, err := Wrap(base, Retry(cfg)).RoundTrip(req)
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry POST", func(t *testing.T) {
		calls := 0
		base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection refused")
		})

		req, _ := http.NewRequest(http.MethodPost, "http://example.com", nil)
		_, err := Wrap(base, Retry(cfg)).RoundTrip(req)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not retry 4xx", func(t *testing.T) {
		calls := 0
		base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			return response(404), nil
		})

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		resp, err := Wrap(base, Retry(cfg)).RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, 1, calls)
	})

	t.Run("logs retries via context logger", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		ctx := zctx.Base(context.Background(), zap.New(core))

		calls := 0
		base := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection refused")
			}
			return response(200), nil
		})

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", nil)
		_, err := Wrap(base, Retry(cfg)).RoundTrip(req)
		require.NoError(t, err)

		entries := logs.FilterMessage("Retrying request").All()
		require.Len(t, entries, 2)
		assert.Equal(t, int64(2), entries[0].ContextMap()["attempt"])
	})
}
