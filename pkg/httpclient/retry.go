package httpclient

import (
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// RetryConfig controls the retry middleware.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first. Values
	// below 1 are treated as 1.
	Attempts int
	// BaseDelay is the delay before the first retry; each further retry
	// doubles it up to MaxDelay. Full jitter is applied.
	BaseDelay time.Duration
	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration
}

// Retry returns middleware that retries idempotent requests (GET, HEAD) on
// transport errors, 429 and 5xx responses. Non-idempotent methods pass
// through untouched: a lost POST /sales response must surface to the caller,
// retrying it belongs to the idempotency-key layer, not the transport.
func Retry(cfg RetryConfig) Middleware {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = cfg.BaseDelay
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				return next.RoundTrip(r)
			}

			var (
				resp *http.Response
				err  error
			)
			for attempt := 0; attempt < cfg.Attempts; attempt++ {
				if attempt > 0 {
					zctx.From(r.Context()).Debug("Retrying request",
						zap.String("method", r.Method),
						zap.String("url", r.URL.Redacted()),
						zap.Int("attempt", attempt+1),
					)
					select {
					case <-r.Context().Done():
						return nil, r.Context().Err()
					case <-time.After(backoff(cfg, attempt)):
					}
				}

				resp, err = next.RoundTrip(r)
				if err != nil {
					continue
				}
				if !retryableStatus(resp.StatusCode) || attempt == cfg.Attempts-1 {
					return resp, nil
				}
				// Drain so the connection can be reused before retrying.
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}

			return nil, err
		})
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// backoff returns the delay before the given retry attempt (1-based) using
// exponential growth with full jitter.
func backoff(cfg RetryConfig, attempt int) time.Duration {
	d := cfg.BaseDelay << (attempt - 1)
	if d > cfg.MaxDelay || d <= 0 {
		d = cfg.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(d)) + 1)
}
