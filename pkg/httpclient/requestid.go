package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader is the header carrying the per-request identifier.
const requestIDHeader = "X-Request-ID"

// RequestID returns middleware that tags every outgoing request with a
// unique X-Request-ID header so client and backend logs can be correlated.
// A header already set by the caller is left alone.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(requestIDHeader) == "" {
				r = r.Clone(r.Context())
				r.Header.Set(requestIDHeader, uuid.New().String())
			}
			return next.RoundTrip(r)
		})
	}
}
