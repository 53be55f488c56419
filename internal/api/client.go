// Package api is the REST client for the backend this terminal runs
// against. It normalizes transport failures, server-signaled errors and
// negative lookups into the error shapes the rest of the engine branches on.
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Config holds the client's connection settings.
type Config struct {
	// BaseURL is the backend root, e.g. https://api.example.com/v1.
	BaseURL string
	// Token is the bearer token sent with every request. The engine only
	// attempts remote calls when a token is configured.
	Token string
}

// Client talks to the backend. Construct with NewClient; the zero value is
// not usable.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	lg    *zap.Logger
}

// NewClient creates a Client. The http.Client carries the transport chain
// (otel instrumentation, request ids, retry) assembled by the app wiring;
// passing nil uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client, lg *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base:  base,
		token: cfg.Token,
		http:  httpClient,
		lg:    lg.Named("api"),
	}, nil
}

// HasToken reports whether the client has credentials. Without them the
// scan engine treats remote lookup as unavailable.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Ping performs a minimal request to establish backend reachability. Used
// by the availability monitor.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/business", nil, nil)
	return err
}

// do issues one request and returns the response body on 2xx. Non-2xx
// responses become *APIError; transport failures are wrapped as-is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	return c.request(ctx, method, path, query, body, nil)
}

// doWithHeaders is do with extra request headers.
func (c *Client) doWithHeaders(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	return c.request(ctx, method, path, nil, body, headers)
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body []byte, headers map[string]string) ([]byte, error) {
	// path arrives with its segments already escaped. URL.String renders
	// RawPath when it matches Path, so setting both keeps escaped barcode
	// segments from being escaped a second time.
	u := *c.base
	escaped := strings.TrimSuffix(u.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid path %q", path)
	}
	u.Path, u.RawPath = unescaped, escaped
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s: read body", method, path)
	}

	c.lg.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, data)
	}
	return data, nil
}
