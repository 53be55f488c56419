// Package availability tracks whether the remote backend is reachable.
//
// A single probe runs in a background goroutine at a configurable interval.
// Failure/success thresholds (Kubernetes-probe style) avoid flapping: the
// backend must fail consecutively FailureThreshold times before being marked
// away, and succeed SuccessThreshold times before being marked back. The
// scan engine reads the result to decide whether a remote barcode lookup is
// worth attempting at all.
package availability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ProbeFunc checks backend reachability. It should return nil when the
// backend answered, or an error describing why it did not.
type ProbeFunc func(ctx context.Context) error

// Config tunes the monitor. Zero values fall back to defaults.
type Config struct {
	// Interval between probe runs. Default 30s.
	Interval time.Duration
	// Timeout for a single probe. Default 5s.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures before the
	// backend is considered away. Default 3.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive successes before the
	// backend is considered back. Default 1.
	SuccessThreshold int
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}
}

// Monitor runs the probe and exposes the current verdict.
//
// Concurrency model: run() is called from exactly one goroutine (the
// ticker), so the consecutive counters need no synchronization. The
// available flag and lastErr are read from arbitrary goroutines and use
// atomics.
type Monitor struct {
	cfg   Config
	probe ProbeFunc

	available atomic.Bool
	lastErr   atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Monitor. The backend is assumed available until the probe
// proves otherwise, so a cold start does not block scanning.
func New(probe ProbeFunc, cfg Config) *Monitor {
	cfg.applyDefaults()
	m := &Monitor{cfg: cfg, probe: probe}
	m.available.Store(true)
	return m
}

// Start launches the background probe loop. It probes once immediately,
// then on every interval tick until the context is cancelled or Stop is
// called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		m.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.run(ctx)
			}
		}
	}()
}

// Stop cancels the probe loop. Safe to call multiple times.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Available reports the current verdict.
func (m *Monitor) Available() bool {
	return m.available.Load()
}

// LastError returns the most recent probe error, or nil.
func (m *Monitor) LastError() error {
	if p := m.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// run executes the probe once and updates thresholds. Called from a single
// goroutine.
func (m *Monitor) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	err := m.probe(probeCtx)
	m.lastErr.Store(&err)

	if err != nil {
		m.consecutiveOK = 0
		m.consecutiveFails++
		if m.consecutiveFails >= m.cfg.FailureThreshold {
			m.available.Store(false)
		}
		return
	}

	m.consecutiveFails = 0
	m.consecutiveOK++
	if m.consecutiveOK >= m.cfg.SuccessThreshold {
		m.available.Store(true)
	}
}
