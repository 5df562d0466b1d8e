// Package ratelimit implements fixed-window request limiting keyed by caller.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config describes a fixed window: at most Limit requests per Window.
type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// Unlimited never rejects. Used when the limit is disabled.
var Unlimited Limiter = unlimited{}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// Memory is a process-local fixed window limiter. Expired windows are swept
// at most once per window length.
type Memory struct {
	cfg       Config
	now       func() time.Time
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	startedAt time.Time
	count     int
}

// NewMemory builds an in-process limiter.
func NewMemory(cfg Config) *Memory {
	return &Memory{cfg: cfg.normalized(), now: time.Now, windows: map[string]*window{}}
}

// Allow counts the request against key and reports whether it is within the limit.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.cfg.Limit <= 0 {
		return true, nil
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= m.cfg.Window {
		m.sweep(now)
	}
	w, ok := m.windows[key]
	if !ok || now.Sub(w.startedAt) >= m.cfg.Window {
		w = &window{startedAt: now}
		m.windows[key] = w
	}
	if w.count >= m.cfg.Limit {
		return false, nil
	}
	w.count++
	return true, nil
}

func (m *Memory) sweep(now time.Time) {
	for key, w := range m.windows {
		if now.Sub(w.startedAt) >= m.cfg.Window {
			delete(m.windows, key)
		}
	}
	m.lastSweep = now
}

var (
	_ Limiter = (*Memory)(nil)
	_ Limiter = unlimited{}
)
