// Package ratelimit implements an in-process fixed-window request counter keyed by identifier.
package ratelimit

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Result is the outcome of one Allow call
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts calls per key inside fixed windows.
// All state lives in one map guarded by one mutex, so it does not scale past a single process.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time

	sweepEvery time.Duration
	stopOnce   sync.Once
	stopCh     chan struct{}
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithSweepInterval sets how often expired windows are dropped; zero disables the sweeper
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) {
		l.sweepEvery = d
	}
}

// New creates a limiter and starts its sweeper
func New(opts ...Option) *Limiter {
	l := &Limiter{
		windows:    make(map[string]*window),
		now:        time.Now,
		sweepEvery: 5 * time.Minute,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sweepEvery > 0 {
		go l.sweep()
	}
	return l
}

// Allow records one call against key. The first call opens a window ending at now+window;
// once max calls were accepted every further call is rejected until the window has passed.
func (l *Limiter) Allow(key string, max int, windowLen time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if ok && now.After(w.resetAt) {
		delete(l.windows, key)
		ok = false
	}
	if !ok {
		w = &window{resetAt: now.Add(windowLen)}
		l.windows[key] = w
	}

	if w.count >= max {
		return Result{Allowed: false, Remaining: 0, ResetAt: w.resetAt}
	}

	w.count++
	return Result{Allowed: true, Remaining: max - w.count, ResetAt: w.resetAt}
}

// Reset forgets the window for key
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Len returns the number of tracked windows
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Sweep drops every window whose reset time has passed and returns how many were removed
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Close stops the sweeper goroutine. Safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				log.WithField("removed", removed).Debug("Swept expired rate limit windows")
			}
		}
	}
}
