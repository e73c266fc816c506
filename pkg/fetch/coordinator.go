// Package fetch coordinates resource reads for the dashboard: one retained
// entry per request key, in-flight deduplication, stale-while-revalidate and
// last-issued-wins ordering of results.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/cache"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/Sternrassler/batch-dashboard/pkg/throttle"
	"github.com/rs/zerolog"
)

// ErrClosed is returned once the coordinator has been closed.
var ErrClosed = errors.New("fetch coordinator closed")

// Fetcher loads the resource described by req from url.
type Fetcher interface {
	Fetch(ctx context.Context, req endpoint.Request, url string) (any, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req endpoint.Request, url string) (any, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req endpoint.Request, url string) (any, error) {
	return f(ctx, req, url)
}

// Trigger names what caused a request.
type Trigger string

const (
	TriggerMount      Trigger = "mount"
	TriggerStale      Trigger = "stale"
	TriggerFocus      Trigger = "focus"
	TriggerManual     Trigger = "revalidate"
	TriggerInvalidate Trigger = "invalidate"
	TriggerGet        Trigger = "get"
)

// Config holds the coordinator configuration.
type Config struct {
	// Builder resolves requests to URLs and keys
	Builder endpoint.Builder

	// StaleTime marks data stale once it is older than this. 0 keeps data
	// fresh until invalidated.
	StaleTime time.Duration

	// FocusThrottle is the minimum spacing of manual and focus revalidations
	// per key
	FocusThrottle time.Duration

	// RetainedEntries bounds the settled responses kept for keys nobody watches
	RetainedEntries int

	// RevalidateOnFocus enables Focus
	RevalidateOnFocus bool

	// Now is the clock. nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		Builder:           endpoint.NewBuilder(""),
		FocusThrottle:     throttle.DefaultWindow,
		RetainedEntries:   cache.DefaultSize,
		RevalidateOnFocus: true,
	}
}

// flight is one issued request. done is closed after data and err are set.
type flight struct {
	gen  uint64
	done chan struct{}
	data any
	err  error
}

// entry is the live state of one request key.
type entry struct {
	key string
	url string
	req endpoint.Request

	data      any
	hasData   bool
	err       error
	fetchedAt time.Time
	stale     bool

	issued  uint64
	applied uint64
	flight  *flight

	subs map[*Subscription]struct{}
}

// Coordinator is the shared resource cache. It is safe for concurrent use.
type Coordinator struct {
	fetcher  Fetcher
	builder  endpoint.Builder
	config   Config
	now      func() time.Time
	throttle *throttle.Tracker
	retained *cache.Store
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// New creates a coordinator reading through fetcher.
func New(fetcher Fetcher, cfg Config) (*Coordinator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.StaleTime < 0 {
		return nil, fmt.Errorf("stale time must be >= 0 (got %s)", cfg.StaleTime)
	}
	if cfg.FocusThrottle < 0 {
		return nil, fmt.Errorf("focus throttle must be >= 0 (got %s)", cfg.FocusThrottle)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	retained, err := cache.NewStore("resources", cfg.RetainedEntries)
	if err != nil {
		return nil, fmt.Errorf("create resource store: %w", err)
	}

	logger := logging.NewLogger("fetch-coordinator")
	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		fetcher:  fetcher,
		builder:  cfg.Builder,
		config:   cfg,
		now:      now,
		throttle: throttle.NewTracker(cfg.FocusThrottle, now, logger),
		retained: retained,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*entry),
	}, nil
}

// Watch subscribes to req. The first snapshot already carries retained data
// for the key; otherwise a request is issued and the snapshot is loading.
// A disabled subscription issues nothing and stays empty.
func (c *Coordinator) Watch(req endpoint.Request, enabled bool) *Subscription {
	sub := &Subscription{
		c:       c,
		req:     req,
		changes: make(chan struct{}, 1),
	}
	if !enabled {
		sub.disabled = true
		return sub
	}

	key, url, err := c.resolve(req)
	if err != nil {
		sub.last = Snapshot{Err: err}
		return sub
	}
	sub.key = key

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		sub.last = Snapshot{Err: ErrClosed}
		return sub
	}

	e := c.entryLocked(key, url, req)
	e.subs[sub] = struct{}{}
	sub.entry = e
	sub.alive = true

	if e.flight == nil {
		switch {
		case !e.hasData:
			c.startLocked(e, TriggerMount)
		case c.isStaleLocked(e):
			c.startLocked(e, TriggerStale)
		}
	} else {
		dedupJoinsTotal.Inc()
	}

	return sub
}

// Get returns the data of req, waiting for a request when nothing fresh is
// retained. It joins a request already in flight for the same key.
func (c *Coordinator) Get(ctx context.Context, req endpoint.Request) (any, error) {
	key, url, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}

	e := c.entryLocked(key, url, req)
	if e.hasData && !c.isStaleLocked(e) && e.flight == nil {
		data := e.data
		c.dropIfIdleLocked(e)
		c.mu.Unlock()
		return data, nil
	}

	f := e.flight
	if f == nil {
		f = c.startLocked(e, TriggerGet)
	} else {
		dedupJoinsTotal.Inc()
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.data, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Focus revalidates every watched key, as a window regaining focus would.
// Keys with a request in flight join it; the others are throttled per key.
// It returns the number of requests issued.
func (c *Coordinator) Focus() int {
	if !c.config.RevalidateOnFocus {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}

	started := 0
	for _, e := range c.entries {
		if len(e.subs) == 0 {
			continue
		}
		if e.flight != nil {
			dedupJoinsTotal.Inc()
			continue
		}
		if !c.throttle.Allow(e.key) {
			continue
		}
		c.startLocked(e, TriggerFocus)
		started++
	}

	c.logger.Debug().Int("started", started).Msg("Focus revalidation")
	return started
}

// Invalidate marks the data of req stale. Watched keys are refetched in the
// background while the stale data stays visible.
func (c *Coordinator) Invalidate(req endpoint.Request) error {
	key, _, err := c.resolve(req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.invalidateLocked(key)
	return nil
}

// InvalidateAll marks every retained and live key stale.
func (c *Coordinator) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	seen := make(map[string]struct{})
	for _, key := range c.retained.Keys() {
		c.invalidateLocked(key)
		seen[key] = struct{}{}
	}
	for key := range c.entries {
		if _, ok := seen[key]; !ok {
			c.invalidateLocked(key)
		}
	}
}

// Close cancels in-flight requests, closes every subscription and waits for
// running fetches to return.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()

	for _, e := range c.entries {
		for sub := range e.subs {
			sub.closeLocked()
		}
	}
	c.entries = make(map[string]*entry)
	liveEntries.Set(0)
	c.mu.Unlock()

	c.wg.Wait()
	c.retained.Purge()
	c.logger.Debug().Msg("Coordinator closed")
	return nil
}

// Key returns the request key of req.
func (c *Coordinator) Key(req endpoint.Request) (string, error) {
	key, _, err := c.resolve(req)
	return key, err
}

func (c *Coordinator) resolve(req endpoint.Request) (string, string, error) {
	k, err := c.builder.Key(req)
	if err != nil {
		return "", "", fmt.Errorf("resolve key: %w", err)
	}
	url, err := c.builder.URL(req)
	if err != nil {
		return "", "", fmt.Errorf("resolve url: %w", err)
	}
	return k.String(), url, nil
}

// entryLocked returns the live entry of key, seeding a new one from the
// retained store.
func (c *Coordinator) entryLocked(key, url string, req endpoint.Request) *entry {
	if e, ok := c.entries[key]; ok {
		return e
	}

	e := &entry{
		key:  key,
		url:  url,
		req:  req,
		subs: make(map[*Subscription]struct{}),
	}
	if kept, err := c.retained.Get(key); err == nil {
		e.data = kept.Data
		e.hasData = true
		e.fetchedAt = kept.FetchedAt
		e.stale = kept.Stale
	}
	c.entries[key] = e
	liveEntries.Set(float64(len(c.entries)))
	return e
}

func (c *Coordinator) isStaleLocked(e *entry) bool {
	if e.stale {
		return true
	}
	if c.config.StaleTime <= 0 || !e.hasData {
		return false
	}
	return c.now().Sub(e.fetchedAt) > c.config.StaleTime
}

func (c *Coordinator) invalidateLocked(key string) {
	if err := c.retained.MarkStale(key); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to mark retained entry stale")
	}

	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.stale = true
	if len(e.subs) > 0 && e.flight == nil {
		c.startLocked(e, TriggerInvalidate)
	}
}

// startLocked issues a new generation for e. It supersedes any request
// already in flight for the key.
func (c *Coordinator) startLocked(e *entry, trigger Trigger) *flight {
	e.issued++
	f := &flight{gen: e.issued, done: make(chan struct{})}
	e.flight = f

	fetchesTotal.WithLabelValues(string(trigger)).Inc()
	c.logger.Debug().
		Str("key", e.key).
		Str("trigger", string(trigger)).
		Uint64("generation", f.gen).
		Msg("Issuing request")

	c.notifyLocked(e)

	c.wg.Add(1)
	go c.run(e, f)
	return f
}

func (c *Coordinator) run(e *entry, f *flight) {
	defer c.wg.Done()

	start := time.Now()
	data, err := c.fetcher.Fetch(c.ctx, e.req, e.url)
	fetchDuration.Observe(time.Since(start).Seconds())

	c.complete(e, f, data, err)
}

// complete settles f and applies its result when its generation is newer
// than the last one applied to e.
func (c *Coordinator) complete(e *entry, f *flight, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.data, f.err = data, err
	close(f.done)

	if c.closed {
		return
	}

	if e.flight == f {
		e.flight = nil
	}

	if f.gen <= e.applied {
		discardedResultsTotal.Inc()
		c.logger.Debug().
			Str("key", e.key).
			Uint64("generation", f.gen).
			Uint64("applied", e.applied).
			Msg("Discarding superseded result")
		c.notifyLocked(e)
		c.dropIfIdleLocked(e)
		return
	}
	e.applied = f.gen

	if err != nil {
		fetchErrorsTotal.Inc()
		e.err = err
		c.logger.Debug().Err(err).Str("key", e.key).Msg("Request failed")
	} else {
		now := c.now()
		e.data = data
		e.hasData = true
		e.err = nil
		e.fetchedAt = now
		e.stale = false
		if err := c.retained.Set(e.key, &cache.Entry{Data: data, FetchedAt: now}); err != nil {
			c.logger.Warn().Err(err).Str("key", e.key).Msg("Failed to retain response")
		}
	}

	c.notifyLocked(e)
	c.dropIfIdleLocked(e)
}

func (c *Coordinator) notifyLocked(e *entry) {
	for sub := range e.subs {
		sub.signal()
	}
}

// dropIfIdleLocked removes e once nobody watches it and nothing is in flight.
// Its settled data stays in the retained store.
func (c *Coordinator) dropIfIdleLocked(e *entry) {
	if len(e.subs) > 0 || e.flight != nil {
		return
	}
	if c.entries[e.key] == e {
		delete(c.entries, e.key)
		c.throttle.Forget(e.key)
		liveEntries.Set(float64(len(c.entries)))
	}
}
