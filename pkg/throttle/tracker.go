package throttle

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for revalidation throttling.
var (
	revalidationsAllowedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdash_revalidations_allowed_total",
		Help: "Total number of gated revalidations let through",
	})

	revalidationsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdash_revalidations_throttled_total",
		Help: "Total number of revalidations rejected by the per-key throttle",
	})

	throttledKeys = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batchdash_throttle_keys",
		Help: "Number of resource keys with throttle state",
	})
)

type keyLimiter struct {
	limiter     *rate.Limiter
	lastAllowed time.Time
	throttled   int64
}

// Tracker holds one token bucket per resource key. It is safe for concurrent
// use.
type Tracker struct {
	mu     sync.Mutex
	keys   map[string]*keyLimiter
	window time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracker creates a tracker that lets through at most one revalidation per
// key and window. A window <= 0 uses DefaultWindow. now may be nil.
func NewTracker(window time.Duration, now func() time.Time, logger zerolog.Logger) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		keys:   make(map[string]*keyLimiter),
		window: window,
		now:    now,
		logger: logger,
	}
}

// Window returns the enforced spacing.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// Allow reports whether a revalidation of key may be issued now, consuming the
// key's token when it does.
func (t *Tracker) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	kl := t.limiterLocked(key)
	if !kl.limiter.AllowN(now, 1) {
		kl.throttled++
		revalidationsThrottledTotal.Inc()
		t.logger.Debug().
			Str("key", key).
			Time("last_allowed", kl.lastAllowed).
			Msg("Revalidation throttled")
		return false
	}

	kl.lastAllowed = now
	revalidationsAllowedTotal.Inc()
	return true
}

// State returns the throttle state of key.
func (t *Tracker) State(key string) (KeyState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kl, ok := t.keys[key]
	if !ok {
		return KeyState{}, false
	}
	return KeyState{
		Key:         key,
		LastAllowed: kl.lastAllowed,
		Throttled:   kl.throttled,
		Window:      t.window,
	}, true
}

// Forget drops the state of key, e.g. when its last subscriber goes away.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.keys[key]; ok {
		delete(t.keys, key)
		throttledKeys.Dec()
	}
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.keys)
}

func (t *Tracker) limiterLocked(key string) *keyLimiter {
	kl, ok := t.keys[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rate.Every(t.window), 1)}
		t.keys[key] = kl
		throttledKeys.Inc()
	}
	return kl
}
