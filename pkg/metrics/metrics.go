// Package metrics exposes the Prometheus metrics of the batch dashboard.
// All metrics are defined in their respective packages (client, cache,
// throttle, fetch) and registered via promauto on the default registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the default Prometheus registry used by the dashboard.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - batchdash_requests_total{endpoint, status} (Counter): Backend requests by endpoint and HTTP status
//   - batchdash_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - batchdash_errors_total{kind} (Counter): Errors by kind (auth, api, transport)
//
// Cache Metrics (pkg/cache):
//   - batchdash_cache_hits_total{layer} (Counter): Hits by layer (validators, resources)
//   - batchdash_cache_misses_total{layer} (Counter): Misses by layer
//   - batchdash_cache_entries{layer} (Gauge): Entries held by layer
//   - batchdash_cache_evictions_total{layer} (Counter): LRU evictions by layer
//   - batchdash_conditional_requests_total (Counter): Requests sent with If-None-Match
//   - batchdash_304_responses_total (Counter): 304 Not Modified responses
//   - batchdash_cache_errors_total{layer, operation} (Counter): Cache operation errors
//
// Revalidation Metrics (pkg/throttle):
//   - batchdash_revalidations_allowed_total (Counter): Manual revalidations let through
//   - batchdash_revalidations_throttled_total (Counter): Manual revalidations dropped
//   - batchdash_throttle_keys (Gauge): Keys with throttle state
//
// Fetch Metrics (pkg/fetch):
//   - batchdash_fetches_total{trigger} (Counter): Fetches by trigger (mount, stale, focus, revalidate, invalidate, get)
//   - batchdash_fetch_duration_seconds (Histogram): Fetch duration
//   - batchdash_fetch_errors_total (Counter): Failed fetches
//   - batchdash_fetch_dedup_joins_total (Counter): Triggers that joined an in-flight request
//   - batchdash_fetch_discarded_results_total (Counter): Results superseded by a newer request
//   - batchdash_fetch_live_entries (Gauge): Keys with subscribers or a request in flight
//
// Example Prometheus Queries:
//
//   # Deduplication Ratio
//   rate(batchdash_fetch_dedup_joins_total[5m]) / rate(batchdash_fetches_total[5m])
//
//   # Authentication Failures
//   rate(batchdash_errors_total{kind="auth"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(batchdash_request_duration_seconds_bucket[5m]))
//
//   # 304 Response Rate
//   rate(batchdash_304_responses_total[5m]) / rate(batchdash_requests_total[5m])

// Handler serves /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Serve runs the metrics endpoint on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	}
}
