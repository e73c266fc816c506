// Package cache provides the in-memory response stores used by the HTTP client
// and the fetch coordinator.
//
// Two layers share the same Store type:
//
//   - "validators": raw response bodies with their ETag, used by the HTTP client
//     to send If-None-Match and to answer 304 Not Modified from memory
//   - "resources": decoded payloads retained by the fetch coordinator so that a
//     later mount of the same request key renders without a loading state
//
// Nothing is persisted; both layers live for the lifetime of the process and
// evict least recently used entries when full.
//
// # Basic Usage
//
//	store, err := cache.NewStore("resources", 256)
//	if err != nil {
//		return err
//	}
//
//	key := cache.Key{
//		Endpoint:    "/api/job_instances",
//		QueryParams: url.Values{"page": []string{"0"}, "size": []string{"20"}},
//	}
//
//	entry, err := store.Get(key.String())
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the backend
//	}
//
// # Conditional Requests
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// the backend answers 304 if the body did not change
//	}
//
// # Metrics
//
//   - batchdash_cache_hits_total{layer} - Cache hits
//   - batchdash_cache_misses_total{layer} - Cache misses
//   - batchdash_cache_entries{layer} - Retained entries
//   - batchdash_cache_evictions_total{layer} - LRU evictions
//   - batchdash_conditional_requests_total - Requests sent with If-None-Match
//   - batchdash_304_responses_total - Conditional request successes
//   - batchdash_cache_errors_total{layer, operation} - Cache operation errors
package cache
