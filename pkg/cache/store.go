package cache

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultSize is the number of entries a store retains when no size is configured.
const DefaultSize = 256

// Store is a bounded in-memory response store. Least recently used entries are
// evicted first. Store is safe for concurrent use.
type Store struct {
	layer string
	lru   *lru.Cache
}

// NewStore creates a store holding up to size entries. The layer name labels
// the store's metrics.
func NewStore(layer string, size int) (*Store, error) {
	if layer == "" {
		return nil, fmt.Errorf("cache layer name is required")
	}
	if size <= 0 {
		size = DefaultSize
	}

	s := &Store{layer: layer}
	c, err := lru.NewWithEvict(size, func(_ interface{}, _ interface{}) {
		CacheEvictions.WithLabelValues(layer).Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	s.lru = c
	return s, nil
}

// Get retrieves an entry by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (s *Store) Get(key string) (*Entry, error) {
	v, ok := s.lru.Get(key)
	if !ok {
		CacheMisses.WithLabelValues(s.layer).Inc()
		return nil, ErrCacheMiss
	}

	entry, ok := v.(*Entry)
	if !ok {
		CacheErrors.WithLabelValues(s.layer, "get").Inc()
		s.lru.Remove(key)
		return nil, ErrInvalidEntry
	}

	CacheHits.WithLabelValues(s.layer).Inc()
	return entry, nil
}

// Set stores an entry, replacing any previous entry for the key.
func (s *Store) Set(key string, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues(s.layer, "set").Inc()
		return fmt.Errorf("cache entry cannot be nil")
	}

	s.lru.Add(key, entry)
	CacheEntries.WithLabelValues(s.layer).Set(float64(s.lru.Len()))
	return nil
}

// MarkStale flags an entry for revalidation without dropping its data.
// Returns ErrCacheMiss if the key doesn't exist.
func (s *Store) MarkStale(key string) error {
	v, ok := s.lru.Peek(key)
	if !ok {
		return ErrCacheMiss
	}
	entry, ok := v.(*Entry)
	if !ok {
		return ErrInvalidEntry
	}

	stale := *entry
	stale.Stale = true
	s.lru.Add(key, &stale)
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(key string) {
	s.lru.Remove(key)
	CacheEntries.WithLabelValues(s.layer).Set(float64(s.lru.Len()))
}

// Keys returns the retained keys from oldest to newest.
func (s *Store) Keys() []string {
	raw := s.lru.Keys()
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if ks, ok := k.(string); ok {
			keys = append(keys, ks)
		}
	}
	return keys
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	return s.lru.Len()
}

// Purge drops every entry.
func (s *Store) Purge() {
	s.lru.Purge()
	CacheEntries.WithLabelValues(s.layer).Set(0)
}
