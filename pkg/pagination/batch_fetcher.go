package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// MaxPages stops the fetch from walking unbounded collections. 0 means no
	// limit.
	MaxPages int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
	}
}

// PageFetcher loads one zero-based page.
type PageFetcher[T any] func(ctx context.Context, page int) (batch.PageResponse[T], error)

// BatchFetcher fetches every page of a collection in parallel.
type BatchFetcher[T any] struct {
	fetch  PageFetcher[T]
	config Config
	logger zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher[T any](fetch PageFetcher[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &BatchFetcher[T]{
		fetch:  fetch,
		config: config,
		logger: logging.NewLogger("batch-fetcher"),
	}
}

// FetchAll returns the content of every page in page order.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context) ([]T, error) {
	start := time.Now()

	first, err := bf.fetchPage(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	totalPages := first.TotalPages
	if bf.config.MaxPages > 0 && totalPages > bf.config.MaxPages {
		bf.logger.Warn().
			Int("total_pages", totalPages).
			Int("max_pages", bf.config.MaxPages).
			Msg("Truncating fetch to max pages")
		totalPages = bf.config.MaxPages
	}

	bf.logger.Debug().
		Int("total_pages", totalPages).
		Int64("total_elements", first.TotalElements).
		Msg("Starting parallel page fetch")

	// Single page optimization
	if totalPages <= 1 {
		return first.Content, nil
	}

	pages := make([][]T, totalPages)
	pages[0] = first.Content

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)
	for p := 1; p < totalPages; p++ {
		p := p
		g.Go(func() error {
			resp, err := bf.fetchPage(gctx, p)
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", p, err)
			}
			pages[p] = resp.Content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, content := range pages {
		n += len(content)
	}
	out := make([]T, 0, n)
	for _, content := range pages {
		out = append(out, content...)
	}

	bf.logger.Info().
		Int("pages", totalPages).
		Int("rows", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return out, nil
}

func (bf *BatchFetcher[T]) fetchPage(ctx context.Context, page int) (batch.PageResponse[T], error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()
	return bf.fetch(pageCtx, page)
}
