package pagination

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/google/go-cmp/cmp"
)

// pagedRows serves rows 0..total-1 in pages of size.
func pagedRows(total, size int, calls *int32) PageFetcher[int] {
	return func(ctx context.Context, page int) (batch.PageResponse[int], error) {
		atomic.AddInt32(calls, 1)
		var content []int
		for i := page * size; i < (page+1)*size && i < total; i++ {
			content = append(content, i)
		}
		return batch.PageResponse[int]{
			Content:       content,
			Page:          page,
			Size:          size,
			TotalElements: int64(total),
			TotalPages:    batch.TotalPages(int64(total), size),
		}, nil
	}
}

func TestBatchFetcher_FetchAll(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		maxPages  int
		wantRows  int
		wantCalls int32
	}{
		{name: "empty collection", total: 0, size: 20, wantRows: 0, wantCalls: 1},
		{name: "single page", total: 15, size: 20, wantRows: 15, wantCalls: 1},
		{name: "many pages", total: 150, size: 20, wantRows: 150, wantCalls: 8},
		{name: "truncated", total: 150, size: 20, maxPages: 3, wantRows: 60, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			cfg := DefaultConfig()
			cfg.MaxPages = tt.maxPages
			bf := NewBatchFetcher(pagedRows(tt.total, tt.size, &calls), cfg)

			rows, err := bf.FetchAll(context.Background())
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Fatalf("rows = %d, want %d", len(rows), tt.wantRows)
			}
			for i, v := range rows {
				if v != i {
					t.Fatalf("row %d = %d, pages out of order", i, v)
				}
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBatchFetcher_InconsistentTotals(t *testing.T) {
	tests := []struct {
		name          string
		totalElements int64
	}{
		{name: "negative total", totalElements: -5},
		{name: "total far above the fetched rows", totalElements: 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetch := func(ctx context.Context, page int) (batch.PageResponse[int], error) {
				return batch.PageResponse[int]{
					Content:       []int{page * 2, page*2 + 1},
					Page:          page,
					Size:          2,
					TotalElements: tt.totalElements,
					TotalPages:    2,
				}, nil
			}

			rows, err := NewBatchFetcher(PageFetcher[int](fetch), DefaultConfig()).FetchAll(context.Background())
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if diff := cmp.Diff([]int{0, 1, 2, 3}, rows); diff != "" {
				t.Errorf("FetchAll() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBatchFetcher_RespectsConcurrency(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
		calls    int32
	)
	inner := pagedRows(200, 10, &calls)
	fetch := func(ctx context.Context, page int) (batch.PageResponse[int], error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
		return inner(ctx, page)
	}

	bf := NewBatchFetcher[int](fetch, Config{MaxConcurrency: 2})
	if _, err := bf.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestBatchFetcher_PageError(t *testing.T) {
	boom := errors.New("backend down")
	var calls int32
	inner := pagedRows(100, 10, &calls)
	fetch := func(ctx context.Context, page int) (batch.PageResponse[int], error) {
		if page == 5 {
			return batch.PageResponse[int]{}, boom
		}
		return inner(ctx, page)
	}

	_, err := NewBatchFetcher[int](fetch, DefaultConfig()).FetchAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("FetchAll() error = %v, want %v", err, boom)
	}
}

func TestBatchFetcher_FirstPageError(t *testing.T) {
	boom := errors.New("unauthorized")
	fetch := func(ctx context.Context, page int) (batch.PageResponse[string], error) {
		return batch.PageResponse[string]{}, boom
	}

	rows, err := NewBatchFetcher[string](fetch, DefaultConfig()).FetchAll(context.Background())
	if !errors.Is(err, boom) || rows != nil {
		t.Fatalf("FetchAll() = %v, %v", rows, err)
	}
	if diff := cmp.Diff("fetch first page: unauthorized", err.Error()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}
