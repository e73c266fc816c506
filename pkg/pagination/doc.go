// Package pagination provides page-number windows for list views and parallel
// fetching of every page of a paginated backend collection.
//
// The backend pages are zero-based and every response carries totalPages, so
// the batch fetcher asks for page 0 first and then fans the remaining pages
// out over a bounded worker pool:
//
//	bf := pagination.NewBatchFetcher[batch.JobExecution](fetchPage, pagination.DefaultConfig())
//	rows, err := bf.FetchAll(ctx)
//
// The batch fetcher:
//   - Fetches page 0 to learn the total page count
//   - Runs at most MaxConcurrency page requests at once
//   - Returns the rows in page order
//   - Fails as a whole on the first page error
package pagination
