package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/client"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/pagination"
	"github.com/Sternrassler/batch-dashboard/pkg/searchstate"
	"github.com/spf13/cobra"
)

func exportCmd(rt *runtime) *cobra.Command {
	var (
		f           listFlags
		concurrency int
		maxPages    int
	)

	cmd := &cobra.Command{
		Use:       "export (instances|executions)",
		Short:     "Print every row of a list as one JSON array",
		ValidArgs: []string{"instances", "executions"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pc := pagination.Config{
				MaxConcurrency: concurrency,
				Timeout:        rt.cfg.Timeout,
				MaxPages:       maxPages,
			}

			app, stop, err := rt.newApp(ctx)
			if err != nil {
				return err
			}
			defer stop()

			var (
				rows any
				n    int
			)
			start := time.Now()
			switch args[0] {
			case "instances":
				p, err := f.params(searchstate.ViewJobInstances)
				if err != nil {
					return err
				}
				all, err := exportAll[batch.JobInstance](ctx, app.Client(), app.Builder(), endpoint.JobInstances, p, pc)
				if err != nil {
					return err
				}
				rows, n = all, len(all)
			case "executions":
				p, err := f.params(searchstate.ViewJobExecutions)
				if err != nil {
					return err
				}
				all, err := exportAll[batch.JobExecution](ctx, app.Client(), app.Builder(), endpoint.JobExecutions, p, pc)
				if err != nil {
					return err
				}
				rows, n = all, len(all)
			}

			rt.logger.Info().
				Str("resource", args[0]).
				Int("rows", n).
				Dur("duration", time.Since(start)).
				Msg("Export completed")
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&f.jobName, "job-name", "", "filter by job name")
	cmd.Flags().StringVar(&f.status, "status", "", "filter executions by status")
	cmd.Flags().StringVar(&f.from, "from", "", "executions started at or after this date (yyyy-MM-dd)")
	cmd.Flags().StringVar(&f.to, "to", "", "executions started at or before this date (yyyy-MM-dd)")
	cmd.Flags().IntVar(&f.size, "size", 100, "rows per page request")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort order, e.g. startTime,asc")
	cmd.Flags().IntVar(&concurrency, "concurrency", pagination.DefaultConfig().MaxConcurrency, "parallel page requests")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = all)")

	return cmd
}

// exportAll walks every page of a list. The list is read directly from the
// client; exports bypass the resource cache.
func exportAll[T any](ctx context.Context, c *client.Client, b endpoint.Builder,
	request func(endpoint.Params) endpoint.Request, params endpoint.Params, cfg pagination.Config) ([]T, error) {

	fetch := func(ctx context.Context, page int) (batch.PageResponse[T], error) {
		url, err := b.URL(request(params.Set(endpoint.ParamPage, page)))
		if err != nil {
			return batch.PageResponse[T]{}, err
		}
		return client.GetJSON[batch.PageResponse[T]](ctx, c, url)
	}

	rows, err := pagination.NewBatchFetcher(pagination.PageFetcher[T](fetch), cfg).FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return rows, nil
}
