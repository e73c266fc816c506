package dashboard

import (
	"context"
	"fmt"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/client"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
)

// NewFetcher returns a fetcher decoding every resource kind into its batch
// type.
func NewFetcher(c *client.Client) fetch.Fetcher {
	return fetch.FetcherFunc(func(ctx context.Context, req endpoint.Request, url string) (any, error) {
		switch req.Kind {
		case endpoint.KindJobInstances:
			return decode[batch.PageResponse[batch.JobInstance]](ctx, c, url)
		case endpoint.KindJobInstanceDetail:
			return decode[batch.JobInstanceDetail](ctx, c, url)
		case endpoint.KindJobExecutions:
			return decode[batch.PageResponse[batch.JobExecution]](ctx, c, url)
		case endpoint.KindJobExecutionDetail:
			return decode[batch.JobExecutionDetail](ctx, c, url)
		case endpoint.KindStepExecutionDetail:
			return decode[batch.StepExecutionDetail](ctx, c, url)
		case endpoint.KindJobStatistics:
			return decode[batch.JobStatistics](ctx, c, url)
		case endpoint.KindJobSpecificStatistics:
			return decode[batch.JobSpecificStatistics](ctx, c, url)
		case endpoint.KindRecentExecutions:
			return decode[[]batch.RecentJobExecution](ctx, c, url)
		}
		return nil, fmt.Errorf("unsupported resource kind %q", req.Kind)
	})
}

func decode[T any](ctx context.Context, c *client.Client, url string) (any, error) {
	v, err := client.GetJSON[T](ctx, c, url)
	if err != nil {
		return nil, err
	}
	return v, nil
}
