package dashboard

import (
	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
)

// Resource is a typed view of one fetched resource.
type Resource[T any] struct {
	sub *fetch.Subscription
}

func watch[T any](a *App, req endpoint.Request, enabled bool) *Resource[T] {
	return &Resource[T]{sub: a.coord.Watch(req, enabled)}
}

// Snapshot returns the untyped state.
func (r *Resource[T]) Snapshot() fetch.Snapshot {
	return r.sub.Snapshot()
}

// Data returns the resource, false before it arrived.
func (r *Resource[T]) Data() (T, bool) {
	return fetch.Data[T](r.sub.Snapshot())
}

// State classifies the resource for display.
func (r *Resource[T]) State() ViewState {
	return StateOf(r.sub.Snapshot())
}

// Enabled reports whether the resource is requested at all.
func (r *Resource[T]) Enabled() bool {
	return r.sub.Enabled()
}

// Revalidate refetches the resource.
func (r *Resource[T]) Revalidate() bool {
	return r.sub.Revalidate()
}

// Changes signals after the state changed.
func (r *Resource[T]) Changes() <-chan struct{} {
	return r.sub.Changes()
}

// Close releases the resource.
func (r *Resource[T]) Close() {
	r.sub.Close()
}

// OpenJobInstance watches a job instance with its executions. Ids <= 0 are
// not requested.
func (a *App) OpenJobInstance(id int64) *Resource[batch.JobInstanceDetail] {
	return watch[batch.JobInstanceDetail](a, endpoint.JobInstanceDetail(id), id > 0)
}

// OpenJobExecution watches a job execution with its steps. Ids <= 0 are not
// requested.
func (a *App) OpenJobExecution(id int64) *Resource[batch.JobExecutionDetail] {
	return watch[batch.JobExecutionDetail](a, endpoint.JobExecutionDetail(id), id > 0)
}

// OpenStepExecution watches a step execution. Ids <= 0 are not requested.
func (a *App) OpenStepExecution(id int64) *Resource[batch.StepExecutionDetail] {
	return watch[batch.StepExecutionDetail](a, endpoint.StepExecutionDetail(id), id > 0)
}
