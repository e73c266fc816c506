package dashboard

import (
	"sync"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/Sternrassler/batch-dashboard/pkg/searchstate"
	"github.com/Sternrassler/batch-dashboard/pkg/urlsync"
	"github.com/rs/zerolog"
)

// Filter is the filter form of a list view. Empty fields are not applied.
type Filter struct {
	JobName       string
	Status        string
	StartDateFrom string
	StartDateTo   string
}

func (f Filter) value(key string) string {
	switch key {
	case endpoint.ParamJobName:
		return f.JobName
	case endpoint.ParamStatus:
		return f.Status
	case endpoint.ParamStartDateFrom:
		return f.StartDateFrom
	case endpoint.ParamStartDateTo:
		return f.StartDateTo
	}
	return ""
}

// ListView is the controller of a paginated list. It restores its parameters
// from the location and the search-state store, records every change in the
// store and mirrors the job name into the location.
type ListView[T any] struct {
	app     *App
	view    searchstate.View
	request func(endpoint.Params) endpoint.Request
	fields  []string
	sync    *urlsync.Synchronizer
	logger  zerolog.Logger

	mu      sync.Mutex
	params  endpoint.Params
	sub     *fetch.Subscription
	closed  bool
	changes chan struct{}
}

// OpenJobInstances opens the job instances list.
func (a *App) OpenJobInstances() (*ListView[batch.JobInstance], error) {
	return openList[batch.JobInstance](a, searchstate.ViewJobInstances, endpoint.JobInstances,
		endpoint.ParamJobName)
}

// OpenJobExecutions opens the job executions list.
func (a *App) OpenJobExecutions() (*ListView[batch.JobExecution], error) {
	return openList[batch.JobExecution](a, searchstate.ViewJobExecutions, endpoint.JobExecutions,
		endpoint.ParamJobName, endpoint.ParamStatus, endpoint.ParamStartDateFrom, endpoint.ParamStartDateTo)
}

func openList[T any](a *App, view searchstate.View, request func(endpoint.Params) endpoint.Request, fields ...string) (*ListView[T], error) {
	stored, err := a.search.Get(view)
	if err != nil {
		return nil, err
	}

	lv := &ListView[T]{
		app:     a,
		view:    view,
		request: request,
		fields:  fields,
		sync:    urlsync.New(a.history, logging.NewLogger("url-sync")),
		logger:  logging.NewLogger("list-view").With().Str("view", string(view)).Logger(),
		changes: make(chan struct{}, 1),
	}

	params := lv.sync.Initial(stored)
	if err := a.search.Set(view, params); err != nil {
		return nil, err
	}

	lv.mu.Lock()
	defer lv.mu.Unlock()

	lv.params = params
	lv.sync.Sync(params)
	lv.subscribeLocked()
	return lv, nil
}

// View returns the search-state view name.
func (lv *ListView[T]) View() searchstate.View {
	return lv.view
}

// Params returns a copy of the current parameters.
func (lv *ListView[T]) Params() endpoint.Params {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.params.Clone()
}

// Request returns the request for the current parameters.
func (lv *ListView[T]) Request() endpoint.Request {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.request(lv.params)
}

// Filter returns the filter form as currently applied.
func (lv *ListView[T]) Filter() Filter {
	p := lv.Params()
	return Filter{
		JobName:       p.String(endpoint.ParamJobName),
		Status:        p.String(endpoint.ParamStatus),
		StartDateFrom: p.String(endpoint.ParamStartDateFrom),
		StartDateTo:   p.String(endpoint.ParamStartDateTo),
	}
}

// ApplyFilter applies f and returns to the first page. Fields the view does
// not support are ignored.
func (lv *ListView[T]) ApplyFilter(f Filter) error {
	return lv.update(func(p endpoint.Params) endpoint.Params {
		for _, key := range lv.fields {
			if v := f.value(key); v != "" {
				p = p.Set(key, v)
			} else {
				p = p.Unset(key)
			}
		}
		return p.Set(endpoint.ParamPage, 0)
	})
}

// ResetFilters restores the view's default parameters.
func (lv *ListView[T]) ResetFilters() error {
	def, err := searchstate.Defaults(lv.view)
	if err != nil {
		return err
	}
	return lv.update(func(endpoint.Params) endpoint.Params { return def })
}

// SetPage moves to the zero-based page n.
func (lv *ListView[T]) SetPage(n int) error {
	return lv.update(func(p endpoint.Params) endpoint.Params {
		return p.Set(endpoint.ParamPage, n)
	})
}

// CurrentPage returns the zero-based page being shown.
func (lv *ListView[T]) CurrentPage() int {
	page, _ := lv.Params().Int(endpoint.ParamPage)
	return page
}

// NextPage moves forward one page when there is one.
func (lv *ListView[T]) NextPage() error {
	page := lv.CurrentPage()
	if resp, ok := lv.Page(); ok && !resp.HasNext() {
		return nil
	}
	return lv.SetPage(page + 1)
}

// PreviousPage moves back one page when there is one.
func (lv *ListView[T]) PreviousPage() error {
	page := lv.CurrentPage()
	if page <= 0 {
		return nil
	}
	return lv.SetPage(page - 1)
}

// Snapshot returns the state of the current page request.
func (lv *ListView[T]) Snapshot() fetch.Snapshot {
	lv.mu.Lock()
	sub := lv.sub
	lv.mu.Unlock()
	return sub.Snapshot()
}

// Page returns the current page, false before the first page arrived.
func (lv *ListView[T]) Page() (batch.PageResponse[T], bool) {
	return fetch.Data[batch.PageResponse[T]](lv.Snapshot())
}

// Revalidate refetches the current page.
func (lv *ListView[T]) Revalidate() bool {
	lv.mu.Lock()
	sub := lv.sub
	lv.mu.Unlock()
	return sub.Revalidate()
}

// LocationChanged picks up the job name after a back or forward navigation.
// It reports whether the parameters changed.
func (lv *ListView[T]) LocationChanged() (bool, error) {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if lv.closed {
		return false, ErrViewClosed
	}

	next, changed := lv.sync.FromLocation(lv.params)
	if !changed {
		return false, nil
	}
	if err := lv.app.search.Set(lv.view, next); err != nil {
		return false, err
	}
	lv.params = next
	lv.subscribeLocked()
	return true, nil
}

// Changes signals after the view's state changed.
func (lv *ListView[T]) Changes() <-chan struct{} {
	return lv.changes
}

// Close releases the view's subscription.
func (lv *ListView[T]) Close() {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if lv.closed {
		return
	}
	lv.closed = true
	lv.sub.Close()
	select {
	case <-lv.changes:
	default:
	}
	close(lv.changes)
}

func (lv *ListView[T]) update(mutate func(endpoint.Params) endpoint.Params) error {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if lv.closed {
		return ErrViewClosed
	}

	next := mutate(lv.params.Clone())
	if err := lv.app.search.Set(lv.view, next); err != nil {
		return err
	}
	lv.params = next
	lv.sync.Sync(next)
	lv.subscribeLocked()

	lv.logger.Debug().Str("params", endpoint.QueryString(next)).Msg("Parameters changed")
	return nil
}

// subscribeLocked watches the current parameters and releases the previous
// subscription. An unchanged key keeps its data without a new request.
func (lv *ListView[T]) subscribeLocked() {
	next := lv.app.coord.Watch(lv.request(lv.params), true)
	prev := lv.sub
	lv.sub = next
	go lv.forward(next)
	if prev != nil {
		prev.Close()
	}
	lv.signalLocked()
}

func (lv *ListView[T]) forward(sub *fetch.Subscription) {
	for range sub.Changes() {
		lv.mu.Lock()
		if !lv.closed {
			lv.signalLocked()
		}
		lv.mu.Unlock()
	}
}

func (lv *ListView[T]) signalLocked() {
	select {
	case lv.changes <- struct{}{}:
	default:
	}
}
