// Package dashboard holds the page controllers of the batch dashboard: list
// views with filters and paging, detail views, the statistics page and the
// error boundary. Every controller reads through the application's shared
// fetch coordinator.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/batch-dashboard/pkg/client"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/Sternrassler/batch-dashboard/pkg/searchstate"
	"github.com/Sternrassler/batch-dashboard/pkg/urlsync"
	"github.com/rs/zerolog"
)

// Application paths.
const (
	PathHome          = "/"
	PathJobInstances  = "/job-instances"
	PathJobExecutions = "/job-executions"
	PathStatistics    = "/statistics"
)

// ErrViewClosed is returned by controller methods after Close.
var ErrViewClosed = errors.New("view closed")

// Config holds the application configuration.
type Config struct {
	// Client configures the backend HTTP client
	Client client.Config

	// Fetch configures the shared resource cache. Its Builder is derived from
	// APIBase.
	Fetch fetch.Config

	// APIBase is the path prefix of the backend API
	APIBase string

	// Location is the address the application starts at, e.g.
	// "/job-instances?jobName=importJob"
	Location string
}

// DefaultConfig returns a default configuration for the backend at baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		Client:   client.DefaultConfig(baseURL),
		Fetch:    fetch.DefaultConfig(),
		APIBase:  endpoint.DefaultBase,
		Location: PathHome,
	}
}

// App is the application context: the client, the shared resource cache, the
// search-state store and the location history. Construct one per running
// dashboard and Close it on shutdown.
type App struct {
	client  *client.Client
	coord   *fetch.Coordinator
	search  *searchstate.Store
	history *urlsync.History
	builder endpoint.Builder
	logger  zerolog.Logger
}

// NewApp creates the application context.
func NewApp(cfg Config) (*App, error) {
	c, err := client.New(cfg.Client)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	loc, err := urlsync.ParseLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	if loc.Path == "" {
		loc.Path = PathHome
	}

	builder := endpoint.NewBuilder(cfg.APIBase)
	fcfg := cfg.Fetch
	fcfg.Builder = builder

	coord, err := fetch.New(NewFetcher(c), fcfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create coordinator: %w", err)
	}

	return &App{
		client:  c,
		coord:   coord,
		search:  searchstate.New(logging.NewLogger("search-state")),
		history: urlsync.NewHistory(loc),
		builder: builder,
		logger:  logging.NewLogger("dashboard"),
	}, nil
}

// Client returns the backend client.
func (a *App) Client() *client.Client { return a.client }

// Coordinator returns the shared resource cache.
func (a *App) Coordinator() *fetch.Coordinator { return a.coord }

// Search returns the search-state store.
func (a *App) Search() *searchstate.Store { return a.search }

// History returns the location history.
func (a *App) History() *urlsync.History { return a.history }

// Builder returns the endpoint builder.
func (a *App) Builder() endpoint.Builder { return a.builder }

// Navigate pushes path (with an optional query) onto the history.
func (a *App) Navigate(path string) error {
	loc, err := urlsync.ParseLocation(path)
	if err != nil {
		return fmt.Errorf("parse location: %w", err)
	}
	a.history.Push(loc)
	return nil
}

// Focus revalidates every watched resource, as when the dashboard window
// regains focus.
func (a *App) Focus() int {
	return a.coord.Focus()
}

// Close tears the application down.
func (a *App) Close() error {
	var errs []error
	if err := a.coord.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close coordinator: %w", err))
	}
	a.search.Close()
	if err := a.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close client: %w", err))
	}
	a.logger.Debug().Msg("Application closed")
	return errors.Join(errs...)
}
