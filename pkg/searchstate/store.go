// Package searchstate keeps the last applied filter, paging and sort
// parameters of each list view for the lifetime of the application, so that
// navigating away from a list and back restores it.
package searchstate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/rs/zerolog"
)

// View names a list view with its own search state.
type View string

const (
	ViewJobInstances  View = "jobInstances"
	ViewJobExecutions View = "jobExecutions"
)

// Views lists every known view.
var Views = []View{ViewJobInstances, ViewJobExecutions}

var (
	// ErrUnknownView is returned for a view without defaults.
	ErrUnknownView = errors.New("unknown search view")

	// ErrInvalidParams is returned when page < 0 or size <= 0.
	ErrInvalidParams = errors.New("invalid search params")

	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("search state store closed")
)

// Defaults returns the built-in parameters of view.
func Defaults(view View) (endpoint.Params, error) {
	switch view {
	case ViewJobInstances:
		return endpoint.NewParams(
			endpoint.ParamPage, 0,
			endpoint.ParamSize, 20,
			endpoint.ParamSort, "jobInstanceId,desc",
		), nil
	case ViewJobExecutions:
		return endpoint.NewParams(
			endpoint.ParamPage, 0,
			endpoint.ParamSize, 20,
			endpoint.ParamSort, "startTime,desc",
		), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
}

// SearchState is a copy of every view's parameters.
type SearchState struct {
	JobInstances  endpoint.Params
	JobExecutions endpoint.Params
}

// Store is the application-wide search state. It is safe for concurrent use;
// every read and write works on copies.
type Store struct {
	mu     sync.RWMutex
	params map[View]endpoint.Params
	closed bool
	logger zerolog.Logger
}

// New creates a store holding the defaults of every view.
func New(logger zerolog.Logger) *Store {
	s := &Store{
		params: make(map[View]endpoint.Params, len(Views)),
		logger: logger,
	}
	for _, v := range Views {
		s.params[v], _ = Defaults(v)
	}
	return s
}

// Get returns the last stored parameters of view, or its defaults.
func (s *Store) Get(view View) (endpoint.Params, error) {
	s.mu.RLock()
	p, ok := s.params[view]
	s.mu.RUnlock()

	if !ok {
		return Defaults(view)
	}
	return p.Clone(), nil
}

// Set overwrites the parameters of view. The write is visible to every
// following Get.
func (s *Store) Set(view View, params endpoint.Params) error {
	if _, err := Defaults(view); err != nil {
		return err
	}
	if err := Validate(params); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.params[view] = params.Clone()

	s.logger.Debug().
		Str("view", string(view)).
		Str("params", endpoint.QueryString(params)).
		Msg("Search state updated")
	return nil
}

// Reset restores the defaults of view.
func (s *Store) Reset(view View) error {
	def, err := Defaults(view)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.params[view] = def
	return nil
}

// State returns a copy of every view's parameters.
func (s *Store) State() SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SearchState{
		JobInstances:  s.params[ViewJobInstances].Clone(),
		JobExecutions: s.params[ViewJobExecutions].Clone(),
	}
}

// Close drops every stored value. Reads return defaults afterwards and writes
// fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, v := range Views {
		s.params[v], _ = Defaults(v)
	}
}

// Validate checks the paging invariant: page >= 0 and size > 0 where set.
func Validate(params endpoint.Params) error {
	if _, set := params.Get(endpoint.ParamPage); set {
		page, ok := params.Int(endpoint.ParamPage)
		if !ok || page < 0 {
			return fmt.Errorf("%w: page must be a non-negative integer", ErrInvalidParams)
		}
	}
	if _, set := params.Get(endpoint.ParamSize); set {
		size, ok := params.Int(endpoint.ParamSize)
		if !ok || size <= 0 {
			return fmt.Errorf("%w: size must be a positive integer", ErrInvalidParams)
		}
	}
	return nil
}
