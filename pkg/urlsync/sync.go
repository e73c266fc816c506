package urlsync

import (
	"net/url"

	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/rs/zerolog"
)

// Synchronizer keeps a list view's job-name filter and the location query in
// step.
type Synchronizer struct {
	nav    Navigator
	logger zerolog.Logger
}

// New creates a synchronizer writing to nav.
func New(nav Navigator, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{nav: nav, logger: logger}
}

// JobName returns the job name in the current location, "" when absent.
func (s *Synchronizer) JobName() string {
	return s.nav.Location().Query().Get(endpoint.ParamJobName)
}

// Initial returns the parameters a list view opens with. A job name in the
// location takes precedence over the stored one.
func (s *Synchronizer) Initial(stored endpoint.Params) endpoint.Params {
	if name := s.JobName(); name != "" {
		return stored.Set(endpoint.ParamJobName, name)
	}
	return stored.Clone()
}

// Query returns the query string that mirrors params.
func Query(params endpoint.Params) string {
	q := url.Values{}
	if name := params.String(endpoint.ParamJobName); name != "" {
		q.Set(endpoint.ParamJobName, name)
	}
	return q.Encode()
}

// Sync rewrites the location query to mirror params. Nothing happens when the
// query would not change; it reports whether a navigation was made.
func (s *Synchronizer) Sync(params endpoint.Params) bool {
	cur := s.nav.Location()
	next := Query(params)
	if next == cur.Query().Encode() {
		return false
	}

	s.nav.Navigate(Location{Path: cur.Path, RawQuery: next}, false)
	s.logger.Debug().
		Str("path", cur.Path).
		Str("query", next).
		Msg("Location synced")
	return true
}

// FromLocation applies the location's job name to params after a back or
// forward navigation. It reports false when params already match; otherwise
// the returned params carry the location's job name (undefined when absent)
// and start at page 0.
func (s *Synchronizer) FromLocation(params endpoint.Params) (endpoint.Params, bool) {
	name := s.JobName()
	if name == params.String(endpoint.ParamJobName) {
		return params, false
	}

	out := params.Unset(endpoint.ParamJobName)
	if name != "" {
		out = out.Set(endpoint.ParamJobName, name)
	}
	if _, ok := out.Get(endpoint.ParamPage); ok {
		out = out.Set(endpoint.ParamPage, 0)
	}
	return out, true
}
