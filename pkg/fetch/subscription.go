package fetch

import (
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
)

// Snapshot is the state of a subscription at one point in time.
type Snapshot struct {
	// Data is the last successfully fetched value, nil before the first success.
	Data any

	// Err is the error of the last applied request. Data is kept alongside it.
	Err error

	// IsLoading is true while a request is in flight and no data exists yet.
	IsLoading bool

	// IsValidating is true while any request for the key is in flight.
	IsValidating bool

	// FetchedAt is when Data was received.
	FetchedAt time.Time

	// Stale is true when Data has been invalidated or outlived the stale time.
	Stale bool
}

// IsError reports whether the last applied request failed.
func (s Snapshot) IsError() bool {
	return s.Err != nil
}

// Data returns the snapshot data as T.
func Data[T any](s Snapshot) (T, bool) {
	v, ok := s.Data.(T)
	return v, ok
}

// Subscription is one consumer of a request key. Close it when the consumer
// goes away; results arriving afterwards are not delivered to it.
type Subscription struct {
	c        *Coordinator
	req      endpoint.Request
	key      string
	disabled bool

	// guarded by c.mu
	entry *entry
	alive bool
	done  bool
	last  Snapshot

	changes chan struct{}
}

// Key returns the request key, "" for disabled subscriptions.
func (s *Subscription) Key() string {
	return s.key
}

// Request returns the watched request.
func (s *Subscription) Request() endpoint.Request {
	return s.req
}

// Enabled reports whether the subscription issues requests.
func (s *Subscription) Enabled() bool {
	return !s.disabled
}

// Snapshot returns the current state.
func (s *Subscription) Snapshot() Snapshot {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if !s.alive {
		return s.last
	}
	return s.snapshotLocked()
}

// IsError reports whether the current state carries an error.
func (s *Subscription) IsError() bool {
	return s.Snapshot().IsError()
}

// Changes signals after the state changed. Signals coalesce; read Snapshot
// after receiving. The channel is closed by Close.
func (s *Subscription) Changes() <-chan struct{} {
	return s.changes
}

// Revalidate issues a new request for the key even if one is in flight. The
// newest request wins. Calls within the throttle window of the previous one
// are dropped; it reports whether a request was issued.
func (s *Subscription) Revalidate() bool {
	if s.disabled {
		return false
	}

	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.alive || c.closed {
		return false
	}
	if !c.throttle.Allow(s.key) {
		return false
	}
	c.startLocked(s.entry, TriggerManual)
	return true
}

// Close ends the subscription. It is idempotent.
func (s *Subscription) Close() {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()

	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	if s.alive {
		s.last = s.snapshotLocked()
		s.alive = false
		if e := s.entry; e != nil {
			delete(e.subs, s)
			s.c.dropIfIdleLocked(e)
		}
		s.entry = nil
	}
	if !s.done {
		// a pending signal would be delivered after Close
		select {
		case <-s.changes:
		default:
		}
		close(s.changes)
		s.done = true
	}
}

func (s *Subscription) snapshotLocked() Snapshot {
	e := s.entry
	if e == nil {
		return s.last
	}
	return Snapshot{
		Data:         e.data,
		Err:          e.err,
		IsLoading:    !e.hasData && e.flight != nil,
		IsValidating: e.flight != nil,
		FetchedAt:    e.fetchedAt,
		Stale:        s.c.isStaleLocked(e),
	}
}

func (s *Subscription) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
