// Package urlsync mirrors the job-name filter of a list view into the
// location's query string and back. Only jobName is mirrored; paging, status
// and date filters never reach the location.
package urlsync

import (
	"net/url"
	"sync"
)

// Location is an in-application address: a path plus a raw query string.
type Location struct {
	Path     string
	RawQuery string
}

// ParseLocation parses "path?query".
func ParseLocation(s string) (Location, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: u.Path, RawQuery: u.RawQuery}, nil
}

// Query returns the parsed query. Malformed pairs are dropped.
func (l Location) Query() url.Values {
	v, _ := url.ParseQuery(l.RawQuery)
	return v
}

// String renders the location as "path?query".
func (l Location) String() string {
	if l.RawQuery == "" {
		return l.Path
	}
	return l.Path + "?" + l.RawQuery
}

// Navigator is the address bar of the application.
type Navigator interface {
	Location() Location
	Navigate(loc Location, replace bool)
}

// History is an in-memory browser-style history stack. It is safe for
// concurrent use.
type History struct {
	mu      sync.Mutex
	entries []Location
	index   int
	subs    map[chan Location]struct{}
}

// NewHistory creates a history positioned at initial.
func NewHistory(initial Location) *History {
	return &History{
		entries: []Location{initial},
		subs:    make(map[chan Location]struct{}),
	}
}

// Location returns the current entry.
func (h *History) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Navigate pushes loc, or replaces the current entry when replace is set.
func (h *History) Navigate(loc Location, replace bool) {
	if replace {
		h.Replace(loc)
		return
	}
	h.Push(loc)
}

// Push adds loc after the current entry and drops any forward entries.
func (h *History) Push(loc Location) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.index+1], loc)
	h.index++
	h.notifyLocked()
}

// Replace overwrites the current entry.
func (h *History) Replace(loc Location) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.index] = loc
	h.notifyLocked()
}

// Back moves to the previous entry. It reports false at the first entry.
func (h *History) Back() bool {
	return h.Go(-1)
}

// Forward moves to the next entry. It reports false at the last entry.
func (h *History) Forward() bool {
	return h.Go(1)
}

// Go moves delta entries. Out of range moves are ignored.
func (h *History) Go(delta int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.index + delta
	if delta == 0 || next < 0 || next >= len(h.entries) {
		return false
	}
	h.index = next
	h.notifyLocked()
	return true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the position of the current entry.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Subscribe returns a channel receiving the location after every change and a
// function ending the subscription. Slow receivers miss intermediate
// locations, never the latest one.
func (h *History) Subscribe() (<-chan Location, func()) {
	ch := make(chan Location, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *History) notifyLocked() {
	loc := h.entries[h.index]
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- loc:
		default:
		}
	}
}
