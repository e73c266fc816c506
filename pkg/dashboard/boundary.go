package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/batch-dashboard/pkg/client"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/rs/zerolog"
)

// FallbackKind selects what replaces a failed page.
type FallbackKind string

const (
	// FallbackLogin asks the user to log in.
	FallbackLogin FallbackKind = "login"

	// FallbackGeneric reports a failure with a reload action.
	FallbackGeneric FallbackKind = "generic"
)

// Fallback is the content shown instead of a failed page.
type Fallback struct {
	Kind    FallbackKind
	Title   string
	Message string
	// Detail is the raw error text of generic fallbacks.
	Detail string
	Action  string
	Err     error
}

// Classify maps err to its fallback. Authentication errors ask for a login,
// everything else is generic.
func Classify(err error) Fallback {
	if client.IsAuthentication(err) {
		return Fallback{
			Kind:    FallbackLogin,
			Title:   "Authentication Required",
			Message: Describe(err),
			Action:  "Go to Login",
			Err:     err,
		}
	}
	return Fallback{
		Kind:    FallbackGeneric,
		Title:   "Something went wrong",
		Message: "The application encountered an unexpected error. Please try refreshing the page.",
		Detail:  Describe(err),
		Action:  "Refresh Page",
		Err:     err,
	}
}

// Describe returns the message shown in an error panel.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var ce *client.Error
	if errors.As(err, &ce) {
		switch ce.Kind {
		case client.KindAuth, client.KindAPI:
			return ce.Message
		case client.KindTransport:
			if ce.StatusCode != 0 {
				return ce.Message
			}
			return fmt.Sprintf("Network error: %s", ce.Message)
		}
	}
	return err.Error()
}

// Boundary catches page failures and keeps the fallback until Reset.
type Boundary struct {
	mu       sync.Mutex
	fallback *Fallback
	logger   zerolog.Logger
}

// NewBoundary creates an empty boundary.
func NewBoundary() *Boundary {
	return &Boundary{logger: logging.NewLogger("error-boundary")}
}

// Render runs fn unless the boundary already holds a fallback. An error
// returned by fn or a panic inside it is turned into the fallback. It reports
// the fallback and true when the page must not be shown.
func (b *Boundary) Render(fn func() error) (fb Fallback, failed bool) {
	b.mu.Lock()
	if b.fallback != nil {
		defer b.mu.Unlock()
		return *b.fallback, true
	}
	b.mu.Unlock()

	err := b.run(fn)
	if err == nil {
		return Fallback{}, false
	}

	fb = Classify(err)
	b.logger.Error().
		Err(err).
		Str("fallback", string(fb.Kind)).
		Msg("Error caught by boundary")

	b.mu.Lock()
	b.fallback = &fb
	b.mu.Unlock()
	return fb, true
}

// Fallback returns the held fallback.
func (b *Boundary) Fallback() (Fallback, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fallback == nil {
		return Fallback{}, false
	}
	return *b.fallback, true
}

// Reset clears the fallback, as the reload action does.
func (b *Boundary) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = nil
}

func (b *Boundary) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("panic: %v", v)
			}
		}
	}()
	return fn()
}

// ViewState is how a resource is displayed.
type ViewState string

const (
	// StateIdle is a disabled resource.
	StateIdle ViewState = "idle"

	// StateLoading shows a spinner.
	StateLoading ViewState = "loading"

	// StateError shows the error panel in place of content.
	StateError ViewState = "error"

	// StateReady shows the data.
	StateReady ViewState = "ready"

	// StateReadyWithError shows the last good data with an error banner.
	StateReadyWithError ViewState = "ready_with_error"
)

// StateOf classifies a snapshot. A failed refetch after a successful load
// keeps showing the data.
func StateOf(s fetch.Snapshot) ViewState {
	switch {
	case s.IsLoading:
		return StateLoading
	case s.Err != nil && s.Data == nil:
		return StateError
	case s.Err != nil:
		return StateReadyWithError
	case s.Data != nil:
		return StateReady
	}
	return StateIdle
}
