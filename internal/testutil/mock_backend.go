// Package testutil provides a mock batch dashboard backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBackend is a configurable mock backend server for testing.
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	requests          []string
	conditionalCount  int
	lastRequestHeader http.Header
}

// NewMockBackend creates a new mock backend.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.URL.RequestURI())
		mock.lastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" {
			mock.conditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.conditionalCount = 0
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBackend) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockBackend) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON serves v as a 200 JSON response on path.
func (m *MockBackend) SetJSON(path string, v any) {
	m.SetResponse(path, NewJSONResponse(v))
}

// Requests returns every request URI received, in order.
func (m *MockBackend) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBackend) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// CountPath returns the number of requests whose path equals path.
func (m *MockBackend) CountPath(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, uri := range m.requests {
		if p, _, _ := strings.Cut(uri, "?"); p == path {
			n++
		}
	}
	return n
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockBackend) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// LastRequestHeader returns the headers of the latest request.
func (m *MockBackend) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// defaultHandler answers like the backend does for unknown resources.
func (m *MockBackend) defaultHandler(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, http.StatusNotFound, "No handler for "+r.URL.Path, r.URL.Path)
}

// NewJSONResponse creates a 200 OK response carrying v as JSON.
func NewJSONResponse(v any) MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal response: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewUnauthorizedResponse creates a 401 response without a body.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusUnauthorized}
}

// NewAPIErrorResponse creates a structured backend error response.
func NewAPIErrorResponse(status int, message, path string) MockResponse {
	body, _ := json.Marshal(map[string]any{
		"timestamp": "2024-05-01T10:00:00",
		"status":    status,
		"error":     http.StatusText(status),
		"message":   message,
		"path":      path,
	})
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 response with an unstructured body.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "upstream failure",
	}
}

// NewConditionalHandler creates a handler that responds with 304 for conditional requests.
func NewConditionalHandler(etag string, data string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}
}

// NewPagedHandler serves rows as a paginated collection honoring the page and
// size query parameters. filter, when set, drops rows for the request.
func NewPagedHandler[T any](rows []T, filter func(r *http.Request, row T) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 0)
		size := atoiDefault(q.Get("size"), 20)
		if page < 0 || size <= 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid paging", r.URL.Path)
			return
		}

		var matched []T
		for _, row := range rows {
			if filter == nil || filter(r, row) {
				matched = append(matched, row)
			}
		}

		content := []T{}
		for i := page * size; i < (page+1)*size && i < len(matched); i++ {
			content = append(content, matched[i])
		}

		writeJSON(w, http.StatusOK, batch.PageResponse[T]{
			Content:       content,
			Page:          page,
			Size:          size,
			TotalElements: int64(len(matched)),
			TotalPages:    batch.TotalPages(int64(len(matched)), size),
		})
	}
}

// JobExecutions returns n executions of jobName with ids 1..n. Every third
// execution failed.
func JobExecutions(jobName string, n int) []batch.JobExecution {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]batch.JobExecution, 0, n)
	for i := 1; i <= n; i++ {
		status := batch.StatusCompleted
		if i%3 == 0 {
			status = batch.StatusFailed
		}
		start := base.Add(time.Duration(i) * time.Hour)
		out = append(out, batch.JobExecution{
			JobExecutionID: int64(i),
			JobInstanceID:  int64(i),
			JobName:        jobName,
			StartTime:      batch.LocalTime{Time: start},
			EndTime:        batch.LocalTime{Time: start.Add(5 * time.Minute)},
			Status:         status,
			ExitCode:       string(status),
		})
	}
	return out
}

// JobInstances returns n instances of jobName with ids 1..n.
func JobInstances(jobName string, n int) []batch.JobInstance {
	out := make([]batch.JobInstance, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, batch.JobInstance{
			JobInstanceID: int64(i),
			JobName:       jobName,
			JobKey:        fmt.Sprintf("key-%d", i),
		})
	}
	return out
}

// MatchExecution is a NewPagedHandler filter honoring the jobName and status
// parameters.
func MatchExecution(r *http.Request, row batch.JobExecution) bool {
	q := r.URL.Query()
	if name := q.Get("jobName"); name != "" && row.JobName != name {
		return false
	}
	if status := q.Get("status"); status != "" && string(row.Status) != status {
		return false
	}
	return true
}

// MatchInstance is a NewPagedHandler filter honoring the jobName parameter.
func MatchInstance(r *http.Request, row batch.JobInstance) bool {
	name := r.URL.Query().Get("jobName")
	return name == "" || row.JobName == name
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message, path string) {
	writeJSON(w, status, map[string]any{
		"timestamp": "2024-05-01T10:00:00",
		"status":    status,
		"error":     http.StatusText(status),
		"message":   message,
		"path":      path,
	})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
