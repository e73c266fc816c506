package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResponseToEntry converts an HTTP response to an Entry holding the raw body
// and its validator. The response body is restored after reading.
func ResponseToEntry(resp *http.Response, now time.Time) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	// Read body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &Entry{
		Body:      body,
		ETag:      resp.Header.Get("ETag"),
		FetchedAt: now,
	}, nil
}

// ShouldMakeConditionalRequest reports whether the entry carries a validator
// the backend can compare against.
func ShouldMakeConditionalRequest(entry *Entry) bool {
	return entry != nil && entry.ETag != ""
}

// AddConditionalHeaders adds If-None-Match to the request when the entry
// supports conditional requests.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if req == nil || !ShouldMakeConditionalRequest(entry) {
		return
	}
	req.Header.Set("If-None-Match", entry.ETag)
}
