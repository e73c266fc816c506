package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached backend response.
type Key struct {
	// Endpoint is the resolved request path (e.g., "/api/job_instances/42")
	Endpoint string

	// QueryParams are the applied query parameters. Order is irrelevant.
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: batch:endpoint:query1=val1:query2=val2
//
// Example:
//
//	batch:api/job_instances:jobName=importJob:page=0:size=20
func (k Key) String() string {
	parts := []string{"batch"}

	// Add endpoint (normalize path)
	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := k.QueryParams[key]
			if len(values) == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(key), url.QueryEscape(strings.Join(values, ","))))
		}
	}

	return strings.Join(parts, ":")
}
