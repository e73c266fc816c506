package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "simple endpoint no params",
			key: Key{
				Endpoint: "/api/statistics/jobs",
			},
			want: "batch:api/statistics/jobs",
		},
		{
			name: "endpoint with path id",
			key: Key{
				Endpoint: "/api/job_instances/42",
			},
			want: "batch:api/job_instances/42",
		},
		{
			name: "endpoint with query params",
			key: Key{
				Endpoint: "/api/job_instances",
				QueryParams: url.Values{
					"jobName": []string{"importJob"},
				},
			},
			want: "batch:api/job_instances:jobName=importJob",
		},
		{
			name: "multiple query params (sorted)",
			key: Key{
				Endpoint: "/api/job_executions",
				QueryParams: url.Values{
					"sort": []string{"startTime,desc"},
					"page": []string{"2"},
					"size": []string{"20"},
				},
			},
			want: "batch:api/job_executions:page=2:size=20:sort=startTime%2Cdesc",
		},
		{
			name: "empty value list is skipped",
			key: Key{
				Endpoint: "/api/job_executions",
				QueryParams: url.Values{
					"status": nil,
					"page":   []string{"0"},
				},
			},
			want: "batch:api/job_executions:page=0",
		},
		{
			name: "separator characters are escaped",
			key: Key{
				Endpoint: "/api/job_instances",
				QueryParams: url.Values{
					"jobName": []string{"a:b=c"},
				},
			},
			want: "batch:api/job_instances:jobName=a%3Ab%3Dc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.key.String()
			if got != tt.want {
				t.Errorf("Key.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestKey_Determinism ensures insertion order never changes the key
func TestKey_Determinism(t *testing.T) {
	a := url.Values{}
	a.Set("page", "1")
	a.Set("jobName", "importJob")
	a.Set("size", "20")

	b := url.Values{}
	b.Set("size", "20")
	b.Set("jobName", "importJob")
	b.Set("page", "1")

	ka := Key{Endpoint: "/api/job_instances", QueryParams: a}.String()
	kb := Key{Endpoint: "/api/job_instances/", QueryParams: b}.String()
	if ka != kb {
		t.Errorf("keys differ: %q vs %q", ka, kb)
	}

	for i := 0; i < 10; i++ {
		if got := (Key{Endpoint: "/api/job_instances", QueryParams: a}).String(); got != ka {
			t.Errorf("iteration %d: %q, want %q (not deterministic)", i, got, ka)
		}
	}
}
