package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/batch-dashboard/internal/testutil"
	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/client"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func newBackend(t *testing.T) *testutil.MockBackend {
	t.Helper()

	backend := testutil.NewMockBackend()
	t.Cleanup(backend.Close)

	backend.SetHandler("/api/job_executions", testutil.NewPagedHandler(
		append(testutil.JobExecutions("importJob", 45), testutil.JobExecutions("exportJob", 5)...),
		testutil.MatchExecution,
	))
	backend.SetJSON("/api/job_executions/7", batch.JobExecutionDetail{
		JobExecution: batch.JobExecution{JobExecutionID: 7, JobName: "importJob", Status: batch.StatusCompleted},
	})
	backend.SetJSON("/api/statistics/jobs", batch.JobStatistics{TotalJobs: 50})
	return backend
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if out != "batchdash "+version+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestGet(t *testing.T) {
	backend := newBackend(t)

	tests := []struct {
		name     string
		args     []string
		wantPath string
		check    func(t *testing.T, out string)
	}{
		{
			name:     "execution list with filter",
			args:     []string{"get", "executions", "--job-name", "exportJob", "--size", "2"},
			wantPath: "/api/job_executions",
			check: func(t *testing.T, out string) {
				var page batch.PageResponse[batch.JobExecution]
				if err := json.Unmarshal([]byte(out), &page); err != nil {
					t.Fatalf("decode output: %v", err)
				}
				if page.TotalElements != 5 || len(page.Content) != 2 {
					t.Errorf("page = %d elements, %d rows", page.TotalElements, len(page.Content))
				}
			},
		},
		{
			name:     "execution detail",
			args:     []string{"get", "execution", "7"},
			wantPath: "/api/job_executions/7",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, `"jobExecutionId": 7`) {
					t.Errorf("output = %s", out)
				}
			},
		},
		{
			name:     "global statistics",
			args:     []string{"get", "stats"},
			wantPath: "/api/statistics/jobs",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, `"totalJobs": 50`) {
					t.Errorf("output = %s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend.Reset()
			out, err := run(t, append(tt.args, "--base-url", backend.URL())...)
			if err != nil {
				t.Fatalf("get error = %v", err)
			}
			if n := backend.CountPath(tt.wantPath); n != 1 {
				t.Errorf("requests to %s = %d, want 1 (%v)", tt.wantPath, n, backend.Requests())
			}
			tt.check(t, out)
		})
	}
}

func TestGet_Errors(t *testing.T) {
	backend := newBackend(t)
	backend.SetResponse("/api/job_instances", testutil.NewUnauthorizedResponse())

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no resource", []string{"get"}, "resource required"},
		{"unknown resource", []string{"get", "workers"}, `unknown resource "workers"`},
		{"bad id", []string{"get", "execution", "abc"}, `invalid id "abc"`},
		{"non-positive id", []string{"get", "step", "0"}, `invalid id "0"`},
		{"missing id", []string{"get", "instance"}, "accepts 1 arg"},
		{"negative page", []string{"get", "instances", "--page", "-1"}, "page must be a non-negative integer"},
		{"authentication", []string{"get", "instances"}, client.AuthenticationMessage},
		{"not found", []string{"get", "step", "3"}, "No handler for /api/step_executions/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--base-url", backend.URL())...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExport(t *testing.T) {
	backend := newBackend(t)

	out, err := run(t, "export", "executions", "--job-name", "importJob", "--size", "10", "--concurrency", "3",
		"--base-url", backend.URL())
	if err != nil {
		t.Fatalf("export error = %v", err)
	}

	var rows []batch.JobExecution
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(rows) != 45 {
		t.Fatalf("rows = %d, want 45", len(rows))
	}
	for i, r := range rows {
		if r.JobExecutionID != int64(i+1) {
			t.Fatalf("row %d has id %d, rows out of page order", i, r.JobExecutionID)
		}
	}
	if n := backend.CountPath("/api/job_executions"); n != 5 {
		t.Errorf("page requests = %d, want 5", n)
	}
}

func TestExport_MaxPages(t *testing.T) {
	backend := newBackend(t)

	out, err := run(t, "export", "executions", "--size", "10", "--max-pages", "2", "--base-url", backend.URL())
	if err != nil {
		t.Fatalf("export error = %v", err)
	}

	var rows []batch.JobExecution
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(rows) != 20 {
		t.Errorf("rows = %d, want 20", len(rows))
	}
}

func TestExport_BadResource(t *testing.T) {
	if _, err := run(t, "export", "steps"); err == nil {
		t.Fatal("expected error for unsupported resource")
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	backend := newBackend(t)
	backend.SetHandler("/custom/statistics/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalJobs":9}`))
	})

	t.Setenv("BATCHDASH_BASE_URL", backend.URL())
	t.Setenv("BATCHDASH_API_BASE", "/custom")

	out, err := run(t, "get", "stats")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if !strings.Contains(out, `"totalJobs": 9`) {
		t.Errorf("output = %s", out)
	}
}
