package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return fs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(newFlags(t), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	file := writeFile(t, "batchdash.yaml", strings.Join([]string{
		"base_url: http://from-file:8080",
		"timeout: 5s",
		"log_level: debug",
		"stale_time: 30s",
	}, "\n"))

	t.Setenv("BATCHDASH_TIMEOUT", "7s")
	t.Setenv("BATCHDASH_COOKIE", "JSESSIONID=env")

	cfg, err := Load(newFlags(t, "--log-level=warn", "--revalidate-on-focus=false"), file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file only", cfg.BaseURL, "http://from-file:8080"},
		{"env over file", cfg.Timeout, 7 * time.Second},
		{"flag over file", cfg.LogLevel, "warn"},
		{"env only", cfg.Cookie, "JSESSIONID=env"},
		{"file duration", cfg.StaleTime, 30 * time.Second},
		{"flag bool", cfg.RevalidateOnFocus, false},
		{"default", cfg.FocusThrottle, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_HomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := os.WriteFile(filepath.Join(home, ".batchdash.yaml"), []byte("metrics_addr: :9191\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(newFlags(t), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MetricsAddr != ":9191" {
		t.Errorf("MetricsAddr = %q, want :9191", cfg.MetricsAddr)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		args    []string
		file    string
		wantErr string
	}{
		{
			name:    "missing explicit file",
			file:    filepath.Join(t.TempDir(), "missing.yaml"),
			wantErr: "read config file",
		},
		{
			name:    "unknown log level",
			args:    []string{"--log-level=loud"},
			wantErr: "unknown log level",
		},
		{
			name:    "negative stale time",
			args:    []string{"--stale-time=-1s"},
			wantErr: "stale time must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, tt.args...), tt.file)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_Dashboard(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "https://batch.example.com"
	cfg.APIBase = "/batch/api"
	cfg.Cookie = "JSESSIONID=abc"
	cfg.StaleTime = time.Minute
	cfg.Location = "/job-executions?jobName=importJob"

	dc := cfg.Dashboard()

	if dc.Client.BaseURL != cfg.BaseURL {
		t.Errorf("Client.BaseURL = %q", dc.Client.BaseURL)
	}
	if got := dc.Client.Header.Get("Cookie"); got != "JSESSIONID=abc" {
		t.Errorf("Cookie header = %q", got)
	}
	if dc.APIBase != "/batch/api" || dc.Location != cfg.Location {
		t.Errorf("APIBase = %q, Location = %q", dc.APIBase, dc.Location)
	}
	if dc.Fetch.StaleTime != time.Minute || !dc.Fetch.RevalidateOnFocus {
		t.Errorf("Fetch = %+v", dc.Fetch)
	}

	if lc := cfg.Logging(); string(lc.Level) != cfg.LogLevel {
		t.Errorf("Logging().Level = %q", lc.Level)
	}
}
