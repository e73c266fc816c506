package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/batch-dashboard/internal/testutil"
	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/dashboard"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, backend *testutil.MockBackend, location string) Model {
	t.Helper()

	cfg := dashboard.DefaultConfig(backend.URL())
	cfg.Location = location
	app, err := dashboard.NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })

	m, err := New(app)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func newBackend(t *testing.T) *testutil.MockBackend {
	t.Helper()

	backend := testutil.NewMockBackend()
	t.Cleanup(backend.Close)

	instances := testutil.JobInstances("importJob", 3)
	instances = append(instances, testutil.JobInstances("foo", 2)...)
	backend.SetHandler("/api/job_instances", testutil.NewPagedHandler(instances, testutil.MatchInstance))
	backend.SetHandler("/api/job_executions", testutil.NewPagedHandler(testutil.JobExecutions("importJob", 45), testutil.MatchExecution))
	backend.SetJSON("/api/job_instances/1", batch.JobInstanceDetail{
		JobInstance: batch.JobInstance{JobInstanceID: 1, JobName: "importJob"},
		Executions:  testutil.JobExecutions("importJob", 2),
	})
	backend.SetJSON("/api/statistics/jobs", batch.JobStatistics{TotalJobs: 5})
	backend.SetJSON("/api/statistics/recent_executions", []batch.RecentJobExecution{{JobName: "importJob", Executions: 3}})
	return backend
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func waitRows(t *testing.T, m Model, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for m.rows() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d rows, have %d", n, m.rows())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestModelInit(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathHome)

	if m.Init() == nil {
		t.Fatal("Init should return a command")
	}
	if m.CurrentTab() != TabInstances {
		t.Errorf("tab = %d, want instances", m.CurrentTab())
	}
}

func TestModelOpensTabOfLocation(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobExecutions+"?jobName=importJob")

	if m.CurrentTab() != TabExecutions {
		t.Fatalf("tab = %d, want executions", m.CurrentTab())
	}
	if got := m.executions.Filter().JobName; got != "importJob" {
		t.Errorf("job name = %q, want importJob", got)
	}
}

func TestModelTabSwitch(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobInstances)

	m = press(m, "2")
	if m.CurrentTab() != TabExecutions {
		t.Fatalf("tab = %d, want executions", m.CurrentTab())
	}
	if got := m.app.History().Location().Path; got != dashboard.PathJobExecutions {
		t.Errorf("location = %q", got)
	}

	m = press(m, "3")
	if m.CurrentTab() != TabStatistics {
		t.Fatalf("tab = %d, want statistics", m.CurrentTab())
	}

	m = press(m, "[")
	if m.CurrentTab() != TabExecutions {
		t.Errorf("tab after back = %d, want executions", m.CurrentTab())
	}
	m = press(m, "]")
	if m.CurrentTab() != TabStatistics {
		t.Errorf("tab after forward = %d, want statistics", m.CurrentTab())
	}
}

func TestModelNavigation(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobInstances)
	waitRows(t, m, 5)

	m = press(m, "j", "j")
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor())
	}
	m = press(m, "j", "j", "j", "j")
	if m.Cursor() != 4 {
		t.Errorf("cursor past the end = %d, want 4", m.Cursor())
	}
	m = press(m, "k", "k", "k", "k", "k", "k")
	if m.Cursor() != 0 {
		t.Errorf("cursor before the start = %d, want 0", m.Cursor())
	}
}

func TestModelPaging(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobExecutions)
	waitRows(t, m, 20)

	m = press(m, "n")
	if got := m.executions.CurrentPage(); got != 1 {
		t.Errorf("page = %d, want 1", got)
	}
	m = press(m, "p", "p")
	if got := m.executions.CurrentPage(); got != 0 {
		t.Errorf("page = %d, want 0", got)
	}
}

func TestModelDrillDown(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobInstances)
	waitRows(t, m, 5)

	m = press(m, "enter")
	if m.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", m.Depth())
	}
	waitRows(t, m, 2)
	if v := m.View(); !strings.Contains(v, "Job Instance #1") {
		t.Errorf("detail view missing title:\n%s", v)
	}

	m = press(m, "esc")
	if m.Depth() != 0 {
		t.Errorf("depth after esc = %d, want 0", m.Depth())
	}
}

func TestModelFilterJobName(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobInstances)

	m = press(m, "/", "f", "o", "o", "enter")
	if m.filtering {
		t.Fatal("filter input should be closed after enter")
	}
	if got := m.app.History().Location().String(); got != dashboard.PathJobInstances+"?jobName=foo" {
		t.Errorf("location = %q", got)
	}
	waitRows(t, m, 2)
	if n := m.rows(); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	m = press(m, "x")
	if got := m.app.History().Location().RawQuery; got != "" {
		t.Errorf("query after reset = %q, want empty", got)
	}
}

func TestModelStatusFilter(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathJobExecutions)

	m = press(m, "s")
	if got := m.executions.Filter().Status; got != string(batch.Statuses[0]) {
		t.Errorf("status = %q, want %q", got, batch.Statuses[0])
	}
}

func TestModelAuthFallback(t *testing.T) {
	backend := testutil.NewMockBackend()
	t.Cleanup(backend.Close)
	backend.SetResponse("/api/job_instances", testutil.NewUnauthorizedResponse())

	m := newTestModel(t, backend, dashboard.PathJobInstances)

	deadline := time.Now().Add(2 * time.Second)
	for !m.instances.Snapshot().IsError() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for error")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if v := m.View(); !strings.Contains(v, "Authentication Required") {
		t.Errorf("view should show the login panel:\n%s", v)
	}
	if _, ok := m.boundary.Fallback(); !ok {
		t.Error("boundary should hold the fallback")
	}

	m = press(m, "r")
	if _, ok := m.boundary.Fallback(); ok {
		t.Error("r should reset the boundary")
	}
}

func TestModelFocus(t *testing.T) {
	backend := newBackend(t)
	m := newTestModel(t, backend, dashboard.PathStatistics)

	deadline := time.Now().Add(2 * time.Second)
	for m.stats.Global.State() != dashboard.StateReady {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for statistics")
		}
		time.Sleep(5 * time.Millisecond)
	}

	before := backend.CountPath("/api/statistics/jobs")
	next, _ := m.Update(tea.FocusMsg{})
	m = next.(Model)

	deadline = time.Now().Add(2 * time.Second)
	for backend.CountPath("/api/statistics/jobs") <= before {
		if time.Now().After(deadline) {
			t.Fatal("focus did not revalidate")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathHome)

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelWindowSize(t *testing.T) {
	m := newTestModel(t, newBackend(t), dashboard.PathHome)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
}

func TestTabFor(t *testing.T) {
	tests := []struct {
		path string
		want Tab
	}{
		{dashboard.PathHome, TabInstances},
		{dashboard.PathJobInstances, TabInstances},
		{dashboard.PathJobExecutions, TabExecutions},
		{dashboard.PathStatistics, TabStatistics},
		{"/nowhere", TabInstances},
	}

	for _, tt := range tests {
		if got := TabFor(tt.path); got != tt.want {
			t.Errorf("TabFor(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestNextStatus(t *testing.T) {
	s := ""
	seen := 0
	for {
		s = nextStatus(s)
		if s == "" {
			break
		}
		seen++
	}
	if seen != len(batch.Statuses) {
		t.Errorf("cycle visited %d statuses, want %d", seen, len(batch.Statuses))
	}
}
