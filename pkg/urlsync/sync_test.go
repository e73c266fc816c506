package urlsync

import (
	"testing"

	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/rs/zerolog"
)

func defaults() endpoint.Params {
	return endpoint.NewParams(endpoint.ParamPage, 0, endpoint.ParamSize, 20, endpoint.ParamSort, "jobInstanceId,desc")
}

func TestSynchronizer_Initial(t *testing.T) {
	tests := []struct {
		name     string
		location string
		stored   endpoint.Params
		want     string
	}{
		{
			name:     "location wins over stored value",
			location: "/job-instances?jobName=foo",
			stored:   defaults().Set(endpoint.ParamJobName, "bar"),
			want:     "foo",
		},
		{
			name:     "stored value without location",
			location: "/job-instances",
			stored:   defaults().Set(endpoint.ParamJobName, "bar"),
			want:     "bar",
		},
		{
			name:     "empty location value is ignored",
			location: "/job-instances?jobName=",
			stored:   defaults(),
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, _ := ParseLocation(tt.location)
			s := New(NewHistory(loc), zerolog.Nop())

			got := s.Initial(tt.stored)
			if name := got.String(endpoint.ParamJobName); name != tt.want {
				t.Errorf("jobName = %q, want %q", name, tt.want)
			}
			if page, _ := got.Int(endpoint.ParamPage); page != 0 {
				t.Errorf("page = %d", page)
			}
		})
	}
}

func TestSynchronizer_Sync(t *testing.T) {
	h := NewHistory(Location{Path: "/job-instances"})
	s := New(h, zerolog.Nop())

	// paging alone never touches the location
	if s.Sync(defaults().Set(endpoint.ParamPage, 3).Set(endpoint.ParamStatus, "FAILED")) {
		t.Error("Sync() without job name should not navigate")
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}

	withName := defaults().Set(endpoint.ParamJobName, "daily import")
	if !s.Sync(withName) {
		t.Fatal("Sync() with a new job name should navigate")
	}
	if got := h.Location().String(); got != "/job-instances?jobName=daily+import" {
		t.Errorf("Location() = %q", got)
	}

	// identical query: no new history entry
	if s.Sync(withName.Set(endpoint.ParamPage, 4)) {
		t.Error("Sync() with an unchanged job name should not navigate")
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}

	// reset removes the parameter entirely
	if !s.Sync(defaults()) {
		t.Fatal("Sync() after reset should navigate")
	}
	if got := h.Location().String(); got != "/job-instances" {
		t.Errorf("Location() after reset = %q, want no query", got)
	}
}

func TestSynchronizer_SyncNormalizesForeignQuery(t *testing.T) {
	h := NewHistory(Location{Path: "/job-executions", RawQuery: "page=3&jobName=x"})
	s := New(h, zerolog.Nop())

	if !s.Sync(defaults().Set(endpoint.ParamJobName, "x")) {
		t.Fatal("Sync() should drop unmirrored parameters")
	}
	if got := h.Location().RawQuery; got != "jobName=x" {
		t.Errorf("RawQuery = %q", got)
	}
}

func TestSynchronizer_FromLocation(t *testing.T) {
	h := NewHistory(Location{Path: "/job-instances"})
	s := New(h, zerolog.Nop())

	current := defaults().Set(endpoint.ParamPage, 2)
	if _, changed := s.FromLocation(current); changed {
		t.Error("FromLocation() without job names on either side should not change")
	}

	h.Push(Location{Path: "/job-instances", RawQuery: "jobName=foo"})
	got, changed := s.FromLocation(current)
	if !changed {
		t.Fatal("FromLocation() should pick up the new job name")
	}
	if got.String(endpoint.ParamJobName) != "foo" {
		t.Errorf("jobName = %q", got.String(endpoint.ParamJobName))
	}
	if page, _ := got.Int(endpoint.ParamPage); page != 0 {
		t.Errorf("page = %d, want 0", page)
	}

	h.Back()
	back, changed := s.FromLocation(got)
	if !changed {
		t.Fatal("FromLocation() should drop the job name after going back")
	}
	if _, ok := back.Get(endpoint.ParamJobName); ok {
		t.Error("jobName should be undefined")
	}
}

func TestQuery(t *testing.T) {
	if got := Query(nil); got != "" {
		t.Errorf("Query(nil) = %q", got)
	}
	if got := Query(endpoint.NewParams(endpoint.ParamJobName, "")); got != "" {
		t.Errorf("Query(empty name) = %q", got)
	}
	if got := Query(endpoint.NewParams(endpoint.ParamJobName, "a&b", endpoint.ParamPage, 1)); got != "jobName=a%26b" {
		t.Errorf("Query() = %q", got)
	}
}
