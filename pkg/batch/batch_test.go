package batch

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{name: "ceiling division", total: 150, size: 20, want: 8},
		{name: "exact multiple", total: 100, size: 20, want: 5},
		{name: "single partial page", total: 3, size: 20, want: 1},
		{name: "empty collection", total: 0, size: 20, want: 0},
		{name: "invalid size", total: 10, size: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.size); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
			}
		})
	}
}

func TestPageResponse_ZeroBasedRange(t *testing.T) {
	p := PageResponse[JobInstance]{Page: 0, Size: 20, TotalElements: 150, TotalPages: TotalPages(150, 20)}

	if p.LastPage() != 7 {
		t.Errorf("LastPage() = %d, want 7", p.LastPage())
	}
	if p.HasPrevious() {
		t.Error("first page should not have a previous page")
	}
	if !p.HasNext() {
		t.Error("first page should have a next page")
	}

	p.Page = 7
	if p.HasNext() {
		t.Error("last page should not have a next page")
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{page: 3, total: 8, want: 3},
		{page: 8, total: 8, want: 7},
		{page: -1, total: 8, want: 0},
		{page: 2, total: 0, want: 0},
	}
	for _, tt := range tests {
		if got := ClampPage(tt.page, tt.total); got != tt.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.total, got, tt.want)
		}
	}
}

func TestStatus_Tone(t *testing.T) {
	tests := []struct {
		status Status
		tone   Tone
		label  string
	}{
		{StatusCompleted, ToneSuccess, "COMPLETED"},
		{StatusFailed, ToneDanger, "FAILED"},
		{StatusStopped, ToneWarning, "STOPPED"},
		{StatusStarted, ToneInfo, "STARTED"},
		{StatusUnknown, ToneNeutral, "UNKNOWN"},
		{Status("EXPLODED"), ToneNeutral, "UNKNOWN"},
		{Status(""), ToneNeutral, "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Tone(); got != tt.tone {
				t.Errorf("Tone() = %q, want %q", got, tt.tone)
			}
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestLocalTime_UnmarshalJSON(t *testing.T) {
	var exec JobExecution
	body := `{
		"jobExecutionId": 7,
		"jobName": "importJob",
		"startTime": "2025-03-01T10:15:30.123",
		"createTime": "2025-03-01T10:15:00",
		"endTime": null,
		"status": "SOMETHING_NEW"
	}`
	if err := json.Unmarshal([]byte(body), &exec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := time.Date(2025, 3, 1, 10, 15, 30, 123000000, time.Local)
	if !exec.StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v", exec.StartTime.Time, want)
	}
	if !exec.EndTime.IsZero() {
		t.Errorf("EndTime = %v, want zero", exec.EndTime.Time)
	}
	if exec.EndTime.String() != "-" {
		t.Errorf("EndTime.String() = %q, want -", exec.EndTime.String())
	}
	if exec.Status.Tone() != ToneNeutral {
		t.Errorf("unknown status should render neutral, got %q", exec.Status.Tone())
	}
}

func TestLocalTime_Invalid(t *testing.T) {
	var lt LocalTime
	if err := json.Unmarshal([]byte(`"yesterday"`), &lt); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestJobStatistics_Decode(t *testing.T) {
	body := `{"totalJobs": 12, "jobsByStatus": {"COMPLETED": 10, "FAILED": 2}, "recentJobStatuses": [{"date": "2025-03-01", "completed": 3, "failed": 1, "abandoned": 0}]}`
	var stats JobStatistics
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if stats.JobsByStatus[StatusFailed] != 2 {
		t.Errorf("JobsByStatus[FAILED] = %d, want 2", stats.JobsByStatus[StatusFailed])
	}
	if len(stats.RecentJobStatuses) != 1 || stats.RecentJobStatuses[0].Completed != 3 {
		t.Errorf("RecentJobStatuses = %+v", stats.RecentJobStatuses)
	}
}
