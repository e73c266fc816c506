package dashboard

import (
	"github.com/Sternrassler/batch-dashboard/pkg/batch"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
)

// StatisticsView is the statistics page. Each panel loads and fails on its
// own.
type StatisticsView struct {
	jobName string

	Global *Resource[batch.JobStatistics]
	Recent *Resource[[]batch.RecentJobExecution]
	// Job is disabled when no job name is selected.
	Job *Resource[batch.JobSpecificStatistics]
}

// OpenStatistics opens the statistics page. jobName selects the job-specific
// panel; days <= 0 leaves the recent executions window to the backend.
func (a *App) OpenStatistics(jobName string, days int) *StatisticsView {
	return &StatisticsView{
		jobName: jobName,
		Global:  watch[batch.JobStatistics](a, endpoint.JobStatistics(), true),
		Recent:  watch[[]batch.RecentJobExecution](a, endpoint.RecentExecutions(days), true),
		Job:     watch[batch.JobSpecificStatistics](a, endpoint.JobSpecificStatistics(jobName), jobName != ""),
	}
}

// JobName returns the selected job, "" for the global page.
func (v *StatisticsView) JobName() string {
	return v.jobName
}

// Revalidate refetches every enabled panel.
func (v *StatisticsView) Revalidate() {
	v.Global.Revalidate()
	v.Recent.Revalidate()
	v.Job.Revalidate()
}

// Close releases every panel.
func (v *StatisticsView) Close() {
	v.Global.Close()
	v.Recent.Close()
	v.Job.Close()
}
