// Package batch defines the read-only Spring Batch entities served by the
// dashboard backend.
package batch

// JobInstance is a row of the job instances list.
type JobInstance struct {
	JobInstanceID   int64                `json:"jobInstanceId"`
	JobName         string               `json:"jobName"`
	JobKey          string               `json:"jobKey"`
	Version         int                  `json:"version"`
	LatestExecution *JobExecutionSummary `json:"latestExecution,omitempty"`
}

// JobExecutionSummary is the latest execution attached to a job instance row.
type JobExecutionSummary struct {
	JobExecutionID int64     `json:"jobExecutionId"`
	StartTime      LocalTime `json:"startTime"`
	EndTime        LocalTime `json:"endTime"`
	Status         Status    `json:"status"`
}

// JobInstanceDetail is a job instance together with all of its executions.
type JobInstanceDetail struct {
	JobInstance
	Executions []JobExecution `json:"executions"`
}

// JobExecution is a row of the job executions list.
type JobExecution struct {
	JobExecutionID int64          `json:"jobExecutionId"`
	JobInstanceID  int64          `json:"jobInstanceId"`
	JobName        string         `json:"jobName"`
	CreateTime     LocalTime      `json:"createTime"`
	StartTime      LocalTime      `json:"startTime"`
	EndTime        LocalTime      `json:"endTime"`
	Status         Status         `json:"status"`
	ExitCode       string         `json:"exitCode"`
	ExitMessage    string         `json:"exitMessage,omitempty"`
	LastUpdated    LocalTime      `json:"lastUpdated"`
	Parameters     []JobParameter `json:"parameters"`
}

// JobParameter is a single job parameter of an execution.
type JobParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Identifying bool   `json:"identifying"`
}

// JobExecutionDetail is a job execution with its steps and execution context.
type JobExecutionDetail struct {
	JobExecution
	Steps            []StepExecutionSummary `json:"steps"`
	ExecutionContext []ExecutionContextItem `json:"executionContext,omitempty"`
}

// StepExecutionSummary is a step row inside a job execution detail.
type StepExecutionSummary struct {
	StepExecutionID int64     `json:"stepExecutionId"`
	StepName        string    `json:"stepName"`
	Status          Status    `json:"status"`
	ReadCount       int64     `json:"readCount"`
	WriteCount      int64     `json:"writeCount"`
	FilterCount     int64     `json:"filterCount"`
	StartTime       LocalTime `json:"startTime"`
	EndTime         LocalTime `json:"endTime"`
}

// StepExecutionDetail carries every counter of a step execution.
type StepExecutionDetail struct {
	StepExecutionSummary
	JobExecutionID   int64                  `json:"jobExecutionId"`
	Version          int                    `json:"version"`
	CreateTime       LocalTime              `json:"createTime"`
	CommitCount      int64                  `json:"commitCount"`
	ReadSkipCount    int64                  `json:"readSkipCount"`
	WriteSkipCount   int64                  `json:"writeSkipCount"`
	ProcessSkipCount int64                  `json:"processSkipCount"`
	RollbackCount    int64                  `json:"rollbackCount"`
	ExitCode         string                 `json:"exitCode"`
	ExitMessage      string                 `json:"exitMessage,omitempty"`
	LastUpdated      LocalTime              `json:"lastUpdated"`
	ExecutionContext []ExecutionContextItem `json:"executionContext,omitempty"`
}

// ExecutionContextItem is one deserialized entry of an execution context.
type ExecutionContextItem struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// JobStatistics is the global statistics payload.
type JobStatistics struct {
	TotalJobs         int64            `json:"totalJobs"`
	JobsByStatus      map[Status]int64 `json:"jobsByStatus"`
	RecentJobStatuses []DailyJobStats  `json:"recentJobStatuses"`
}

// DailyJobStats counts finished executions of a single day.
type DailyJobStats struct {
	Date      string `json:"date"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Abandoned int64  `json:"abandoned"`
}

// JobSpecificStatistics is the statistics payload of one job name.
type JobSpecificStatistics struct {
	JobName            string           `json:"jobName"`
	TotalExecutions    int64            `json:"totalExecutions"`
	ExecutionsByStatus map[Status]int64 `json:"executionsByStatus"`
	// AverageDuration is in seconds.
	AverageDuration   float64   `json:"averageDuration"`
	LastExecutionTime LocalTime `json:"lastExecutionTime"`
	// SuccessRate is a percentage.
	SuccessRate float64 `json:"successRate"`
}

// RecentJobExecution counts executions of one job over the requested window.
type RecentJobExecution struct {
	JobName    string `json:"jobName"`
	Executions int64  `json:"executions"`
}

// APIError is the error body returned by the backend for non-2xx responses.
type APIError struct {
	Timestamp LocalTime `json:"timestamp"`
	Status    int       `json:"status"`
	Reason    string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
