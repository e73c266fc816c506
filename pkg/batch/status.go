package batch

// Status is a job or step execution status as reported by Spring Batch.
// Values outside the known set are kept verbatim and render as unknown.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusStarting  Status = "STARTING"
	StatusStarted   Status = "STARTED"
	StatusStopping  Status = "STOPPING"
	StatusStopped   Status = "STOPPED"
	StatusFailed    Status = "FAILED"
	StatusAbandoned Status = "ABANDONED"
	StatusUnknown   Status = "UNKNOWN"
)

// Statuses lists the known statuses in the order the filter form offers them.
var Statuses = []Status{
	StatusCompleted,
	StatusFailed,
	StatusAbandoned,
	StatusStarted,
	StatusStopping,
	StatusStopped,
	StatusStarting,
	StatusUnknown,
}

// Tone is the presentation category of a status.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneNeutral Tone = "neutral"
)

// Known reports whether s is one of the statuses Spring Batch defines.
func (s Status) Known() bool {
	switch s {
	case StatusCompleted, StatusStarting, StatusStarted, StatusStopping,
		StatusStopped, StatusFailed, StatusAbandoned, StatusUnknown:
		return true
	}
	return false
}

// Tone maps the status to its presentation category. Unknown values are neutral.
func (s Status) Tone() Tone {
	switch s {
	case StatusCompleted:
		return ToneSuccess
	case StatusFailed:
		return ToneDanger
	case StatusStopping, StatusStopped, StatusAbandoned:
		return ToneWarning
	case StatusStarting, StatusStarted:
		return ToneInfo
	default:
		return ToneNeutral
	}
}

// Label returns the text shown for the status.
func (s Status) Label() string {
	if !s.Known() {
		return string(StatusUnknown)
	}
	return string(s)
}
