package dashboard

import "github.com/Sternrassler/batch-dashboard/pkg/batch"

// StatusBadge is the rendered form of a status.
type StatusBadge struct {
	Label string
	Tone  batch.Tone
}

// BadgeFor renders s. Unknown values get the neutral tone.
func BadgeFor(s batch.Status) StatusBadge {
	return StatusBadge{Label: s.Label(), Tone: s.Tone()}
}
