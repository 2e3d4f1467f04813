package migration

import (
	"time"
)

// Outcome of a run
type Outcome uint8

// Run outcomes
const (
	OutcomeNone Outcome = iota
	OutcomeRunning
	OutcomeCompleted
	OutcomeCancelled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// IsTerminal tells if a run with this outcome is over
func (o Outcome) IsTerminal() bool {
	return o >= OutcomeCompleted
}

// Progress is an immutable snapshot of the state of a migration
type Progress struct {
	Outcome Outcome
	Stage   string

	Files           int64
	Revisions       int64
	SkippedRecords  int64
	Changesets      int
	Exported        int64
	Commits         int64
	Tags            int64
	SkippedExported int64

	LastStatus string
	ActiveTime time.Duration
	Idle       bool
	// Aborting is set once an abort is requested, until the run is over
	Aborting bool
	Failures []error
}
