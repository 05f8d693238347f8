package history

import "time"

// Phase names the command a run belongs to.
type Phase string

const (
	PhaseDetect    Phase = "detect"
	PhaseTranscode Phase = "transcode"
	PhaseFixNames  Phase = "fix-names"
	PhasePrune     Phase = "prune"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
	StatusFailed      Status = "failed"
)

// Run is one recorded invocation of a phase command.
type Run struct {
	ID         string
	Phase      Phase
	Root       string
	Status     Status
	StartedAt  time.Time
	FinishedAt *time.Time
	Counts
}

// ShortID is the id prefix used in log lines.
func (r Run) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Duration is the wall time of a finished run, or zero.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Counts are the per-run tallies. For detection, Succeeded counts files with
// a detected encoding; for transcoding it counts rewritten files.
type Counts struct {
	Files     int
	Succeeded int
	Skipped   int
	Failed    int
	Pending   int
}

// Failure is one file that failed during a run.
type Failure struct {
	Path    string
	Message string
}
