package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RunStatus is the terminal state of one runner invocation.
type RunStatus string

const (
	RunStatusNoWork    RunStatus = "no_work"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// Success reports whether the status should terminate the process cleanly.
func (s RunStatus) Success() bool {
	return s == RunStatusNoWork || s == RunStatusCompleted
}

// RunRecord is a persisted generation run.
type RunRecord struct {
	ID           *surrealmodels.RecordID `json:"id,omitempty"`
	RunID        string                  `json:"run_id"`
	Topic        string                  `json:"topic"`
	Source       string                  `json:"source"`
	Status       RunStatus               `json:"status"`
	Periods      int                     `json:"periods"`
	Succeeded    int                     `json:"succeeded"`
	Backends     []string                `json:"backends"`
	ArtifactPath *string                 `json:"artifact_path,omitempty"`
	Restored     bool                    `json:"restored"`
	Error        *string                 `json:"error,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
}
