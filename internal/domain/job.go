package domain

import (
	"io"
	"time"
)

// JobState represents the lifecycle state of an ingestion job.
type JobState string

const (
	StatePending   JobState = "PENDING"
	StateCompleted JobState = "COMPLETED"
	StateFailed    JobState = "FAILED"
)

// IsTerminal returns true if the state represents a final state.
func (s JobState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// ArtifactName is the download name suggested for every processed file.
const ArtifactName = "processed.csv"

// Job tracks one upload-to-artifact processing unit.
type Job struct {
	ID         string    `json:"id"`
	State      JobState  `json:"state"`
	Filename   string    `json:"filename,omitempty"`
	OutputPath string    `json:"-"`
	Rows       int       `json:"rows,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Transition describes the single move of a job out of StatePending.
type Transition struct {
	State      JobState
	OutputPath string
	Rows       int
	Error      string
}

// Apply returns a copy of job with the transition applied.
func (t Transition) Apply(job Job, now time.Time) Job {
	job.State = t.State
	job.UpdatedAt = now
	switch t.State {
	case StateCompleted:
		job.OutputPath = t.OutputPath
		job.Rows = t.Rows
	case StateFailed:
		job.Error = t.Error
	}
	return job
}

// Task is the unit of background work handed to the worker pool.
type Task struct {
	JobID     string
	SpoolPath string
}

// Artifact is a readable handle to a completed job's output.
type Artifact struct {
	Name string
	Size int64
	Body io.ReadCloser
}

// SubmitResponse is returned after a successful upload.
type SubmitResponse struct {
	ID string `json:"id"`
}

// JobEvent is published once a job reaches a terminal state.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	State      JobState  `json:"state"`
	Rows       int       `json:"rows,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}
