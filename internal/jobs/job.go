// Package jobs tracks deck generation runs from upload to a terminal
// status. Records live in memory and are owned by the Tracker; callers
// always receive copies.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

// Status is the lifecycle status of a job.
type Status string

const (
	StatusUploading        Status = "uploading"
	StatusProcessing       Status = "processing"
	StatusCompleted        Status = "completed"
	StatusError            Status = "error"
	StatusFailedFormatting Status = "failed_formatting"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusFailedFormatting:
		return true
	}
	return false
}

func (s Status) valid() bool {
	switch s {
	case StatusUploading, StatusProcessing, StatusCompleted, StatusError, StatusFailedFormatting:
		return true
	}
	return false
}

// Job is a tracked deck generation run. State holds the accumulated
// pipeline state as of the most recently completed stage and is never
// serialized; CurrentStep is derived from it when the record is copied out.
type Job struct {
	ID          uuid.UUID      `json:"job_id"`
	Owner       string         `json:"owner"`
	Filename    string         `json:"filename"`
	Status      Status         `json:"status"`
	CurrentStep string         `json:"current_step"`
	State       pipeline.State `json:"-"`
	ErrorMsg    string         `json:"error_msg,omitempty"`
	OutputKey   string         `json:"output_key,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

func (j *Job) clone() Job {
	out := *j
	out.CurrentStep = Label(j.State, j.Status)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
