package harbor

import (
	"fmt"
	"time"
)

// JobStatus tracks where a job is in its lifecycle, as observed by the
// client. The server is the source of truth; these values mirror what it
// reports and what the client records locally between API calls.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusSubmitted  JobStatus = "submitted"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
)

// Job is a job record as returned by the jobs API.
type Job struct {
	JobID     string    `json:"job_id"`
	Token     string    `json:"token,omitempty"`
	Agents    []string  `json:"agents,omitempty"`
	Files     []string  `json:"files,omitempty"`
	Status    JobStatus `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// AudioRecord is a single content item of a job: one processed audio file
// with its measured duration.
type AudioRecord struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	FileName      string    `json:"file_name"`
	AudioDuration float64   `json:"audio_duration"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// DeveloperToken is a usage token minted for an admin account.
type DeveloperToken struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// APIError is returned when the Harbor API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("harbor API %s returned %s: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("harbor API %s returned %s", e.Endpoint, e.Status)
}

// ErrTimeout is returned when a file does not become available before the
// polling deadline.
type ErrTimeout struct {
	FileName string
	Timeout  time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("timeout reached: %s not available after %s", e.FileName, e.Timeout)
}
