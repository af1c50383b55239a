package models

import (
	"encoding/json"
	"fmt"
)

// JobStatus is the processing state reported by the backend for one
// uploaded document. The set is closed: an unknown value is a decode
// error, not a silent fall-through.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// ParseJobStatus converts a wire string into a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseJobStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsTerminal reports whether the status ends a job's tracked lifetime.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one document's asynchronous processing task, tracked until it
// reaches a terminal status. Owned exclusively by the tracker.
type Job struct {
	ID          string    `json:"doc_id"`
	DisplayName string    `json:"filename"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
}

// UploadResponse is the backend's answer to a document upload.
type UploadResponse struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// StatusResponse is the backend's answer to a status poll.
type StatusResponse struct {
	DocID    string    `json:"doc_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
}
