package domain

import "time"

// JobStatus represents the lifecycle state of a clip job.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition is possible from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ClipJob tracks one asynchronous clip-creation or upload-and-process
// request. VideoURL is set only on completed jobs, ErrorMsg only on failed
// ones; the job store enforces both.
type ClipJob struct {
	ID          string     `json:"clipId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	FailedAt    *time.Time `json:"failedAt,omitempty"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	ErrorMsg    string     `json:"error,omitempty"`
}

// ClipSource identifies where the source footage for a clip comes from.
type ClipSource string

const (
	ClipSourceCatalog ClipSource = "catalog"
	ClipSourceUpload  ClipSource = "upload"
)
