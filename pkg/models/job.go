package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Input types accepted by the submission endpoint.
const (
	InputTypeYouTube = "youtube"
	InputTypeAudio   = "audio"
	InputTypeText    = "text"
)

// DefaultMaxRetries is the retry budget assigned to new jobs.
const DefaultMaxRetries = 3

// Job tracks one generation request. The API returns a generation_id on
// POST /api/v1/generations; the client polls GET /api/v1/generations/{id}
// until status is completed or failed. Outputs and ErrorMessage are
// mutually exclusive and both nil while the job is pending or processing.
type Job struct {
	ID               uuid.UUID       `db:"id"                 json:"id"`
	UserID           uuid.UUID       `db:"user_id"            json:"user_id"`
	InputType        string          `db:"input_type"         json:"input_type"`
	InputURL         *string         `db:"input_url"          json:"input_url,omitempty"`
	Transcript       *string         `db:"transcript"         json:"transcript,omitempty"`
	Status           string          `db:"status"             json:"status"`
	Outputs          *ContentOutputs `db:"outputs"            json:"outputs,omitempty"`
	ErrorMessage     *string         `db:"error_message"      json:"error_message,omitempty"`
	RetryCount       int             `db:"retry_count"        json:"retry_count"`
	MaxRetries       int             `db:"max_retries"        json:"max_retries"`
	ProcessingTimeMS *int64          `db:"processing_time_ms" json:"processing_time_ms,omitempty"`
	ScheduledAt      time.Time       `db:"scheduled_at"       json:"scheduled_at"`
	StartedAt        *time.Time      `db:"started_at"         json:"started_at,omitempty"`
	CompletedAt      *time.Time      `db:"completed_at"       json:"completed_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"         json:"updated_at"`
}

// RetryEligible reports whether a failed job still has retry budget.
func (j *Job) RetryEligible() bool {
	return j.RetryCount < j.MaxRetries
}
