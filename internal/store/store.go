package store

import (
	"context"
	"errors"
	"time"

	"github.com/contentforge/contentforge/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ReserveCredit atomically decrements one credit from the user's
	// balance. It is a single conditional UPDATE: under concurrent
	// submissions at most credits_remaining reservations succeed.
	// Returns ErrInsufficientCredits when the balance is empty.
	ReserveCredit(ctx context.Context, userID uuid.UUID) error
	// RefundCredit returns one reserved credit, capped at credits_total.
	RefundCredit(ctx context.Context, userID uuid.UUID) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Job, error)
	// ClaimNextPending atomically dequeues the oldest pending job and
	// marks it processing. Returns (nil, nil) when the queue is empty.
	// At most one caller receives any given job.
	ClaimNextPending(ctx context.Context) (*models.Job, error)
	SetJobTranscript(ctx context.Context, id uuid.UUID, transcript string) error
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	// RequeueForRetry moves a failed job back to pending and increments
	// its retry count. No-op (ErrNotFound) unless the job is failed and
	// still has retry budget.
	RequeueForRetry(ctx context.Context, id uuid.UUID) error

	GetTranscriptCache(ctx context.Context, sourceType, sourceID string) (*models.TranscriptCacheEntry, error)
	UpsertTranscriptCache(ctx context.Context, entry *models.TranscriptCacheEntry) error
	TouchTranscriptCache(ctx context.Context, sourceType, sourceID string) error
	PruneTranscriptCache(ctx context.Context, olderThan time.Duration) (int64, error)
}

// JobUpdate collects the optional fields of an UpdateJobStatus call.
// Exported so fake stores in tests can apply the options.
type JobUpdate struct {
	ErrorMessage     *string
	Outputs          *models.ContentOutputs
	ProcessingTimeMS *int64
}

type JobUpdateOption func(*JobUpdate)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.ErrorMessage = &msg
	}
}

func WithOutputs(outputs *models.ContentOutputs) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Outputs = outputs
	}
}

func WithProcessingTime(ms int64) JobUpdateOption {
	return func(p *JobUpdate) {
		p.ProcessingTimeMS = &ms
	}
}
