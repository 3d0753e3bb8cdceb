// Package job owns the generation job lifecycle: submission with credit
// reservation, exclusive claiming, execution, and retry accounting.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contentforge/contentforge/internal/cache"
	"github.com/contentforge/contentforge/internal/generator"
	"github.com/contentforge/contentforge/internal/storage"
	"github.com/contentforge/contentforge/internal/store"
	"github.com/contentforge/contentforge/internal/transcript"
	"github.com/contentforge/contentforge/pkg/models"
)

var ErrUnsupportedInputType = errors.New("unsupported input type")

const jobStatusTTL = 30 * time.Minute

// Resolver is the transcript resolution surface the machine depends on.
// Satisfied by transcript.CachingResolver.
type Resolver interface {
	ResolveYouTube(ctx context.Context, url string) (string, error)
	ResolveAudio(ctx context.Context, data []byte, filename, mimeType string) (string, error)
	ResolveText(ctx context.Context, text string) (string, error)
}

// ContentGenerator is the generation surface the machine depends on.
// Satisfied by generator.Generator.
type ContentGenerator interface {
	GenerateAll(ctx context.Context, transcript string) (*models.ContentOutputs, error)
}

// SubmitParams holds one validated submission.
type SubmitParams struct {
	UserID    uuid.UUID
	InputType string
	InputURL  string
	InputText string
	FileData  []byte
	FileName  string
	FileMIME  string
}

// Result reports the outcome of executing one claimed job.
type Result struct {
	ID               uuid.UUID `json:"id"`
	Status           string    `json:"status"`
	WillRetry        bool      `json:"will_retry"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

// Machine coordinates the job lifecycle across the store, cache, object
// storage, resolver and generator.
type Machine struct {
	store      store.Store
	cache      cache.Cache
	objects    storage.ObjectStore
	resolver   Resolver
	generator  ContentGenerator
	maxRetries int
}

func NewMachine(st store.Store, ca cache.Cache, objects storage.ObjectStore, resolver Resolver, gen ContentGenerator, maxRetries int) *Machine {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	return &Machine{
		store:      st,
		cache:      ca,
		objects:    objects,
		resolver:   resolver,
		generator:  gen,
		maxRetries: maxRetries,
	}
}

// Submit validates the input, reserves one credit, and inserts a pending
// job. Validation happens before the reservation so rejected submissions
// are side-effect-free. Returns store.ErrInsufficientCredits when the
// user's balance is empty; no job is created on that path.
func (m *Machine) Submit(ctx context.Context, params SubmitParams) (*models.Job, error) {
	var textTranscript string
	switch params.InputType {
	case models.InputTypeYouTube:
		if _, err := transcript.ExtractVideoID(params.InputURL); err != nil {
			return nil, err
		}
	case models.InputTypeText:
		trimmed, err := m.resolver.ResolveText(ctx, params.InputText)
		if err != nil {
			return nil, err
		}
		textTranscript = trimmed
	case models.InputTypeAudio:
		if len(params.FileData) == 0 || params.FileName == "" {
			return nil, fmt.Errorf("%w: audio submission requires a file", transcript.ErrUnsupportedFormat)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInputType, params.InputType)
	}

	if err := m.store.ReserveCredit(ctx, params.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:          uuid.New(),
		UserID:      params.UserID,
		InputType:   params.InputType,
		Status:      models.JobStatusPending,
		MaxRetries:  m.maxRetries,
		ScheduledAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch params.InputType {
	case models.InputTypeYouTube:
		job.InputURL = &params.InputURL
	case models.InputTypeText:
		job.Transcript = &textTranscript
	case models.InputTypeAudio:
		// The storage key doubles as input_url so the worker can fetch
		// the bytes back without a second lookup.
		key := fmt.Sprintf("%s/%s", job.ID, path.Base(params.FileName))
		job.InputURL = &key
	}

	if err := m.store.CreateJob(ctx, job); err != nil {
		if refundErr := m.store.RefundCredit(ctx, params.UserID); refundErr != nil {
			slog.Error("credit refund failed after job insert error", "user_id", params.UserID, "error", refundErr)
		}
		return nil, fmt.Errorf("creating job: %w", err)
	}

	if params.InputType == models.InputTypeAudio {
		if err := m.objects.Upload(ctx, *job.InputURL, params.FileData, params.FileMIME); err != nil {
			slog.Error("audio upload failed", "job_id", job.ID, "error", err)
			// The job must not be left stuck pending with no bytes behind it.
			_ = m.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed,
				store.WithErrorMessage("upload failed"))
			job.Status = models.JobStatusFailed
			_ = m.cache.SetJobStatus(ctx, job.UserID, job.ID, models.JobStatusFailed, jobStatusTTL)
			return job, nil
		}
	}

	_ = m.cache.SetJobStatus(ctx, job.UserID, job.ID, models.JobStatusPending, jobStatusTTL)
	return job, nil
}

// Execute runs one claimed job to a terminal state. The job arrives
// already marked processing by ClaimNextPending. Failures never
// propagate as errors; they are recorded on the job and reported in the
// Result.
func (m *Machine) Execute(ctx context.Context, job *models.Job) Result {
	start := time.Now()

	text, err := m.resolveTranscript(ctx, job)
	if err != nil {
		return m.fail(ctx, job, start, err)
	}

	if job.Transcript == nil {
		if err := m.store.SetJobTranscript(ctx, job.ID, text); err != nil {
			return m.fail(ctx, job, start, fmt.Errorf("persisting transcript: %w", err))
		}
	}

	if err := transcript.Validate(text); err != nil {
		return m.fail(ctx, job, start, err)
	}

	outputs, err := m.generator.GenerateAll(ctx, text)
	if err != nil {
		return m.fail(ctx, job, start, err)
	}

	elapsed := time.Since(start).Milliseconds()
	if err := m.store.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted,
		store.WithOutputs(outputs),
		store.WithProcessingTime(elapsed)); err != nil {
		return m.fail(ctx, job, start, fmt.Errorf("persisting outputs: %w", err))
	}
	_ = m.cache.SetJobStatus(ctx, job.UserID, job.ID, models.JobStatusCompleted, jobStatusTTL)

	slog.Info("job completed", "job_id", job.ID, "input_type", job.InputType, "processing_time_ms", elapsed)
	return Result{ID: job.ID, Status: models.JobStatusCompleted, ProcessingTimeMS: elapsed}
}

// ExecuteBatch claims and executes up to limit pending jobs. Jobs are
// independent: one failing job never aborts the rest of the batch.
func (m *Machine) ExecuteBatch(ctx context.Context, limit int) ([]Result, error) {
	var results []Result
	for i := 0; i < limit; i++ {
		job, err := m.store.ClaimNextPending(ctx)
		if err != nil {
			return results, fmt.Errorf("claiming job: %w", err)
		}
		if job == nil {
			break
		}
		results = append(results, m.Execute(ctx, job))
	}
	return results, nil
}

func (m *Machine) resolveTranscript(ctx context.Context, job *models.Job) (string, error) {
	if job.Transcript != nil {
		return *job.Transcript, nil
	}

	switch job.InputType {
	case models.InputTypeYouTube:
		if job.InputURL == nil {
			return "", fmt.Errorf("%w: missing input URL", transcript.ErrInvalidYouTubeURL)
		}
		return m.resolver.ResolveYouTube(ctx, *job.InputURL)
	case models.InputTypeAudio:
		if job.InputURL == nil {
			return "", fmt.Errorf("%w: missing storage key", storage.ErrObjectNotFound)
		}
		data, err := m.objects.Download(ctx, *job.InputURL)
		if err != nil {
			return "", err
		}
		filename := path.Base(*job.InputURL)
		return m.resolver.ResolveAudio(ctx, data, filename, audioMIMEFromFilename(filename))
	case models.InputTypeText:
		return "", fmt.Errorf("text job %s has no stored transcript", job.ID)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedInputType, job.InputType)
	}
}

func (m *Machine) fail(ctx context.Context, job *models.Job, start time.Time, cause error) Result {
	elapsed := time.Since(start).Milliseconds()

	if err := m.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed,
		store.WithErrorMessage(cause.Error()),
		store.WithProcessingTime(elapsed)); err != nil {
		slog.Error("marking job failed", "job_id", job.ID, "error", err)
	}

	willRetry := job.RetryEligible() && retryable(cause)
	if willRetry {
		if err := m.store.RequeueForRetry(ctx, job.ID); err != nil {
			slog.Error("requeue for retry failed", "job_id", job.ID, "error", err)
			willRetry = false
		}
	}

	status := models.JobStatusFailed
	if willRetry {
		status = models.JobStatusPending
	}
	_ = m.cache.SetJobStatus(ctx, job.UserID, job.ID, status, jobStatusTTL)

	slog.Warn("job failed", "job_id", job.ID, "input_type", job.InputType,
		"will_retry", willRetry, "error", cause)
	return Result{
		ID:               job.ID,
		Status:           models.JobStatusFailed,
		WillRetry:        willRetry,
		ProcessingTimeMS: elapsed,
		ErrorMessage:     cause.Error(),
	}
}

// retryable reports whether a failure might succeed on a later
// invocation. Input defects and malformed model responses are permanent;
// everything else (upstream outages, timeouts) is worth another pass.
func retryable(err error) bool {
	permanent := []error{
		transcript.ErrInputTooShort,
		transcript.ErrUnsupportedFormat,
		transcript.ErrFileTooLarge,
		transcript.ErrInvalidYouTubeURL,
		storage.ErrObjectNotFound,
		generator.ErrMalformedResponse,
	}
	for _, p := range permanent {
		if errors.Is(err, p) {
			return false
		}
	}
	return true
}

func audioMIMEFromFilename(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/x-m4a"
	case ".mp4":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
