package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/contentforge/contentforge/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users / Credits ---

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, credits_remaining, credits_total, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.CreditsRemaining, &u.CreditsTotal, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) ReserveCredit(ctx context.Context, userID uuid.UUID) error {
	// Single conditional decrement: the WHERE clause makes the
	// check-and-decrement indivisible under concurrent submissions.
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET credits_remaining = credits_remaining - 1, updated_at = NOW()
		 WHERE id = $1 AND credits_remaining >= 1`, userID)
	if err != nil {
		return fmt.Errorf("reserve credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("reserve credit: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientCredits
	}
	return nil
}

func (s *PostgresStore) RefundCredit(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET credits_remaining = LEAST(credits_remaining + 1, credits_total), updated_at = NOW()
		 WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("refund credit: %w", err)
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

// --- Jobs ---

const jobColumns = `id, user_id, input_type, input_url, transcript, status, outputs,
	 error_message, retry_count, max_retries, processing_time_ms,
	 scheduled_at, started_at, completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	var outputs []byte
	err := row.Scan(&j.ID, &j.UserID, &j.InputType, &j.InputURL, &j.Transcript, &j.Status,
		&outputs, &j.ErrorMessage, &j.RetryCount, &j.MaxRetries, &j.ProcessingTimeMS,
		&j.ScheduledAt, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(outputs) > 0 {
		var o models.ContentOutputs
		if err := json.Unmarshal(outputs, &o); err != nil {
			return nil, fmt.Errorf("decode job outputs: %w", err)
		}
		j.Outputs = &o
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, user_id, input_type, input_url, transcript, status,
		   retry_count, max_retries, scheduled_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.UserID, job.InputType, job.InputURL, job.Transcript, job.Status,
		job.RetryCount, job.MaxRetries, job.ScheduledAt, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ClaimNextPending(ctx context.Context) (*models.Job, error) {
	// FOR UPDATE SKIP LOCKED makes the dequeue exclusive: two concurrent
	// claims never select the same row.
	row := s.pool.QueryRow(ctx,
		`WITH next AS (
		   SELECT id FROM jobs
		   WHERE status = 'pending' AND scheduled_at <= NOW()
		   ORDER BY scheduled_at ASC
		   LIMIT 1
		   FOR UPDATE SKIP LOCKED
		 )
		 UPDATE jobs SET status = 'processing', started_at = NOW(), updated_at = NOW()
		 FROM next WHERE jobs.id = next.id
		 RETURNING `+jobColumns)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // empty queue is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("claim next pending: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) SetJobTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET transcript = $2, updated_at = NOW() WHERE id = $1`, id, transcript)
	if err != nil {
		return fmt.Errorf("set job transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var validTransitions = map[string][]string{
	models.JobStatusPending:    {models.JobStatusProcessing, models.JobStatusFailed},
	models.JobStatusProcessing: {models.JobStatusCompleted, models.JobStatusFailed},
	models.JobStatusFailed:     {models.JobStatusPending},
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &JobUpdate{}
	for _, opt := range opts {
		opt(params)
	}

	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	valid := false
	for _, a := range validTransitions[currentStatus] {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid job status transition: %s -> %s", currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	// A completed job carries outputs, never an error message.
	if status == models.JobStatusCompleted && params.ErrorMessage == nil {
		query += ", error_message = NULL"
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.Outputs != nil {
		encoded, err := json.Marshal(params.Outputs)
		if err != nil {
			return fmt.Errorf("encode job outputs: %w", err)
		}
		query += fmt.Sprintf(", outputs = $%d", argIdx)
		args = append(args, encoded)
		argIdx++
	}
	if params.ProcessingTimeMS != nil {
		query += fmt.Sprintf(", processing_time_ms = $%d", argIdx)
		args = append(args, *params.ProcessingTimeMS)
		argIdx++
	}

	query += " WHERE id = $1"

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

func (s *PostgresStore) RequeueForRetry(ctx context.Context, id uuid.UUID) error {
	// scheduled_at moves forward so the retry is picked up by a later
	// worker invocation, never the one that just failed it.
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = 'pending', retry_count = retry_count + 1,
		   scheduled_at = NOW() + make_interval(mins => retry_count + 1),
		   started_at = NULL, completed_at = NULL, error_message = NULL,
		   updated_at = NOW()
		 WHERE id = $1 AND status = 'failed' AND retry_count < max_retries`, id)
	if err != nil {
		return fmt.Errorf("requeue for retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Transcript cache ---

func (s *PostgresStore) GetTranscriptCache(ctx context.Context, sourceType, sourceID string) (*models.TranscriptCacheEntry, error) {
	var e models.TranscriptCacheEntry
	err := s.pool.QueryRow(ctx,
		`SELECT source_type, source_id, transcript, word_count, access_count, last_accessed_at, created_at
		 FROM transcript_cache WHERE source_type = $1 AND source_id = $2`, sourceType, sourceID,
	).Scan(&e.SourceType, &e.SourceID, &e.Transcript, &e.WordCount,
		&e.AccessCount, &e.LastAccessedAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript cache: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) UpsertTranscriptCache(ctx context.Context, entry *models.TranscriptCacheEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO transcript_cache (source_type, source_id, transcript, word_count, access_count, last_accessed_at, created_at)
		 VALUES ($1, $2, $3, $4, 1, NOW(), NOW())
		 ON CONFLICT (source_type, source_id) DO UPDATE SET
		   transcript = EXCLUDED.transcript,
		   word_count = EXCLUDED.word_count,
		   last_accessed_at = NOW()`,
		entry.SourceType, entry.SourceID, entry.Transcript, entry.WordCount)
	if err != nil {
		return fmt.Errorf("upsert transcript cache: %w", err)
	}
	return nil
}

func (s *PostgresStore) TouchTranscriptCache(ctx context.Context, sourceType, sourceID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE transcript_cache SET access_count = access_count + 1, last_accessed_at = NOW()
		 WHERE source_type = $1 AND source_id = $2`, sourceType, sourceID)
	if err != nil {
		return fmt.Errorf("touch transcript cache: %w", err)
	}
	return nil
}

func (s *PostgresStore) PruneTranscriptCache(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM transcript_cache WHERE last_accessed_at < NOW() - $1::interval`,
		fmt.Sprintf("%d seconds", int64(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("prune transcript cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
