package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"translator/internal/domain"
	"translator/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.TranslationJob) error {
	targets, completed, failed, err := marshalLanguageSets(job)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.Content.ContentType,
		job.Content.ObjectID,
		job.FieldName,
		job.SourceLanguage,
		job.OriginalText,
		job.Status,
		targets,
		completed,
		failed,
		job.TotalCharacters,
		job.APICallCount,
		job.RetryCount,
		job.MaxRetries,
		job.ErrorMessage,
	)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.TranslationJob, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QGetJob, jobID)
	return scanJob(row)
}

// BeginProcessing applies the conditional pending->processing transition.
// When the row was not in pending, it returns (nil, nil) so duplicate queue
// deliveries become a no-op; a missing job yields domain.ErrNotFound.
func (r *JobRepositoryPG) BeginProcessing(ctx context.Context, jobID string) (*domain.TranslationJob, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QBeginProcessing, jobID)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	// Nothing transitioned: distinguish "already claimed" from "gone".
	if _, getErr := r.GetByID(ctx, jobID); getErr != nil {
		return nil, getErr
	}
	return nil, nil
}

// Finish persists language sets, counters and the resulting status.
func (r *JobRepositoryPG) Finish(ctx context.Context, job *domain.TranslationJob) error {
	_, completed, failed, err := marshalLanguageSets(job)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sqlinline.QFinishJob,
		job.ID,
		job.Status,
		completed,
		failed,
		job.APICallCount,
		job.ErrorMessage,
		job.ProcessingSeconds,
	)
	return err
}

// ResetForRetry moves a failed job back to pending with the bumped retry count.
func (r *JobRepositoryPG) ResetForRetry(ctx context.Context, job *domain.TranslationJob) error {
	_, err := r.pool.Exec(ctx, sqlinline.QResetJobForRetry, job.ID, job.RetryCount, job.ErrorMessage)
	return err
}

// FindActive returns a pending or processing job for the same (content, field).
func (r *JobRepositoryPG) FindActive(ctx context.Context, content domain.ContentRef, fieldName string) (*domain.TranslationJob, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QFindActiveJob, content.ContentType, content.ObjectID, fieldName)
	return scanJob(row)
}

// CountByStatus returns job totals grouped by status.
func (r *JobRepositoryPG) CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error) {
	rows, err := r.pool.Query(ctx, sqlinline.QCountJobsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.JobStatus]int64)
	for rows.Next() {
		var status domain.JobStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func marshalLanguageSets(job *domain.TranslationJob) (targets, completed, failed []byte, err error) {
	if targets, err = json.Marshal(emptyIfNil(job.TargetLanguages)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode target languages: %w", err)
	}
	if completed, err = json.Marshal(emptyIfNil(job.CompletedLanguages)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode completed languages: %w", err)
	}
	failedSet := job.FailedLanguages
	if failedSet == nil {
		failedSet = map[string]string{}
	}
	if failed, err = json.Marshal(failedSet); err != nil {
		return nil, nil, nil, fmt.Errorf("encode failed languages: %w", err)
	}
	return targets, completed, failed, nil
}

func emptyIfNil(langs []string) []string {
	if langs == nil {
		return []string{}
	}
	return langs
}

func scanJob(row pgx.Row) (*domain.TranslationJob, error) {
	var (
		job                        domain.TranslationJob
		targets, completed, failed []byte
	)
	err := row.Scan(
		&job.ID,
		&job.Content.ContentType,
		&job.Content.ObjectID,
		&job.FieldName,
		&job.SourceLanguage,
		&job.OriginalText,
		&job.Status,
		&targets,
		&completed,
		&failed,
		&job.TotalCharacters,
		&job.APICallCount,
		&job.ProcessingSeconds,
		&job.RetryCount,
		&job.MaxRetries,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(targets, &job.TargetLanguages); err != nil {
		return nil, fmt.Errorf("decode target languages: %w", err)
	}
	if err := json.Unmarshal(completed, &job.CompletedLanguages); err != nil {
		return nil, fmt.Errorf("decode completed languages: %w", err)
	}
	if err := json.Unmarshal(failed, &job.FailedLanguages); err != nil {
		return nil, fmt.Errorf("decode failed languages: %w", err)
	}
	return &job, nil
}
