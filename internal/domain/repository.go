package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for translation jobs. Only the
// orchestrator mutates jobs after creation.
type JobRepository interface {
	Create(ctx context.Context, job *TranslationJob) error
	GetByID(ctx context.Context, jobID string) (*TranslationJob, error)
	// BeginProcessing performs the conditional pending->processing
	// transition. It returns (nil, nil) when the job exists but the
	// transition did not apply, so duplicate queue deliveries degrade to a
	// no-op rather than a double translation.
	BeginProcessing(ctx context.Context, jobID string) (*TranslationJob, error)
	// Finish persists language sets, counters and the terminal status.
	Finish(ctx context.Context, job *TranslationJob) error
	// ResetForRetry moves a failed job back to pending with the bumped
	// retry count.
	ResetForRetry(ctx context.Context, job *TranslationJob) error
	// FindActive returns a pending or processing job for the same
	// (content, field), used for duplicate suppression at trigger time.
	FindActive(ctx context.Context, content ContentRef, fieldName string) (*TranslationJob, error)
	CountByStatus(ctx context.Context) (map[JobStatus]int64, error)
}

// TranslationRepository persists versioned translation results.
type TranslationRepository interface {
	// SaveVersioned appends a new version for the (content, field,
	// language) key when the text changed, flipping the previous current
	// record. Storing an identical text refreshes confidence in place.
	SaveVersioned(ctx context.Context, t *Translation) (*Translation, error)
	GetCurrent(ctx context.Context, content ContentRef, fieldName, language string) (*Translation, error)
}

// MemoryRepository is the durable tier of the translation memory.
type MemoryRepository interface {
	// GetAndTouch returns the entry for the key and increments its usage
	// count, or ErrNotFound.
	GetAndTouch(ctx context.Context, hash, sourceLang, targetLang string) (*MemoryEntry, error)
	// Upsert writes the entry, updating text and confidence in place on
	// conflict without resetting the usage count.
	Upsert(ctx context.Context, entry *MemoryEntry) error
}

// APILogRepository appends provider-call audit records.
type APILogRepository interface {
	Insert(ctx context.Context, entry *APILogEntry) error
	Summary(ctx context.Context) (*APILogSummary, error)
}

// Scheduler hands a job id to the external work queue. Delivery is
// fire-and-forget and assumed at-least-once; the orchestrator's processing
// guard absorbs duplicates.
type Scheduler interface {
	Enqueue(ctx context.Context, jobID string, delay time.Duration) error
}
