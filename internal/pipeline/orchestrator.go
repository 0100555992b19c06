// Package pipeline coordinates the translation flow: triggering jobs from
// content changes, dispatching per-language provider calls and driving jobs
// to a terminal status.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"translator/internal/domain"
	"translator/internal/providers/deepseek"
)

// Translator is the provider-facing seam of the orchestrator.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*deepseek.Result, error)
}

// Orchestrator owns the job lifecycle. It is the only writer of job state
// after creation.
type Orchestrator struct {
	jobs         domain.JobRepository
	translations domain.TranslationRepository
	translator   Translator
	scheduler    domain.Scheduler
	logger       zerolog.Logger

	now func() time.Time
}

// OrchestratorOptions wires an Orchestrator.
type OrchestratorOptions struct {
	Jobs         domain.JobRepository
	Translations domain.TranslationRepository
	Translator   Translator
	Scheduler    domain.Scheduler
	Logger       zerolog.Logger
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	return &Orchestrator{
		jobs:         opts.Jobs,
		translations: opts.Translations,
		translator:   opts.Translator,
		scheduler:    opts.Scheduler,
		logger:       opts.Logger,
		now:          time.Now,
	}
}

// CreateJob persists a pending job for the given text and schedules it for
// immediate processing. The source language is removed from the target set;
// an empty remainder is rejected with ErrNoTargetLanguages.
func (o *Orchestrator) CreateJob(ctx context.Context, content domain.ContentRef, fieldName, sourceLang, text string, targetLanguages []string) (*domain.TranslationJob, error) {
	targets := make([]string, 0, len(targetLanguages))
	for _, lang := range targetLanguages {
		if lang != sourceLang {
			targets = append(targets, lang)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("pipeline: %s field %s: %w", content, fieldName, domain.ErrNoTargetLanguages)
	}

	job := &domain.TranslationJob{
		ID:              uuid.NewString(),
		Content:         content,
		FieldName:       fieldName,
		SourceLanguage:  sourceLang,
		OriginalText:    text,
		Status:          domain.JobStatusPending,
		TargetLanguages: targets,
		TotalCharacters: len([]rune(text)) * len(targets),
		MaxRetries:      domain.DefaultMaxRetries,
		CreatedAt:       o.now(),
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("pipeline: create job: %w", err)
	}
	if err := o.scheduler.Enqueue(ctx, job.ID, 0); err != nil {
		return nil, fmt.Errorf("pipeline: enqueue job %s: %w", job.ID, err)
	}

	o.logger.Info().
		Str("job_id", job.ID).
		Str("content", content.String()).
		Str("field", fieldName).
		Int("targets", len(targets)).
		Msg("pipeline: job created")
	return job, nil
}

// Process runs one job to a terminal status. It is safe under at-least-once
// queue delivery: the pending->processing transition is conditional, so a
// duplicate delivery for a job already claimed or finished is a no-op.
//
// Each target language fails independently. A language error is recorded on
// the job and the loop moves on; only infrastructure errors (persistence,
// context cancellation) abort the run and reach the retry path.
func (o *Orchestrator) Process(ctx context.Context, jobID string) error {
	job, err := o.jobs.BeginProcessing(ctx, jobID)
	if err != nil {
		return fmt.Errorf("pipeline: claim job %s: %w", jobID, err)
	}
	if job == nil {
		o.logger.Debug().Str("job_id", jobID).Msg("pipeline: job not pending, skipping")
		return nil
	}

	for _, lang := range job.TargetLanguages {
		if job.HasCompleted(lang) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return o.failJob(ctx, job, err)
		}

		result, err := o.translator.Translate(ctx, job.OriginalText, job.SourceLanguage, lang)
		if err != nil {
			job.AddFailed(lang, err.Error())
			o.logger.Warn().
				Err(err).
				Str("job_id", job.ID).
				Str("language", lang).
				Msg("pipeline: language failed")
			continue
		}
		if !result.FromCache {
			job.APICallCount++
		}

		saved := &domain.Translation{
			Content:        job.Content,
			FieldName:      job.FieldName,
			Language:       lang,
			TranslatedText: result.TranslatedText,
			SourceText:     job.OriginalText,
			SourceLanguage: job.SourceLanguage,
			Quality:        domain.QualityAuto,
			Confidence:     &result.Confidence,
			JobID:          &job.ID,
		}
		if _, err := o.translations.SaveVersioned(ctx, saved); err != nil {
			return o.failJob(ctx, job, fmt.Errorf("save translation %s: %w", lang, err))
		}
		job.AddCompleted(lang)
	}

	return o.finishJob(ctx, job)
}

// finishJob derives and persists the terminal status once every target has
// been attempted.
func (o *Orchestrator) finishJob(ctx context.Context, job *domain.TranslationJob) error {
	return o.finalize(ctx, job, job.TerminalStatus())
}

func (o *Orchestrator) finalize(ctx context.Context, job *domain.TranslationJob, status domain.JobStatus) error {
	job.Status = status
	now := o.now()
	job.CompletedAt = &now
	if job.StartedAt != nil {
		seconds := now.Sub(*job.StartedAt).Seconds()
		job.ProcessingSeconds = &seconds
	}
	if err := o.jobs.Finish(ctx, job); err != nil {
		return fmt.Errorf("pipeline: finish job %s: %w", job.ID, err)
	}

	o.logger.Info().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Int("completed", len(job.CompletedLanguages)).
		Int("failed", len(job.FailedLanguages)).
		Int("api_calls", job.APICallCount).
		Msg("pipeline: job finished")
	return nil
}

// failJob handles a whole-job failure. Retryable jobs go back to pending and
// are re-enqueued with exponential backoff; exhausted jobs are terminally
// failed, keeping whatever per-language progress they made on record.
func (o *Orchestrator) failJob(ctx context.Context, job *domain.TranslationJob, cause error) error {
	job.ErrorMessage = cause.Error()

	if job.CanRetry() {
		job.RetryCount++
		if err := o.jobs.ResetForRetry(ctx, job); err != nil {
			return fmt.Errorf("pipeline: reset job %s: %w", job.ID, err)
		}
		delay := job.RetryDelay()
		if err := o.scheduler.Enqueue(ctx, job.ID, delay); err != nil {
			return fmt.Errorf("pipeline: reschedule job %s: %w", job.ID, err)
		}
		o.logger.Warn().
			Err(cause).
			Str("job_id", job.ID).
			Int("retry", job.RetryCount).
			Dur("delay", delay).
			Msg("pipeline: job rescheduled")
		return nil
	}

	for _, lang := range job.TargetLanguages {
		if !job.HasCompleted(lang) {
			job.AddFailed(lang, cause.Error())
		}
	}
	// Exhausting the retry budget is terminal failure even when earlier
	// attempts finished some languages.
	if err := o.finalize(ctx, job, domain.JobStatusFailed); err != nil {
		return err
	}
	return fmt.Errorf("pipeline: job %s exhausted retries: %w", job.ID, cause)
}
