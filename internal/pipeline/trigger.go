package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"translator/internal/domain"
	"translator/internal/eligibility"
	"translator/internal/langdetect"
)

// FieldTable maps a content-type identifier to the field names that carry
// translatable text. Unknown content types never trigger work.
type FieldTable map[string][]string

// DefaultFieldTable covers the marketplace entities translated out of the box.
func DefaultFieldTable() FieldTable {
	return FieldTable{
		"product":      {"title", "description"},
		"restaurant":   {"name", "description"},
		"category":     {"name", "description"},
		"announcement": {"title", "body"},
	}
}

// Trigger turns content-save events and manual requests into translation
// jobs. The automatic path skips ineligible content silently; the manual
// path reports why nothing happened.
type Trigger struct {
	fields       FieldTable
	checker      *eligibility.Checker
	detector     *langdetect.Detector
	orchestrator *Orchestrator
	jobs         domain.JobRepository
	languages    []string
	logger       zerolog.Logger
}

// TriggerOptions wires a Trigger.
type TriggerOptions struct {
	Fields       FieldTable
	Checker      *eligibility.Checker
	Detector     *langdetect.Detector
	Orchestrator *Orchestrator
	Jobs         domain.JobRepository
	// Languages is the full enabled set; the job's source language is
	// subtracted per field at creation time.
	Languages []string
	Logger    zerolog.Logger
}

func NewTrigger(opts TriggerOptions) *Trigger {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFieldTable()
	}
	checker := opts.Checker
	if checker == nil {
		checker = eligibility.NewChecker()
	}
	detector := opts.Detector
	if detector == nil {
		detector = langdetect.NewDetector("")
	}
	languages := opts.Languages
	if len(languages) == 0 {
		languages = langdetect.Supported()
	}
	return &Trigger{
		fields:       fields,
		checker:      checker,
		detector:     detector,
		orchestrator: opts.Orchestrator,
		jobs:         opts.Jobs,
		languages:    languages,
		logger:       opts.Logger,
	}
}

// OnContentSaved inspects the changed fields of a saved entity and creates
// one job per field that passes eligibility. Skips are logged, not errors:
// the save path must never fail because a field was not worth translating.
func (t *Trigger) OnContentSaved(ctx context.Context, content domain.ContentRef, fields map[string]string) ([]*domain.TranslationJob, error) {
	names, ok := t.fields[content.ContentType]
	if !ok {
		t.logger.Debug().Str("content", content.String()).Msg("trigger: content type not registered")
		return nil, nil
	}

	var jobs []*domain.TranslationJob
	for _, name := range names {
		text, present := fields[name]
		if !present {
			continue
		}
		job, err := t.triggerField(ctx, content, name, text)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotTranslatable),
				errors.Is(err, domain.ErrDuplicateJob),
				errors.Is(err, domain.ErrNoTargetLanguages):
				t.logger.Debug().
					Str("content", content.String()).
					Str("field", name).
					AnErr("reason", err).
					Msg("trigger: field skipped")
				continue
			default:
				return jobs, err
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// TriggerManual creates a job for one explicit field. Unlike the save hook it
// surfaces the skip reason to the caller.
func (t *Trigger) TriggerManual(ctx context.Context, content domain.ContentRef, fieldName, text string) (*domain.TranslationJob, error) {
	return t.triggerField(ctx, content, fieldName, text)
}

func (t *Trigger) triggerField(ctx context.Context, content domain.ContentRef, fieldName, text string) (*domain.TranslationJob, error) {
	if !t.checker.IsTranslatable(fieldName, text) {
		return nil, fmt.Errorf("trigger: %s field %s: %w", content, fieldName, domain.ErrNotTranslatable)
	}

	// One active job per (content, field): a second save while the first is
	// still queued would only duplicate work on the same snapshot.
	active, err := t.jobs.FindActive(ctx, content, fieldName)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("trigger: check active job: %w", err)
	}
	if active != nil {
		if active.OriginalText == text {
			return nil, fmt.Errorf("trigger: %s field %s: %w", content, fieldName, domain.ErrDuplicateJob)
		}
		t.logger.Info().
			Str("job_id", active.ID).
			Str("content", content.String()).
			Str("field", fieldName).
			Msg("trigger: text changed while job active, creating follow-up")
	}

	sourceLang := t.detector.Detect(text)
	return t.orchestrator.CreateJob(ctx, content, fieldName, sourceLang, text, t.languages)
}
