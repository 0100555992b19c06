package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"translator/internal/domain"
	"translator/internal/langdetect"
)

func newTriggerFixture() (*Trigger, *fixture) {
	f := newFixture()
	trigger := NewTrigger(TriggerOptions{
		Orchestrator: f.orchestrator,
		Jobs:         f.jobs,
		Detector:     langdetect.NewDetector("fr"),
		Languages:    []string{"fr", "en", "es"},
		Logger:       zerolog.New(io.Discard),
	})
	return trigger, f
}

func TestOnContentSavedCreatesJobsForTranslatableFields(t *testing.T) {
	t.Parallel()
	trigger, f := newTriggerFixture()

	jobs, err := trigger.OnContentSaved(context.Background(), product, map[string]string{
		"title":       "Chaise artisanale en bois massif",
		"description": "Une chaise robuste fabriquée dans les règles de l'art pour votre salon.",
	})
	if err != nil {
		t.Fatalf("OnContentSaved returned error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs created = %d, want 2", len(jobs))
	}
	for _, job := range jobs {
		if job.SourceLanguage != "fr" {
			t.Fatalf("source = %s, want fr detected", job.SourceLanguage)
		}
		if len(job.TargetLanguages) != 2 {
			t.Fatalf("targets = %v, want en and es", job.TargetLanguages)
		}
	}
	if len(f.scheduler.queue) != 2 {
		t.Fatalf("scheduler entries = %d, want 2", len(f.scheduler.queue))
	}
}

func TestOnContentSavedSkipsIneligibleContent(t *testing.T) {
	t.Parallel()
	trigger, f := newTriggerFixture()

	jobs, err := trigger.OnContentSaved(context.Background(), product, map[string]string{
		"title":       "https://example.com/product/42",
		"description": "REF_90210",
	})
	if err != nil {
		t.Fatalf("OnContentSaved returned error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("jobs created = %d, want 0 for excluded content", len(jobs))
	}
	if len(f.scheduler.queue) != 0 {
		t.Fatal("ineligible content was enqueued")
	}
}

func TestOnContentSavedIgnoresUnregisteredContentType(t *testing.T) {
	t.Parallel()
	trigger, _ := newTriggerFixture()

	jobs, err := trigger.OnContentSaved(context.Background(), domain.ContentRef{ContentType: "invoice", ObjectID: "7"}, map[string]string{
		"title": "Une chaise artisanale en bois",
	})
	if err != nil {
		t.Fatalf("OnContentSaved returned error: %v", err)
	}
	if jobs != nil {
		t.Fatalf("jobs = %v, want none for unknown content type", jobs)
	}
}

func TestOnContentSavedIgnoresUnlistedFields(t *testing.T) {
	t.Parallel()
	trigger, _ := newTriggerFixture()

	jobs, err := trigger.OnContentSaved(context.Background(), product, map[string]string{
		"internal_notes": "Une note interne suffisamment longue pour être éligible.",
	})
	if err != nil {
		t.Fatalf("OnContentSaved returned error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("jobs = %d, want 0 for fields outside the table", len(jobs))
	}
}

func TestOnContentSavedSuppressesDuplicateForSameText(t *testing.T) {
	t.Parallel()
	trigger, f := newTriggerFixture()
	fields := map[string]string{"title": "Chaise artisanale en bois massif"}

	first, err := trigger.OnContentSaved(context.Background(), product, fields)
	if err != nil || len(first) != 1 {
		t.Fatalf("first save: jobs=%d err=%v", len(first), err)
	}

	second, err := trigger.OnContentSaved(context.Background(), product, fields)
	if err != nil {
		t.Fatalf("second save returned error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second save created %d jobs, want duplicate suppressed", len(second))
	}
	if len(f.scheduler.queue) != 1 {
		t.Fatalf("scheduler entries = %d, want 1", len(f.scheduler.queue))
	}
}

func TestOnContentSavedAllowsNewJobWhenTextChanged(t *testing.T) {
	t.Parallel()
	trigger, _ := newTriggerFixture()

	first, err := trigger.OnContentSaved(context.Background(), product, map[string]string{"title": "Chaise artisanale en bois massif"})
	if err != nil || len(first) != 1 {
		t.Fatalf("first save: jobs=%d err=%v", len(first), err)
	}

	second, err := trigger.OnContentSaved(context.Background(), product, map[string]string{"title": "Chaise artisanale en chêne clair"})
	if err != nil {
		t.Fatalf("second save returned error: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second save created %d jobs, want 1 for changed text", len(second))
	}
}

func TestOnContentSavedAllowsDuplicateAfterTerminalJob(t *testing.T) {
	t.Parallel()
	trigger, f := newTriggerFixture()
	fields := map[string]string{"title": "Chaise artisanale en bois massif"}

	first, err := trigger.OnContentSaved(context.Background(), product, fields)
	if err != nil || len(first) != 1 {
		t.Fatalf("first save: jobs=%d err=%v", len(first), err)
	}
	if err := f.orchestrator.Process(context.Background(), first[0].ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	second, err := trigger.OnContentSaved(context.Background(), product, fields)
	if err != nil {
		t.Fatalf("second save returned error: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second save created %d jobs, want 1 once previous job is terminal", len(second))
	}
}

func TestTriggerManualReportsSkipReason(t *testing.T) {
	t.Parallel()
	trigger, _ := newTriggerFixture()

	_, err := trigger.TriggerManual(context.Background(), product, "title", "https://example.com/p/1")
	if !errors.Is(err, domain.ErrNotTranslatable) {
		t.Fatalf("err = %v, want ErrNotTranslatable", err)
	}

	_, err = trigger.TriggerManual(context.Background(), product, "product_id", "Une description parfaitement valable")
	if !errors.Is(err, domain.ErrNotTranslatable) {
		t.Fatalf("err = %v, want ErrNotTranslatable for excluded field name", err)
	}
}

func TestTriggerManualCreatesJob(t *testing.T) {
	t.Parallel()
	trigger, f := newTriggerFixture()

	job, err := trigger.TriggerManual(context.Background(), product, "description", "Une belle chaise en bois pour le salon")
	if err != nil {
		t.Fatalf("TriggerManual returned error: %v", err)
	}
	if job.SourceLanguage != "fr" {
		t.Fatalf("source = %s, want fr", job.SourceLanguage)
	}
	if len(f.scheduler.queue) != 1 {
		t.Fatalf("scheduler entries = %d, want 1", len(f.scheduler.queue))
	}

	_, err = trigger.TriggerManual(context.Background(), product, "description", "Une belle chaise en bois pour le salon")
	if !errors.Is(err, domain.ErrDuplicateJob) {
		t.Fatalf("err = %v, want ErrDuplicateJob for repeat request", err)
	}
}
