package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"translator/internal/domain"
	"translator/internal/providers/deepseek"
)

type fakeJobRepo struct {
	jobs map[string]*domain.TranslationJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*domain.TranslationJob)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.TranslationJob) error {
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, jobID string) (*domain.TranslationJob, error) {
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) BeginProcessing(_ context.Context, jobID string) (*domain.TranslationJob, error) {
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if job.Status != domain.JobStatusPending {
		return nil, nil
	}
	job.Status = domain.JobStatusProcessing
	now := time.Now()
	job.StartedAt = &now
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) Finish(_ context.Context, job *domain.TranslationJob) error {
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) ResetForRetry(_ context.Context, job *domain.TranslationJob) error {
	copied := *job
	copied.Status = domain.JobStatusPending
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) FindActive(_ context.Context, content domain.ContentRef, fieldName string) (*domain.TranslationJob, error) {
	for _, job := range r.jobs {
		if job.Content == content && job.FieldName == fieldName && !job.Status.IsTerminal() {
			copied := *job
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeJobRepo) CountByStatus(context.Context) (map[domain.JobStatus]int64, error) {
	out := make(map[domain.JobStatus]int64)
	for _, job := range r.jobs {
		out[job.Status]++
	}
	return out, nil
}

type fakeTranslationRepo struct {
	saved []*domain.Translation
}

func (r *fakeTranslationRepo) SaveVersioned(_ context.Context, t *domain.Translation) (*domain.Translation, error) {
	copied := *t
	copied.Version = 1
	copied.IsCurrent = true
	r.saved = append(r.saved, &copied)
	return &copied, nil
}

func (r *fakeTranslationRepo) GetCurrent(_ context.Context, content domain.ContentRef, fieldName, language string) (*domain.Translation, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		t := r.saved[i]
		if t.Content == content && t.FieldName == fieldName && t.Language == language {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

type enqueued struct {
	jobID string
	delay time.Duration
}

type fakeScheduler struct {
	queue []enqueued
}

func (s *fakeScheduler) Enqueue(_ context.Context, jobID string, delay time.Duration) error {
	s.queue = append(s.queue, enqueued{jobID: jobID, delay: delay})
	return nil
}

// fakeTranslator translates by prefixing the language code and can be told
// to fail specific languages.
type fakeTranslator struct {
	failing map[string]error
	calls   int
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, targetLang string) (*deepseek.Result, error) {
	f.calls++
	if err, ok := f.failing[targetLang]; ok {
		return nil, err
	}
	return &deepseek.Result{
		TranslatedText: "[" + targetLang + "] " + text,
		Confidence:     0.92,
	}, nil
}

type fixture struct {
	jobs         *fakeJobRepo
	translations *fakeTranslationRepo
	scheduler    *fakeScheduler
	translator   *fakeTranslator
	orchestrator *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		jobs:         newFakeJobRepo(),
		translations: &fakeTranslationRepo{},
		scheduler:    &fakeScheduler{},
		translator:   &fakeTranslator{failing: make(map[string]error)},
	}
	f.orchestrator = NewOrchestrator(OrchestratorOptions{
		Jobs:         f.jobs,
		Translations: f.translations,
		Translator:   f.translator,
		Scheduler:    f.scheduler,
		Logger:       zerolog.New(io.Discard),
	})
	return f
}

var product = domain.ContentRef{ContentType: "product", ObjectID: "42"}

func TestCreateJobFiltersSourceLanguage(t *testing.T) {
	t.Parallel()
	f := newFixture()

	job, err := f.orchestrator.CreateJob(context.Background(), product, "description", "fr", "Chaise en bois massif", []string{"fr", "en", "es"})
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if got, want := fmt.Sprint(job.TargetLanguages), fmt.Sprint([]string{"en", "es"}); got != want {
		t.Fatalf("targets = %v, want %v", job.TargetLanguages, want)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("status = %s, want pending", job.Status)
	}
	if len(f.scheduler.queue) != 1 || f.scheduler.queue[0].jobID != job.ID || f.scheduler.queue[0].delay != 0 {
		t.Fatalf("scheduler queue = %+v, want one immediate entry for %s", f.scheduler.queue, job.ID)
	}
}

func TestCreateJobRejectsEmptyTargetSet(t *testing.T) {
	t.Parallel()
	f := newFixture()

	_, err := f.orchestrator.CreateJob(context.Background(), product, "description", "fr", "Chaise", []string{"fr"})
	if !errors.Is(err, domain.ErrNoTargetLanguages) {
		t.Fatalf("err = %v, want ErrNoTargetLanguages", err)
	}
	if len(f.scheduler.queue) != 0 {
		t.Fatal("job was enqueued despite rejection")
	}
}

func TestProcessCompletesAllLanguages(t *testing.T) {
	t.Parallel()
	f := newFixture()
	job, err := f.orchestrator.CreateJob(context.Background(), product, "description", "fr", "Chaise en bois", []string{"fr", "en", "es", "de"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	stored, err := f.jobs.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if len(stored.CompletedLanguages) != 3 || len(stored.FailedLanguages) != 0 {
		t.Fatalf("completed = %v failed = %v, want 3/0", stored.CompletedLanguages, stored.FailedLanguages)
	}
	if stored.APICallCount != 3 {
		t.Fatalf("api calls = %d, want 3", stored.APICallCount)
	}
	if stored.CompletedAt == nil || stored.ProcessingSeconds == nil {
		t.Fatal("completion timestamps not set")
	}
	if len(f.translations.saved) != 3 {
		t.Fatalf("translations saved = %d, want 3", len(f.translations.saved))
	}
	for _, saved := range f.translations.saved {
		if saved.Quality != domain.QualityAuto {
			t.Fatalf("quality = %s, want auto", saved.Quality)
		}
		if saved.JobID == nil || *saved.JobID != job.ID {
			t.Fatalf("job id = %v, want %s", saved.JobID, job.ID)
		}
		if saved.Confidence == nil || *saved.Confidence != 0.92 {
			t.Fatalf("confidence = %v, want 0.92", saved.Confidence)
		}
	}
}

func TestProcessIsolatesLanguageFailures(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.translator.failing["es"] = fmt.Errorf("provider timeout")
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en", "es", "de"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	stored, _ := f.jobs.GetByID(context.Background(), job.ID)
	if stored.Status != domain.JobStatusPartial {
		t.Fatalf("status = %s, want partial", stored.Status)
	}
	if len(stored.CompletedLanguages) != 2 {
		t.Fatalf("completed = %v, want en and de", stored.CompletedLanguages)
	}
	if msg, ok := stored.FailedLanguages["es"]; !ok || msg != "provider timeout" {
		t.Fatalf("failed = %v, want es recorded with error", stored.FailedLanguages)
	}
	if len(f.translations.saved) != 2 {
		t.Fatalf("translations saved = %d, want only the successes", len(f.translations.saved))
	}
}

func TestProcessAllLanguagesFailedIsFailed(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.translator.failing["en"] = fmt.Errorf("boom")
	f.translator.failing["es"] = fmt.Errorf("boom")
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en", "es"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	stored, _ := f.jobs.GetByID(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
}

func TestProcessSkipsNonPendingJob(t *testing.T) {
	t.Parallel()
	f := newFixture()
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	callsAfterFirst := f.translator.calls

	// Duplicate queue delivery for a finished job must not retranslate.
	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if f.translator.calls != callsAfterFirst {
		t.Fatalf("translator called %d more times on duplicate delivery", f.translator.calls-callsAfterFirst)
	}
}

func TestProcessUnknownJobIsNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture()
	err := f.orchestrator.Process(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProcessInfrastructureFailureReschedulesWithBackoff(t *testing.T) {
	t.Parallel()
	f := newFixture()
	failing := &failingTranslationRepo{}
	f.orchestrator.translations = failing
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.scheduler.queue = nil

	wantDelays := []time.Duration{2 * time.Minute, 4 * time.Minute, 8 * time.Minute}
	for i, want := range wantDelays {
		if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
			t.Fatalf("Process attempt %d: %v", i+1, err)
		}
		stored, _ := f.jobs.GetByID(context.Background(), job.ID)
		if stored.Status != domain.JobStatusPending {
			t.Fatalf("attempt %d: status = %s, want pending", i+1, stored.Status)
		}
		if stored.RetryCount != i+1 {
			t.Fatalf("attempt %d: retry count = %d, want %d", i+1, stored.RetryCount, i+1)
		}
		if len(f.scheduler.queue) != i+1 {
			t.Fatalf("attempt %d: queue = %+v, want %d entries", i+1, f.scheduler.queue, i+1)
		}
		if got := f.scheduler.queue[i].delay; got != want {
			t.Fatalf("attempt %d: delay = %v, want %v", i+1, got, want)
		}
	}

	// Retries exhausted: the next failure is terminal and never re-enqueued.
	err = f.orchestrator.Process(context.Background(), job.ID)
	if err == nil {
		t.Fatal("Process succeeded after retry exhaustion")
	}
	stored, _ := f.jobs.GetByID(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if len(f.scheduler.queue) != len(wantDelays) {
		t.Fatalf("exhausted job was re-enqueued: %+v", f.scheduler.queue)
	}
	if len(stored.FailedLanguages) != len(stored.TargetLanguages) {
		t.Fatalf("failed languages = %v, want every target recorded", stored.FailedLanguages)
	}
}

func TestProcessRetryResumesCompletedLanguages(t *testing.T) {
	t.Parallel()
	f := newFixture()
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en", "es"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	// Simulate a prior run that finished "en" before the job went back to
	// pending for a retry.
	stored := f.jobs.jobs[job.ID]
	stored.AddCompleted("en")
	stored.RetryCount = 1

	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if f.translator.calls != 1 {
		t.Fatalf("translator calls = %d, want only the unfinished language", f.translator.calls)
	}
	final, _ := f.jobs.GetByID(context.Background(), job.ID)
	if final.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
}

func TestProcessCachedResultDoesNotCountAPICall(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.orchestrator.translator = translateFunc(func(_ context.Context, text, _, targetLang string) (*deepseek.Result, error) {
		return &deepseek.Result{TranslatedText: text, Confidence: 0.9, FromCache: true}, nil
	})
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en", "es"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	stored, _ := f.jobs.GetByID(context.Background(), job.ID)
	if stored.APICallCount != 0 {
		t.Fatalf("api calls = %d, want 0 for cache hits", stored.APICallCount)
	}
	if stored.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
}

func TestProcessExhaustedRetriesFailsDespiteCompletedLanguages(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.orchestrator.translations = &languageFailingTranslationRepo{lang: "es"}
	job, err := f.orchestrator.CreateJob(context.Background(), product, "title", "fr", "Chaise en bois", []string{"fr", "en", "es"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	// "en" saves fine on the first attempt; "es" keeps hitting the store
	// error until the retry budget is gone.
	for i := 0; i < domain.DefaultMaxRetries; i++ {
		if err := f.orchestrator.Process(context.Background(), job.ID); err != nil {
			t.Fatalf("Process attempt %d: %v", i+1, err)
		}
	}
	if err := f.orchestrator.Process(context.Background(), job.ID); err == nil {
		t.Fatal("Process succeeded after retry exhaustion")
	}

	stored, _ := f.jobs.GetByID(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed despite completed languages", stored.Status)
	}
	if !stored.HasCompleted("en") {
		t.Fatalf("completed = %v, want en kept on record", stored.CompletedLanguages)
	}
	if _, ok := stored.FailedLanguages["es"]; !ok {
		t.Fatalf("failed = %v, want es recorded", stored.FailedLanguages)
	}
}

// languageFailingTranslationRepo fails persistence for one language only.
type languageFailingTranslationRepo struct {
	fakeTranslationRepo
	lang string
}

func (r *languageFailingTranslationRepo) SaveVersioned(ctx context.Context, t *domain.Translation) (*domain.Translation, error) {
	if t.Language == r.lang {
		return nil, fmt.Errorf("connection refused")
	}
	return r.fakeTranslationRepo.SaveVersioned(ctx, t)
}

type failingTranslationRepo struct{}

func (failingTranslationRepo) SaveVersioned(context.Context, *domain.Translation) (*domain.Translation, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingTranslationRepo) GetCurrent(context.Context, domain.ContentRef, string, string) (*domain.Translation, error) {
	return nil, domain.ErrNotFound
}

type translateFunc func(ctx context.Context, text, sourceLang, targetLang string) (*deepseek.Result, error)

func (f translateFunc) Translate(ctx context.Context, text, sourceLang, targetLang string) (*deepseek.Result, error) {
	return f(ctx, text, sourceLang, targetLang)
}
