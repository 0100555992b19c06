package domain

import (
	"time"
)

// JobStatus enumerates translation job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusPartial    JobStatus = "partial"
)

// DefaultMaxRetries bounds job-level retry scheduling.
const DefaultMaxRetries = 3

// TranslationJob tracks one translation request covering one or more target
// languages for a single (content, field) pair. The original text is a
// snapshot taken at trigger time; the owning entity is never dereferenced.
type TranslationJob struct {
	ID             string
	Content        ContentRef
	FieldName      string
	SourceLanguage string
	OriginalText   string

	Status             JobStatus
	TargetLanguages    []string
	CompletedLanguages []string
	// FailedLanguages maps a target language to the last error seen for it.
	FailedLanguages map[string]string

	TotalCharacters int
	APICallCount    int

	RetryCount   int
	MaxRetries   int
	ErrorMessage string

	CreatedAt         time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	ProcessingSeconds *float64
}

// IsTerminal reports whether the status admits no further transitions short
// of a retry reset.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusPartial
}

// HasCompleted reports whether lang already succeeded in a previous attempt.
func (j *TranslationJob) HasCompleted(lang string) bool {
	for _, l := range j.CompletedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// AddCompleted records a successful language, keeping the completed and
// failed sets disjoint.
func (j *TranslationJob) AddCompleted(lang string) {
	if j.HasCompleted(lang) {
		return
	}
	j.CompletedLanguages = append(j.CompletedLanguages, lang)
	delete(j.FailedLanguages, lang)
}

// AddFailed records the last error for a target language.
func (j *TranslationJob) AddFailed(lang, errMsg string) {
	if j.HasCompleted(lang) {
		return
	}
	if j.FailedLanguages == nil {
		j.FailedLanguages = make(map[string]string)
	}
	j.FailedLanguages[lang] = errMsg
}

// TerminalStatus derives the final status once every target language has
// been attempted: no failures means completed, a mix means partial and no
// successes at all means failed.
func (j *TranslationJob) TerminalStatus() JobStatus {
	switch {
	case len(j.FailedLanguages) == 0:
		return JobStatusCompleted
	case len(j.CompletedLanguages) > 0:
		return JobStatusPartial
	default:
		return JobStatusFailed
	}
}

// CanRetry reports whether a job-level failure may still be rescheduled.
func (j *TranslationJob) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// RetryDelay returns the re-enqueue backoff for the current retry count.
func (j *TranslationJob) RetryDelay() time.Duration {
	return time.Duration(60*(1<<j.RetryCount)) * time.Second
}

// Progress returns completion as a percentage of target languages.
func (j *TranslationJob) Progress() int {
	if len(j.TargetLanguages) == 0 {
		return 0
	}
	return len(j.CompletedLanguages) * 100 / len(j.TargetLanguages)
}
