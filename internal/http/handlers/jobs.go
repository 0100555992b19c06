package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"translator/internal/domain"
)

type jobDTO struct {
	ID                 string            `json:"id"`
	ContentType        string            `json:"content_type"`
	ObjectID           string            `json:"object_id"`
	FieldName          string            `json:"field_name"`
	SourceLanguage     string            `json:"source_language"`
	Status             string            `json:"status"`
	TargetLanguages    []string          `json:"target_languages"`
	CompletedLanguages []string          `json:"completed_languages"`
	FailedLanguages    map[string]string `json:"failed_languages"`
	Progress           int               `json:"progress"`
	APICallCount       int               `json:"api_call_count"`
	RetryCount         int               `json:"retry_count"`
	ErrorMessage       string            `json:"error_message,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	ProcessingSeconds  *float64          `json:"processing_seconds,omitempty"`
}

func toJobDTO(job *domain.TranslationJob) jobDTO {
	return jobDTO{
		ID:                 job.ID,
		ContentType:        job.Content.ContentType,
		ObjectID:           job.Content.ObjectID,
		FieldName:          job.FieldName,
		SourceLanguage:     job.SourceLanguage,
		Status:             string(job.Status),
		TargetLanguages:    job.TargetLanguages,
		CompletedLanguages: job.CompletedLanguages,
		FailedLanguages:    job.FailedLanguages,
		Progress:           job.Progress(),
		APICallCount:       job.APICallCount,
		RetryCount:         job.RetryCount,
		ErrorMessage:       job.ErrorMessage,
		CreatedAt:          job.CreatedAt,
		CompletedAt:        job.CompletedAt,
		ProcessingSeconds:  job.ProcessingSeconds,
	}
}

func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("load job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, toJobDTO(job))
}
