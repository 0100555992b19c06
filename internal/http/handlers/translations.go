package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"translator/internal/domain"
)

type translationDTO struct {
	ID             string   `json:"id"`
	ContentType    string   `json:"content_type"`
	ObjectID       string   `json:"object_id"`
	FieldName      string   `json:"field_name"`
	Language       string   `json:"language"`
	TranslatedText string   `json:"translated_text"`
	SourceLanguage string   `json:"source_language"`
	Quality        string   `json:"quality"`
	Confidence     *float64 `json:"confidence"`
	Version        int      `json:"version"`
}

func toTranslationDTO(t *domain.Translation) translationDTO {
	return translationDTO{
		ID:             t.ID,
		ContentType:    t.Content.ContentType,
		ObjectID:       t.Content.ObjectID,
		FieldName:      t.FieldName,
		Language:       t.Language,
		TranslatedText: t.TranslatedText,
		SourceLanguage: t.SourceLanguage,
		Quality:        string(t.Quality),
		Confidence:     t.Confidence,
		Version:        t.Version,
	}
}

// TranslationCurrent returns the current translation for one
// (content, field, language) key.
func (a *App) TranslationCurrent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	content := domain.ContentRef{
		ContentType: q.Get("content_type"),
		ObjectID:    q.Get("object_id"),
	}
	fieldName := q.Get("field")
	language := q.Get("language")
	if content.IsZero() || fieldName == "" || language == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "content_type, object_id, field and language are required")
		return
	}

	t, err := a.Translations.GetCurrent(r.Context(), content, fieldName, language)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no translation for this key")
			return
		}
		a.Logger.Error().Err(err).Msg("load translation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load translation")
		return
	}
	a.json(w, http.StatusOK, toTranslationDTO(t))
}

type triggerRequest struct {
	ContentType string `json:"content_type"`
	ObjectID    string `json:"object_id"`
	FieldName   string `json:"field_name"`
	Text        string `json:"text"`
}

// TranslationsTrigger creates a translation job for one explicit field.
func (a *App) TranslationsTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	content := domain.ContentRef{ContentType: req.ContentType, ObjectID: req.ObjectID}
	if content.IsZero() || req.FieldName == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "content_type, object_id and field_name are required")
		return
	}

	job, err := a.Trigger.TriggerManual(r.Context(), content, req.FieldName, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotTranslatable):
			a.error(w, http.StatusUnprocessableEntity, "not_translatable", "field content is not eligible for translation")
		case errors.Is(err, domain.ErrDuplicateJob):
			a.error(w, http.StatusConflict, "duplicate_job", "an identical job is already queued")
		case errors.Is(err, domain.ErrNoTargetLanguages):
			a.error(w, http.StatusUnprocessableEntity, "no_target_languages", "no target language left after removing the source")
		default:
			a.Logger.Error().Err(err).Msg("manual trigger failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to create translation job")
		}
		return
	}
	a.json(w, http.StatusAccepted, toJobDTO(job))
}

type contentSavedRequest struct {
	ContentType string            `json:"content_type"`
	ObjectID    string            `json:"object_id"`
	Fields      map[string]string `json:"fields"`
}

// ContentSaved is the webhook the owning services call after persisting an
// entity. Ineligible fields are skipped, never rejected.
func (a *App) ContentSaved(w http.ResponseWriter, r *http.Request) {
	var req contentSavedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	content := domain.ContentRef{ContentType: req.ContentType, ObjectID: req.ObjectID}
	if content.IsZero() || len(req.Fields) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "content_type, object_id and fields are required")
		return
	}

	jobs, err := a.Trigger.OnContentSaved(r.Context(), content, req.Fields)
	if err != nil {
		a.Logger.Error().Err(err).Msg("content-saved trigger failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process content change")
		return
	}
	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobDTO(job))
	}
	a.json(w, http.StatusAccepted, map[string]any{"jobs": out})
}
