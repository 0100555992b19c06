package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"translator/internal/domain"
	"translator/internal/infra"
	"translator/internal/pipeline"
)

// App holds the dependencies shared by every handler.
type App struct {
	Config       *infra.Config
	Logger       zerolog.Logger
	SQL          infra.SQLExecutor
	Trigger      *pipeline.Trigger
	Jobs         domain.JobRepository
	Translations domain.TranslationRepository
	Logs         domain.APILogRepository
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
