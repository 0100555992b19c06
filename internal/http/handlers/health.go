package handlers

import (
	"net/http"

	"translator/internal/sqlinline"
)

// Health reports liveness and verifies the database connection.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QPing).Scan(&one); err != nil {
		a.Logger.Error().Err(err).Msg("health check: database unreachable")
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
