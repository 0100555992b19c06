package handlers

import (
	"net/http"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Logs.Summary(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	byStatus, err := a.Jobs.CountByStatus(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job counts")
		return
	}
	jobCounts := make(map[string]int64, len(byStatus))
	for status, n := range byStatus {
		jobCounts[string(status)] = n
	}

	a.json(w, http.StatusOK, map[string]any{
		"api_calls_total":   summary.TotalCalls,
		"api_calls_success": summary.SuccessfulCalls,
		"api_calls_failed":  summary.FailedCalls,
		"total_cost":        summary.TotalCost,
		"avg_response_time": summary.AvgResponseTime,
		"jobs_by_status":    jobCounts,
		"quality_threshold": a.Config.QualityThreshold,
	})
}
