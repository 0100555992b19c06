package domain

import "time"

// APILogEntry records one provider-call attempt for audit. Entries are
// append-only and never carry credentials or other secrets.
type APILogEntry struct {
	ID             string
	Endpoint       string
	SourceLanguage string
	TargetLanguage string
	CharacterCount int
	Success        bool
	ResponseTime   float64 // seconds
	StatusCode     *int
	ErrorMessage   string
	Cost           *float64
	CreatedAt      time.Time
}

// APILogSummary aggregates the audit log for monitoring endpoints.
type APILogSummary struct {
	TotalCalls      int64
	SuccessfulCalls int64
	FailedCalls     int64
	TotalCost       float64
	AvgResponseTime float64
}
