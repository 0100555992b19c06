package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"translator/internal/domain"
	"translator/internal/sqlinline"
)

// APILogRepositoryPG implements domain.APILogRepository as an append-only log.
type APILogRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAPILogRepository creates an audit log store backed by PostgreSQL.
func NewAPILogRepository(pool *pgxpool.Pool) *APILogRepositoryPG {
	return &APILogRepositoryPG{pool: pool}
}

// Insert appends one provider-call attempt.
func (r *APILogRepositoryPG) Insert(ctx context.Context, entry *domain.APILogEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, sqlinline.QInsertAPILog,
		id,
		entry.Endpoint,
		entry.SourceLanguage,
		entry.TargetLanguage,
		entry.CharacterCount,
		entry.Success,
		entry.ResponseTime,
		entry.StatusCode,
		entry.ErrorMessage,
		entry.Cost,
	)
	return err
}

// Summary aggregates the log for monitoring endpoints.
func (r *APILogRepositoryPG) Summary(ctx context.Context) (*domain.APILogSummary, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QAPILogSummary)
	var s domain.APILogSummary
	if err := row.Scan(&s.TotalCalls, &s.SuccessfulCalls, &s.FailedCalls, &s.TotalCost, &s.AvgResponseTime); err != nil {
		return nil, err
	}
	return &s, nil
}
