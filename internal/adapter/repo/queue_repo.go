package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"translator/internal/domain"
	"translator/internal/sqlinline"
)

// ErrQueueEmpty signals that no queue entry is due.
var ErrQueueEmpty = errors.New("translation queue empty")

// QueueRepositoryPG is a Postgres-backed work queue implementing
// domain.Scheduler. Claiming uses FOR UPDATE SKIP LOCKED so concurrent
// workers never hand out the same entry twice.
type QueueRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQueueRepository creates the queue store.
func NewQueueRepository(pool *pgxpool.Pool) *QueueRepositoryPG {
	return &QueueRepositoryPG{pool: pool}
}

// Enqueue schedules a job id to become due after delay.
func (r *QueueRepositoryPG) Enqueue(ctx context.Context, jobID string, delay time.Duration) error {
	_, err := r.pool.Exec(ctx, sqlinline.QEnqueueJob, jobID, int64(delay/time.Second))
	return err
}

// ClaimDue removes and returns the next due job id, or ErrQueueEmpty.
func (r *QueueRepositoryPG) ClaimDue(ctx context.Context) (string, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QClaimDueJob)
	var jobID string
	if err := row.Scan(&jobID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrQueueEmpty
		}
		return "", err
	}
	return jobID, nil
}

// RequeueRetryableFailed moves failed jobs with retries left back to pending
// and enqueues them. Jobs that already exhausted their retries stay failed.
func (r *QueueRepositoryPG) RequeueRetryableFailed(ctx context.Context) (int, error) {
	rows, err := r.pool.Query(ctx, sqlinline.QRequeueRetryableFailed)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := r.Enqueue(ctx, id, 0); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

var _ domain.Scheduler = (*QueueRepositoryPG)(nil)
