package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"translator/internal/domain"
	"translator/internal/sqlinline"
)

// TranslationRepositoryPG implements domain.TranslationRepository.
type TranslationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTranslationRepository creates a versioned translation store backed by PostgreSQL.
func NewTranslationRepository(pool *pgxpool.Pool) *TranslationRepositoryPG {
	return &TranslationRepositoryPG{pool: pool}
}

// SaveVersioned stores a translation result for (content, field, language).
// The first write for a key becomes version 1. A write carrying the same text
// as the current version only refreshes confidence and the owning job. A new
// text demotes the current row and appends the next version, all inside one
// transaction so exactly one row per key stays current.
func (r *TranslationRepositoryPG) SaveVersioned(ctx context.Context, t *domain.Translation) (*domain.Translation, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	key := []any{t.Content.ContentType, t.Content.ObjectID, t.FieldName, t.Language}

	var (
		current     versionedRow
		haveCurrent = true
	)
	row := tx.QueryRow(ctx, sqlinline.QLockCurrentTranslation, key...)
	switch err := row.Scan(&current.id, &current.text, &current.version); {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		haveCurrent = false
	default:
		return nil, err
	}

	plan := planVersion(current, haveCurrent, t.TranslatedText)
	if plan.refresh {
		if _, err := tx.Exec(ctx, sqlinline.QRefreshTranslation, current.id, t.Confidence, t.JobID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return r.getCurrent(ctx, r.pool, t.Content, t.FieldName, t.Language)
	}
	if plan.demote {
		if _, err := tx.Exec(ctx, sqlinline.QDemoteCurrentTranslation, key...); err != nil {
			return nil, err
		}
	}

	saved := *t
	saved.ID = uuid.NewString()
	saved.Version = plan.version
	saved.IsCurrent = true
	if saved.Quality == "" {
		saved.Quality = domain.QualityAuto
	}
	row = tx.QueryRow(ctx, sqlinline.QInsertTranslation,
		saved.ID,
		saved.Content.ContentType,
		saved.Content.ObjectID,
		saved.FieldName,
		saved.Language,
		saved.TranslatedText,
		saved.SourceText,
		saved.SourceLanguage,
		saved.Quality,
		saved.Confidence,
		saved.JobID,
		saved.Version,
	)
	if err := row.Scan(&saved.CreatedAt, &saved.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

// versionedRow is the locked current row for a translation key.
type versionedRow struct {
	id      string
	text    string
	version int
}

// versionPlan says how a write lands against the current row: refresh the
// current row in place, or insert a new version (demoting the current row
// first when one exists).
type versionPlan struct {
	refresh bool
	demote  bool
	version int
}

// planVersion keeps exactly one current row per key: the first write for a
// key becomes version 1, an unchanged text refreshes the current row and a
// changed text appends version current+1.
func planVersion(current versionedRow, haveCurrent bool, newText string) versionPlan {
	if !haveCurrent {
		return versionPlan{version: 1}
	}
	if current.text == newText {
		return versionPlan{refresh: true}
	}
	return versionPlan{demote: true, version: current.version + 1}
}

// GetCurrent returns the current translation for the key or domain.ErrNotFound.
func (r *TranslationRepositoryPG) GetCurrent(ctx context.Context, content domain.ContentRef, fieldName, language string) (*domain.Translation, error) {
	return r.getCurrent(ctx, r.pool, content, fieldName, language)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TranslationRepositoryPG) getCurrent(ctx context.Context, q rowQuerier, content domain.ContentRef, fieldName, language string) (*domain.Translation, error) {
	row := q.QueryRow(ctx, sqlinline.QGetCurrentTranslation, content.ContentType, content.ObjectID, fieldName, language)
	var t domain.Translation
	err := row.Scan(
		&t.ID,
		&t.Content.ContentType,
		&t.Content.ObjectID,
		&t.FieldName,
		&t.Language,
		&t.TranslatedText,
		&t.SourceText,
		&t.SourceLanguage,
		&t.Quality,
		&t.Confidence,
		&t.JobID,
		&t.Version,
		&t.IsCurrent,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
