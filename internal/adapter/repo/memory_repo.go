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

// MemoryRepositoryPG implements domain.MemoryRepository, the durable tier of
// the translation memory. Concurrent writes for the same key resolve
// last-write-wins; the usage count survives overwrites.
type MemoryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMemoryRepository creates a translation memory store backed by PostgreSQL.
func NewMemoryRepository(pool *pgxpool.Pool) *MemoryRepositoryPG {
	return &MemoryRepositoryPG{pool: pool}
}

// GetAndTouch returns the entry for the hash and language pair, bumping its
// usage count in the same statement.
func (r *MemoryRepositoryPG) GetAndTouch(ctx context.Context, hash, sourceLang, targetLang string) (*domain.MemoryEntry, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QMemoryGetAndTouch, hash, sourceLang, targetLang)
	var entry domain.MemoryEntry
	err := row.Scan(
		&entry.ID,
		&entry.SourceTextHash,
		&entry.SourceLanguage,
		&entry.TargetLanguage,
		&entry.TranslatedText,
		&entry.UsageCount,
		&entry.Confidence,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert writes the entry, updating text and confidence in place on key
// conflict without resetting the usage count.
func (r *MemoryRepositoryPG) Upsert(ctx context.Context, entry *domain.MemoryEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, sqlinline.QMemoryUpsert,
		id,
		entry.SourceTextHash,
		entry.SourceLanguage,
		entry.TargetLanguage,
		entry.TranslatedText,
		entry.Confidence,
	)
	return err
}
