package domain

import "time"

// MemoryEntry is one record of the durable translation memory, keyed by the
// content hash of (source text, source language, target language). Entries
// are never deleted by the pipeline; reuse bumps UsageCount.
type MemoryEntry struct {
	ID             string
	SourceTextHash string
	SourceLanguage string
	TargetLanguage string
	TranslatedText string
	UsageCount     int
	Confidence     *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
