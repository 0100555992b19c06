// Package memory implements the two-tier translation memory: a volatile
// in-process tier with a short TTL in front of the durable store. Reads are
// idempotent; the durable tier fails open so a storage problem never blocks
// a translation.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"translator/internal/domain"
)

// DefaultTTL is the volatile-tier expiry.
const DefaultTTL = time.Hour

// defaultDurableConfidence is assumed for durable entries stored without a
// confidence score.
const defaultDurableConfidence = 0.9

// CachedResult is a translation served from the memory.
type CachedResult struct {
	TranslatedText string
	Confidence     float64
	// Tier identifies which tier answered: "volatile" or "durable".
	Tier string
}

type volatileEntry struct {
	text       string
	confidence float64
	expiresAt  time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	tier1   map[string]volatileEntry
	durable domain.MemoryRepository
	ttl     time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// Options configures a Cache.
type Options struct {
	Durable domain.MemoryRepository
	TTL     time.Duration
	Logger  zerolog.Logger
}

// NewCache builds a Cache. A nil durable repository leaves only the volatile
// tier active.
func NewCache(opts Options) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		tier1:   make(map[string]volatileEntry),
		durable: opts.Durable,
		ttl:     ttl,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

// Key derives the content-addressed cache key for a translation request.
func Key(text, sourceLang, targetLang string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", text, sourceLang, targetLang)))
	return hex.EncodeToString(sum[:])
}

// Lookup checks the volatile tier first, then the durable one. A durable hit
// bumps the entry's usage count and backfills the volatile tier. Durable
// errors are logged and treated as a miss.
func (c *Cache) Lookup(ctx context.Context, text, sourceLang, targetLang string) (*CachedResult, bool) {
	key := Key(text, sourceLang, targetLang)

	c.mu.Lock()
	if entry, ok := c.tier1[key]; ok {
		if c.now().Before(entry.expiresAt) {
			c.mu.Unlock()
			return &CachedResult{TranslatedText: entry.text, Confidence: entry.confidence, Tier: "volatile"}, true
		}
		delete(c.tier1, key)
	}
	c.mu.Unlock()

	if c.durable == nil {
		return nil, false
	}
	stored, err := c.durable.GetAndTouch(ctx, key, sourceLang, targetLang)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn().Err(err).Msg("memory: durable lookup failed, treating as miss")
		}
		return nil, false
	}

	confidence := defaultDurableConfidence
	if stored.Confidence != nil {
		confidence = *stored.Confidence
	}
	c.setVolatile(key, stored.TranslatedText, confidence)
	return &CachedResult{TranslatedText: stored.TranslatedText, Confidence: confidence, Tier: "durable"}, true
}

// Store writes both tiers. The durable upsert keeps the usage count on
// overwrite; a durable failure is logged and does not propagate.
func (c *Cache) Store(ctx context.Context, text, sourceLang, targetLang, translatedText string, confidence float64) {
	key := Key(text, sourceLang, targetLang)
	c.setVolatile(key, translatedText, confidence)

	if c.durable == nil {
		return
	}
	entry := &domain.MemoryEntry{
		SourceTextHash: key,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		TranslatedText: translatedText,
		Confidence:     &confidence,
	}
	if err := c.durable.Upsert(ctx, entry); err != nil {
		c.logger.Warn().Err(err).Msg("memory: durable store failed")
	}
}

func (c *Cache) setVolatile(key, text string, confidence float64) {
	c.mu.Lock()
	c.tier1[key] = volatileEntry{text: text, confidence: confidence, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
