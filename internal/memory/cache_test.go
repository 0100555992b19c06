package memory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"translator/internal/domain"
)

type fakeDurable struct {
	entries map[string]*domain.MemoryEntry
	getErr  error
	putErr  error
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{entries: make(map[string]*domain.MemoryEntry)}
}

func (f *fakeDurable) GetAndTouch(_ context.Context, hash, _, _ string) (*domain.MemoryEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry, ok := f.entries[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry.UsageCount++
	copied := *entry
	return &copied, nil
}

func (f *fakeDurable) Upsert(_ context.Context, entry *domain.MemoryEntry) error {
	if f.putErr != nil {
		return f.putErr
	}
	if existing, ok := f.entries[entry.SourceTextHash]; ok {
		existing.TranslatedText = entry.TranslatedText
		existing.Confidence = entry.Confidence
		return nil
	}
	copied := *entry
	copied.UsageCount = 1
	f.entries[entry.SourceTextHash] = &copied
	return nil
}

func newTestCache(durable domain.MemoryRepository) *Cache {
	return NewCache(Options{Durable: durable, Logger: zerolog.New(io.Discard)})
}

func TestLookupMiss(t *testing.T) {
	t.Parallel()
	cache := newTestCache(newFakeDurable())
	if _, ok := cache.Lookup(context.Background(), "Hello", "en", "fr"); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestStoreThenLookupIsIdempotent(t *testing.T) {
	t.Parallel()
	cache := newTestCache(newFakeDurable())
	ctx := context.Background()

	cache.Store(ctx, "Hello", "en", "fr", "Bonjour", 0.95)
	for i := 0; i < 5; i++ {
		res, ok := cache.Lookup(ctx, "Hello", "en", "fr")
		if !ok {
			t.Fatalf("lookup %d missed after store", i)
		}
		if res.TranslatedText != "Bonjour" || res.Confidence != 0.95 {
			t.Fatalf("lookup %d = %+v, want Bonjour/0.95", i, res)
		}
	}

	cache.Store(ctx, "Hello", "en", "fr", "Salut", 0.8)
	res, ok := cache.Lookup(ctx, "Hello", "en", "fr")
	if !ok || res.TranslatedText != "Salut" {
		t.Fatalf("lookup after overwrite = %+v, want Salut", res)
	}
}

func TestDurableHitBackfillsVolatileAndCountsUsage(t *testing.T) {
	t.Parallel()
	durable := newFakeDurable()
	cache := newTestCache(durable)
	ctx := context.Background()

	confidence := 0.85
	key := Key("Hello", "en", "de")
	durable.entries[key] = &domain.MemoryEntry{
		SourceTextHash: key,
		SourceLanguage: "en",
		TargetLanguage: "de",
		TranslatedText: "Hallo",
		Confidence:     &confidence,
	}

	res, ok := cache.Lookup(ctx, "Hello", "en", "de")
	if !ok || res.Tier != "durable" {
		t.Fatalf("first lookup = %+v ok=%v, want durable hit", res, ok)
	}
	if durable.entries[key].UsageCount != 1 {
		t.Fatalf("usage count = %d, want 1", durable.entries[key].UsageCount)
	}

	// Second lookup must come from the volatile tier without touching usage.
	res, ok = cache.Lookup(ctx, "Hello", "en", "de")
	if !ok || res.Tier != "volatile" {
		t.Fatalf("second lookup = %+v ok=%v, want volatile hit", res, ok)
	}
	if durable.entries[key].UsageCount != 1 {
		t.Fatalf("usage count after volatile hit = %d, want 1", durable.entries[key].UsageCount)
	}
}

func TestDurableHitWithoutConfidenceUsesDefault(t *testing.T) {
	t.Parallel()
	durable := newFakeDurable()
	cache := newTestCache(durable)

	key := Key("Hello", "en", "es")
	durable.entries[key] = &domain.MemoryEntry{SourceTextHash: key, TranslatedText: "Hola"}

	res, ok := cache.Lookup(context.Background(), "Hello", "en", "es")
	if !ok {
		t.Fatal("expected durable hit")
	}
	if res.Confidence != defaultDurableConfidence {
		t.Fatalf("confidence = %v, want %v", res.Confidence, defaultDurableConfidence)
	}
}

func TestVolatileEntryExpires(t *testing.T) {
	t.Parallel()
	cache := NewCache(Options{TTL: time.Hour, Logger: zerolog.New(io.Discard)})
	ctx := context.Background()

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Store(ctx, "Hello", "en", "it", "Ciao", 1)
	if _, ok := cache.Lookup(ctx, "Hello", "en", "it"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(time.Hour + time.Second)
	if _, ok := cache.Lookup(ctx, "Hello", "en", "it"); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestDurableErrorsFailOpen(t *testing.T) {
	t.Parallel()
	durable := newFakeDurable()
	durable.getErr = errors.New("connection refused")
	durable.putErr = errors.New("connection refused")
	cache := newTestCache(durable)
	ctx := context.Background()

	// Store must not propagate the durable failure, and the volatile tier
	// must still serve the value.
	cache.Store(ctx, "Hello", "en", "pt", "Olá", 0.9)
	res, ok := cache.Lookup(ctx, "Hello", "en", "pt")
	if !ok || res.TranslatedText != "Olá" {
		t.Fatalf("lookup = %+v ok=%v, want volatile Olá", res, ok)
	}

	// A cold key with a failing durable tier is just a miss.
	if _, ok := cache.Lookup(ctx, "Goodbye", "en", "pt"); ok {
		t.Fatal("expected miss when durable tier errors")
	}
}

func TestKeyDistinguishesLanguagePairs(t *testing.T) {
	t.Parallel()
	if Key("Hello", "en", "fr") == Key("Hello", "en", "de") {
		t.Fatal("keys for different target languages collide")
	}
	if Key("Hello", "en", "fr") != Key("Hello", "en", "fr") {
		t.Fatal("key is not deterministic")
	}
}
