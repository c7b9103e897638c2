package facts

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/storage"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	return NewBook(storage.NewMemoryBackend(), slog.Default())
}

func fact(key, value string, importance float64) models.ExtractedFact {
	return models.ExtractedFact{
		Key:        key,
		Value:      value,
		Importance: importance,
		Source:     models.SourceConversation,
		Timestamp:  time.Now().UTC(),
	}
}

func TestBook_StoreGet(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)

	require.NoError(t, b.Store(ctx, fact("name", "Alex", 0.9)))

	got, ok := b.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alex", got.Value)

	_, ok = b.Get("age")
	assert.False(t, ok)
}

// Re-stating a fact updates value and timestamp and never duplicates the key.
func TestBook_IdempotentKey(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)

	first := fact("name", "Alex", 0.9)
	first.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.Store(ctx, first))

	second := fact("name", "Alexander", 0.7)
	second.Timestamp = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.Store(ctx, second))

	assert.Equal(t, 1, b.Len())
	got, ok := b.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alexander", got.Value)
	assert.Equal(t, second.Timestamp, got.Timestamp)
	// Importance keeps the historical maximum.
	assert.InDelta(t, 0.9, got.Importance, 1e-9)
}

func TestBook_StoreAllAndList(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)

	require.NoError(t, b.StoreAll(ctx, []models.ExtractedFact{
		fact("location", "Berlin", 0.8),
		fact("name", "Alex", 0.9),
		fact("age", "30", 0.7),
	}))

	listed := b.List()
	require.Len(t, listed, 3)
	assert.Equal(t, "age", listed[0].Key)
	assert.Equal(t, "location", listed[1].Key)
	assert.Equal(t, "name", listed[2].Key)
}

func TestBook_ForgetFuzzyMatch(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)

	require.NoError(t, b.StoreAll(ctx, []models.ExtractedFact{
		fact("pet_name_1", "Rex", 0.7),
		fact("pet_name_2", "Bella", 0.7),
		fact("name", "Alex", 0.9),
		fact("location", "Berlin", 0.8),
	}))

	// Matches keys and values, case-insensitively.
	removed, err := b.Forget(ctx, "PET")
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, "pet_name_1", removed[0].Key)
	assert.Equal(t, "pet_name_2", removed[1].Key)
	assert.Equal(t, 2, b.Len())

	// Value match.
	removed, err = b.Forget(ctx, "berlin")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "location", removed[0].Key)

	// No match removes nothing.
	removed, err = b.Forget(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, b.Len())

	// Blank query is a no-op, not a wipe.
	removed, err = b.Forget(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, b.Len())
}

func TestBook_LoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()

	b1 := NewBook(backend, slog.Default())
	require.NoError(t, b1.Store(ctx, fact("name", "Alex", 0.9)))

	b2 := NewBook(backend, slog.Default())
	require.NoError(t, b2.Load(ctx))
	got, ok := b2.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alex", got.Value)
}

func TestBook_LoadSkipsCorruptFacts(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, storage.NamespaceFacts, "bad", []byte("not json")))

	b := NewBook(backend, slog.Default())
	require.NoError(t, b.Load(ctx))
	assert.Zero(t, b.Len())
}

func TestBook_Clear(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	b := NewBook(backend, slog.Default())

	require.NoError(t, b.Store(ctx, fact("name", "Alex", 0.9)))
	require.NoError(t, b.Clear(ctx))
	assert.Zero(t, b.Len())

	entries, err := backend.ListNamespace(ctx, storage.NamespaceFacts)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
