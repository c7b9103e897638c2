// Package facts maintains the live set of structured personal facts for a
// session: at most one fact per key, merged under the max-importance
// conflict policy, written through to the persistence port.
package facts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/storage"
)

// Book holds the accumulated facts. Single writer, concurrent readers.
type Book struct {
	mu      sync.RWMutex
	facts   map[string]models.ExtractedFact
	backend storage.Backend
	logger  *slog.Logger
}

// NewBook creates an empty fact book writing through to backend.
func NewBook(backend storage.Backend, logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &Book{
		facts:   make(map[string]models.ExtractedFact),
		backend: backend,
		logger:  logger,
	}
}

// Load restores persisted facts. Corrupt values are skipped with a warning;
// corrupt persistence degrades to an empty book.
func (b *Book) Load(ctx context.Context) error {
	entries, err := b.backend.ListNamespace(ctx, storage.NamespaceFacts)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range entries {
		var fact models.ExtractedFact
		if err := json.Unmarshal(e.Value, &fact); err != nil {
			b.logger.Warn("skipping corrupt fact", "key", e.Key, "error", err)
			continue
		}
		b.facts[fact.Key] = fact
	}
	b.logger.Debug("fact book loaded", "facts", len(b.facts))
	return nil
}

// Store upserts a fact. Re-extraction of an existing key overwrites value
// and timestamp; importance never decreases.
func (b *Book) Store(ctx context.Context, fact models.ExtractedFact) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.facts[fact.Key]; ok {
		fact = existing.Merge(fact)
	}
	b.facts[fact.Key] = fact

	raw, err := json.Marshal(fact)
	if err != nil {
		return err
	}
	return b.backend.Set(ctx, storage.NamespaceFacts, fact.Key, raw)
}

// StoreAll upserts every fact and returns the first persistence error.
func (b *Book) StoreAll(ctx context.Context, facts []models.ExtractedFact) error {
	for _, f := range facts {
		if err := b.Store(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the fact for key, if present.
func (b *Book) Get(key string) (models.ExtractedFact, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fact, ok := b.facts[key]
	return fact, ok
}

// List returns all facts ordered by key.
func (b *Book) List() []models.ExtractedFact {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.ExtractedFact, 0, len(b.facts))
	for _, f := range b.facts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Forget removes every fact whose key or value contains query
// (case-insensitive) and returns the removed facts. Facts are only ever
// removed through this explicit action or Clear.
func (b *Book) Forget(ctx context.Context, query string) ([]models.ExtractedFact, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var removed []models.ExtractedFact
	for key, fact := range b.facts {
		if !strings.Contains(strings.ToLower(key), needle) &&
			!strings.Contains(strings.ToLower(fact.Value), needle) {
			continue
		}
		delete(b.facts, key)
		removed = append(removed, fact)
		if err := b.backend.Delete(ctx, storage.NamespaceFacts, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, err
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Key < removed[j].Key })
	if len(removed) > 0 {
		b.logger.Info("forgot facts", "query", query, "count", len(removed))
	}
	return removed, nil
}

// Clear drops every fact.
func (b *Book) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.facts = make(map[string]models.ExtractedFact)
	return b.backend.ClearNamespace(ctx, storage.NamespaceFacts)
}

// Len returns the number of live facts.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.facts)
}
