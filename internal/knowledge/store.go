// Package knowledge holds the in-process knowledge store and its
// relevance-ranked search. Precision is secondary to recall here: the store
// is small and local, so token matching is symmetric-containment rather than
// exact.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/storage"
	"github.com/mkovacs-dev/cogno/pkg/textutil"
)

// DefaultMaxEntries caps the store before size-based eviction kicks in.
const DefaultMaxEntries = 500

// Store is the relevance-searchable knowledge base. Single writer, safe for
// concurrent readers.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*models.KnowledgeEntry
	maxEntries int
	backend    storage.Backend
	logger     *slog.Logger
}

// NewStore creates an empty store writing through to backend. maxEntries <= 0
// selects DefaultMaxEntries.
func NewStore(backend storage.Backend, maxEntries int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]*models.KnowledgeEntry),
		maxEntries: maxEntries,
		backend:    backend,
		logger:     logger,
	}
}

// Load restores persisted entries from the backend. Entries that fail to
// parse are skipped with a warning; corrupt persistence degrades to an empty
// store, never an error.
func (s *Store) Load(ctx context.Context) error {
	persisted, err := s.backend.ListNamespace(ctx, storage.NamespaceKnowledge)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pe := range persisted {
		var entry models.KnowledgeEntry
		if err := json.Unmarshal(pe.Value, &entry); err != nil {
			s.logger.Warn("skipping corrupt knowledge entry", "key", pe.Key, "error", err)
			continue
		}
		s.entries[normalizeTerm(entry.Term)] = &entry
	}
	s.logger.Debug("knowledge store loaded", "entries", len(s.entries))
	return nil
}

// Put inserts or replaces an entry, evicting the least valuable learned
// entries when the store is over capacity. Seed entries are never evicted.
func (s *Store) Put(ctx context.Context, entry models.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeTerm(entry.Term)
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(ctx)
	}
	s.entries[key] = &entry
	return s.persistLocked(ctx, &entry)
}

// Get returns the entry for term, bumping its access metadata, or nil when
// the term is unknown.
func (s *Store) Get(ctx context.Context, term string) *models.KnowledgeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[normalizeTerm(term)]
	if !ok {
		return nil
	}
	entry.AccessCount++
	entry.LastAccessed = time.Now().UTC()
	if err := s.persistLocked(ctx, entry); err != nil {
		s.logger.Warn("persisting access metadata", "term", entry.Term, "error", err)
	}
	out := *entry
	return &out
}

// Search returns entries ranked by descending relevance to query. The score
// is the fraction of query tokens that symmetric-contain-match any token of
// the entry's term or payload. No match yields an empty slice, not an error.
func (s *Store) Search(query string) []models.ScoredEntry {
	queryTokens := textutil.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.ScoredEntry
	for _, entry := range s.entries {
		score := Relevance(queryTokens, textutil.Tokenize(entry.Term+" "+entry.Payload))
		if score <= 0 {
			continue
		}
		results = append(results, models.ScoredEntry{Entry: *entry, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Entry.Confidence != results[j].Entry.Confidence {
			return results[i].Entry.Confidence > results[j].Entry.Confidence
		}
		return results[i].Entry.LearnedAt.After(results[j].Entry.LearnedAt)
	})
	return results
}

// Relevance scores candidate tokens against query tokens: the count of query
// tokens with at least one symmetric containment match, divided by the query
// token count. Monotonically non-decreasing in matched tokens for a fixed
// query.
func Relevance(queryTokens, candidateTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	matched := 0
	for _, qt := range queryTokens {
		for _, ct := range candidateTokens {
			if textutil.ContainsEither(qt, ct) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every entry, including seeds, and wipes the persisted
// namespace. Entries are only ever bulk-cleared, never silently deleted.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*models.KnowledgeEntry)
	return s.backend.ClearNamespace(ctx, storage.NamespaceKnowledge)
}

// evictLocked removes the learned entries with the lowest
// confidence × 1/accessCount value until the store is under capacity.
// Callers must hold the write lock.
func (s *Store) evictLocked(ctx context.Context) {
	type candidate struct {
		key   string
		value float64
	}
	var candidates []candidate
	for key, entry := range s.entries {
		if entry.Seed {
			continue
		}
		access := entry.AccessCount
		if access < 1 {
			access = 1
		}
		candidates = append(candidates, candidate{key: key, value: entry.Confidence / float64(access)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].value < candidates[j].value })

	for _, c := range candidates {
		if len(s.entries) < s.maxEntries {
			break
		}
		term := s.entries[c.key].Term
		delete(s.entries, c.key)
		if err := s.backend.Delete(ctx, storage.NamespaceKnowledge, c.key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("deleting evicted knowledge entry", "term", term, "error", err)
		}
		s.logger.Debug("evicted knowledge entry", "term", term)
	}
}

// persistLocked writes one entry through to the backend.
func (s *Store) persistLocked(ctx context.Context, entry *models.KnowledgeEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, storage.NamespaceKnowledge, normalizeTerm(entry.Term), raw)
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
