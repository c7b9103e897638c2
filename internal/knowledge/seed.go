package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkovacs-dev/cogno/internal/models"
)

// SeedConfidence is assigned to every bundled seed entry.
const SeedConfidence = 0.9

//go:embed seeds.yaml
var seedsYAML []byte

// seedFile groups seed entries by category section.
type seedFile struct {
	Vocabulary  []seedEntry `yaml:"vocabulary"`
	Mathematics []seedEntry `yaml:"mathematics"`
	Facts       []seedEntry `yaml:"facts"`
}

type seedEntry struct {
	Term    string `yaml:"term"`
	Payload string `yaml:"payload"`
}

// LoadSeeds parses the bundled seed pack and inserts any entries not already
// present, so learned access metadata survives restarts. Returns the number
// of entries added.
func (s *Store) LoadSeeds(ctx context.Context) (int, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedsYAML, &file); err != nil {
		return 0, fmt.Errorf("parsing seed pack: %w", err)
	}

	now := time.Now().UTC()
	added := 0
	insert := func(entries []seedEntry, category models.KnowledgeCategory) error {
		for _, se := range entries {
			s.mu.RLock()
			_, exists := s.entries[normalizeTerm(se.Term)]
			s.mu.RUnlock()
			if exists {
				continue
			}
			entry := models.KnowledgeEntry{
				Term:       se.Term,
				Category:   category,
				Payload:    se.Payload,
				Confidence: SeedConfidence,
				Seed:       true,
				LearnedAt:  now,
			}
			if err := s.Put(ctx, entry); err != nil {
				return fmt.Errorf("seeding %q: %w", se.Term, err)
			}
			added++
		}
		return nil
	}

	if err := insert(file.Vocabulary, models.CategoryVocabulary); err != nil {
		return added, err
	}
	if err := insert(file.Mathematics, models.CategoryMathematics); err != nil {
		return added, err
	}
	if err := insert(file.Facts, models.CategoryFact); err != nil {
		return added, err
	}

	s.logger.Info("seed knowledge loaded", "added", added)
	return added, nil
}

// Learn records a successful external lookup as a knowledge entry with
// learned confidence 0.8. Failed lookups must not reach this method.
func (s *Store) Learn(ctx context.Context, term, payload string, category models.KnowledgeCategory) (models.KnowledgeEntry, error) {
	entry := models.KnowledgeEntry{
		Term:       term,
		Category:   category,
		Payload:    payload,
		Confidence: 0.8,
		LearnedAt:  time.Now().UTC(),
	}
	if err := s.Put(ctx, entry); err != nil {
		return models.KnowledgeEntry{}, err
	}
	return entry, nil
}
