// Package extract turns free-text utterances into structured personal facts.
// A single canonical rule table is the source of truth for extraction; every
// rule is evaluated independently because one utterance may carry several
// facts at once.
package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mkovacs-dev/cogno/internal/models"
)

// Extractor scans utterances for structured personal facts.
type Extractor interface {
	Extract(utterance string) []models.ExtractedFact
}

// factRule is one row of the extraction table. keys maps capture groups to
// fact keys: a rule with one key emits the first non-empty capture group as
// its value; a rule with n keys emits one fact per capture group.
type factRule struct {
	keys       []string
	importance float64
	pattern    *regexp.Regexp
}

// rules is the canonical extraction table. Later rows win value conflicts
// for the same key within one utterance (importance is still the max).
var rules = []factRule{
	{keys: []string{"name"}, importance: 0.9, pattern: regexp.MustCompile(`(?i)\bmy name is (\w+)`)},
	{keys: []string{"name"}, importance: 0.9, pattern: regexp.MustCompile(`(?i)\b(?:call me|i'?m called) (\w+)`)},
	{keys: []string{"age"}, importance: 0.7, pattern: regexp.MustCompile(`(?i)\bi(?:'?m| am) (\d+)(?: years old)?\b`)},
	{keys: []string{"job"}, importance: 0.8, pattern: regexp.MustCompile(`(?i)\bi work as (?:an? )?([\w ]+?)(?:[.,!?]|$| and\b)`)},
	{keys: []string{"job"}, importance: 0.8, pattern: regexp.MustCompile(`(?i)\bmy job is ([\w ]+?)(?:[.,!?]|$| and\b)`)},
	{keys: []string{"location"}, importance: 0.8, pattern: regexp.MustCompile(`(?i)\bi live in ([\w ]+?)(?:[.,!?]|$| and\b)`)},
	{keys: []string{"location"}, importance: 0.8, pattern: regexp.MustCompile(`(?i)\bi'?m from ([\w ]+?)(?:[.,!?]|$| and\b)`)},
	{keys: []string{"pet_name_1", "pet_name_2"}, importance: 0.7, pattern: regexp.MustCompile(`(?i)\b(?:dogs|cats|pets)(?: are)? (?:named|called) (\w+) and (\w+)`)},
	{keys: []string{"pet_name"}, importance: 0.7, pattern: regexp.MustCompile(`(?i)\bmy (?:dog|cat|pet) is (?:named|called) (\w+)`)},
	{keys: []string{"pet_name"}, importance: 0.7, pattern: regexp.MustCompile(`(?i)\bi have a (?:dog|cat|pet) (?:named|called) (\w+)`)},
	{keys: []string{"favorite"}, importance: 0.6, pattern: regexp.MustCompile(`(?i)\bmy favou?rite [\w ]+? is ([\w ]+?)(?:[.,!?]|$| and\b)`)},
	{keys: []string{"likes"}, importance: 0.5, pattern: regexp.MustCompile(`(?i)\bi (?:really )?(?:love|like|enjoy) ([\w ]+?)(?:[.,!?]|$| and\b)`)},
}

// RuleExtractor applies the extraction table to utterances.
type RuleExtractor struct {
	logger *slog.Logger
}

// NewExtractor creates a new rule-table fact extractor.
func NewExtractor(logger *slog.Logger) *RuleExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleExtractor{logger: logger}
}

// Extract returns all facts found in the utterance, already resolved per
// key: when two rules produce the same key, the later rule's value wins and
// importance is the max of the two. Pure; persistence is the caller's job.
func (e *RuleExtractor) Extract(utterance string) []models.ExtractedFact {
	now := time.Now().UTC()

	var raw []models.ExtractedFact
	for i := range rules {
		r := &rules[i]
		m := r.pattern.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		if len(r.keys) == 1 {
			value := firstNonEmpty(m[1:])
			if value == "" {
				continue
			}
			raw = append(raw, models.ExtractedFact{
				Key:        r.keys[0],
				Value:      strings.TrimSpace(value),
				Importance: r.importance,
				Source:     models.SourceConversation,
				Timestamp:  now,
			})
			continue
		}
		// Multi-capture rules emit one fact per group, never a compound value.
		for gi, key := range r.keys {
			if gi+1 >= len(m) || m[gi+1] == "" {
				continue
			}
			raw = append(raw, models.ExtractedFact{
				Key:        key,
				Value:      strings.TrimSpace(m[gi+1]),
				Importance: r.importance,
				Source:     models.SourceConversation,
				Timestamp:  now,
			})
		}
	}

	facts := resolve(raw)
	if len(facts) > 0 {
		e.logger.Debug("extracted facts", "count", len(facts), "utterance_prefix", truncate(utterance, 60))
	}
	return facts
}

// resolve folds same-key duplicates from one utterance: later entries (later
// table rows) overwrite the value, importance never decreases. Output order
// follows first appearance of each key.
func resolve(raw []models.ExtractedFact) []models.ExtractedFact {
	if len(raw) == 0 {
		return nil
	}
	index := make(map[string]int, len(raw))
	out := make([]models.ExtractedFact, 0, len(raw))
	for _, f := range raw {
		if at, ok := index[f.Key]; ok {
			out[at] = out[at].Merge(f)
			continue
		}
		index[f.Key] = len(out)
		out = append(out, f)
	}
	return out
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}
