package models

import "time"

// KnowledgeCategory classifies the kind of knowledge entry.
type KnowledgeCategory string

const (
	CategoryVocabulary  KnowledgeCategory = "vocabulary"
	CategoryMathematics KnowledgeCategory = "mathematics"
	CategoryFact        KnowledgeCategory = "fact"
)

// ValidKnowledgeCategories is the set of all valid categories.
var ValidKnowledgeCategories = []KnowledgeCategory{
	CategoryVocabulary,
	CategoryMathematics,
	CategoryFact,
}

// IsValid returns true if the category is recognized.
func (c KnowledgeCategory) IsValid() bool {
	for _, v := range ValidKnowledgeCategories {
		if c == v {
			return true
		}
	}
	return false
}

// KnowledgeEntry is one item in the local knowledge store. Immutable once
// created except for the access metadata pair used by ranking and eviction.
type KnowledgeEntry struct {
	Term         string            `json:"term"`
	Category     KnowledgeCategory `json:"category"`
	Payload      string            `json:"payload"`
	Confidence   float64           `json:"confidence"`
	Seed         bool              `json:"seed"`
	LearnedAt    time.Time         `json:"learned_at"`
	LastAccessed time.Time         `json:"last_accessed"`
	AccessCount  int64             `json:"access_count"`
}

// ScoredEntry wraps a KnowledgeEntry with its relevance score for a query.
type ScoredEntry struct {
	Entry KnowledgeEntry `json:"entry"`
	Score float64        `json:"score"`
}
