package models

import "time"

// FactSource records how a fact entered the system.
type FactSource string

const (
	SourceConversation FactSource = "conversation"
	SourceManual       FactSource = "manual"
)

// ExtractedFact is a structured personal fact inferred from free text.
// At most one live fact exists per key per session: a re-extraction for an
// existing key overwrites value and timestamp, and importance becomes the
// max of old and new.
type ExtractedFact struct {
	Key        string     `json:"key"`
	Value      string     `json:"value"`
	Importance float64    `json:"importance"`
	Source     FactSource `json:"source"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Merge folds a newer extraction of the same key into f per the conflict
// policy: the new value and timestamp win, importance never decreases.
func (f ExtractedFact) Merge(newer ExtractedFact) ExtractedFact {
	merged := newer
	if f.Importance > merged.Importance {
		merged.Importance = f.Importance
	}
	return merged
}

// Utterance is one incoming user message. Transient: it is never persisted
// beyond the turn that processes it.
type Utterance struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}
