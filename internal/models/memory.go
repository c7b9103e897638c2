package models

import "time"

// MemoryRole identifies which side of the conversation produced a record.
type MemoryRole string

const (
	RoleUser      MemoryRole = "user"
	RoleAssistant MemoryRole = "assistant"
)

// MemoryRecord is one conversational turn half (user utterance or assistant
// answer) inside a session.
type MemoryRecord struct {
	ID        string     `json:"id"`
	Role      MemoryRole `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	SessionID string     `json:"session_id"`
}

// ConversationSession groups the ordered records of one continuous
// conversation. Records are ordered by timestamp ascending; Importance is
// recomputed after every append.
type ConversationSession struct {
	ID           string         `json:"id"`
	Records      []MemoryRecord `json:"records"`
	Importance   float64        `json:"importance"`
	StartedAt    time.Time      `json:"started_at"`
	LastActivity time.Time      `json:"last_activity"`
}

// SessionStats holds summary statistics about conversational memory.
type SessionStats struct {
	Sessions     int     `json:"sessions"`
	TotalRecords int     `json:"total_records"`
	Evicted      int64   `json:"evicted"`
	MeanImport   float64 `json:"mean_importance"`
}
