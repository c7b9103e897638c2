// Package memory implements the importance-weighted conversational memory:
// an ordered, capacity-bounded log of turns per session with keyword recall
// and periodic eviction of stale, unimportant sessions.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkovacs-dev/cogno/internal/metrics"
	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/storage"
)

const (
	// DefaultMaxRecords bounds the per-session record count.
	DefaultMaxRecords = 100

	// DefaultRetentionWindow is how long an unimportant session may idle
	// before it becomes eligible for eviction.
	DefaultRetentionWindow = 50 * time.Minute

	// DefaultEvictionThreshold is the importance floor below which idle
	// sessions are evicted.
	DefaultEvictionThreshold = 0.3

	// indexNamespace registers known sessions so eviction can see sessions
	// from earlier runs.
	indexNamespace = storage.MemoryNamespacePrefix + "index"

	// sessionKey is the key under which a session blob is stored inside
	// its own namespace.
	sessionKey = "session"
)

// Config holds the retention knobs for conversational memory.
type Config struct {
	MaxRecords        int
	RetentionWindow   time.Duration
	EvictionThreshold float64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() Config {
	return Config{
		MaxRecords:        DefaultMaxRecords,
		RetentionWindow:   DefaultRetentionWindow,
		EvictionThreshold: DefaultEvictionThreshold,
	}
}

// Log is the cross-turn conversational memory. Single writer per session;
// concurrent readers tolerate eventually-consistent snapshots.
type Log struct {
	mu       sync.RWMutex
	sessions map[string]*models.ConversationSession
	cfg      Config
	backend  storage.Backend
	logger   *slog.Logger
	evicted  int64
	now      func() time.Time
}

// NewLog creates conversational memory writing through to backend.
func NewLog(backend storage.Backend, cfg Config, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultMaxRecords
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = DefaultRetentionWindow
	}
	if cfg.EvictionThreshold <= 0 {
		cfg.EvictionThreshold = DefaultEvictionThreshold
	}
	return &Log{
		sessions: make(map[string]*models.ConversationSession),
		cfg:      cfg,
		backend:  backend,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Load restores previously persisted sessions. Corrupt blobs degrade to an
// empty session with a warning, never an error surfaced upward.
func (l *Log) Load(ctx context.Context) error {
	index, err := l.backend.ListNamespace(ctx, indexNamespace)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ie := range index {
		raw, err := l.backend.Get(ctx, storage.MemoryNamespace(ie.Key), sessionKey)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				l.logger.Warn("loading session", "session_id", ie.Key, "error", err)
			}
			continue
		}
		var sess models.ConversationSession
		if err := json.Unmarshal(raw, &sess); err != nil {
			l.logger.Warn("skipping corrupt session blob", "session_id", ie.Key, "error", err)
			continue
		}
		l.sessions[sess.ID] = &sess
	}
	l.logger.Debug("conversational memory loaded", "sessions", len(l.sessions))
	return nil
}

// Append adds a record to its session, creating the session on first use.
// Importance is recomputed on every append; on overflow the oldest fifth of
// the records is dropped, never the newest.
func (l *Log) Append(ctx context.Context, record models.MemoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions[record.SessionID]
	if !ok {
		sess = &models.ConversationSession{
			ID:        record.SessionID,
			StartedAt: record.Timestamp,
		}
		l.sessions[record.SessionID] = sess
	}

	sess.Records = append(sess.Records, record)
	sess.LastActivity = record.Timestamp

	if len(sess.Records) > l.cfg.MaxRecords {
		drop := l.cfg.MaxRecords / 5
		if drop < 1 {
			drop = 1
		}
		if drop >= len(sess.Records) {
			drop = len(sess.Records) - 1
		}
		sess.Records = append(sess.Records[:0:0], sess.Records[drop:]...)
	}

	sess.Importance = l.importanceLocked(sess)
	return l.persistLocked(ctx, sess)
}

// Recall returns up to limit records whose content contains keyword
// (case-insensitive), most recent first. A limit <= 0 selects the default
// of 5.
func (l *Log) Recall(sessionID, keyword string, limit int) []models.MemoryRecord {
	if limit <= 0 {
		limit = 5
	}
	needle := strings.ToLower(keyword)

	l.mu.RLock()
	defer l.mu.RUnlock()

	sess, ok := l.sessions[sessionID]
	if !ok {
		return nil
	}

	var matches []models.MemoryRecord
	for i := len(sess.Records) - 1; i >= 0 && len(matches) < limit; i-- {
		if strings.Contains(strings.ToLower(sess.Records[i].Content), needle) {
			matches = append(matches, sess.Records[i])
		}
	}
	return matches
}

// Importance returns the current importance of a session, 0 for unknown ones.
func (l *Log) Importance(sessionID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if sess, ok := l.sessions[sessionID]; ok {
		return sess.Importance
	}
	return 0
}

// Session returns a snapshot of a session, or nil when unknown.
func (l *Log) Session(sessionID string) *models.ConversationSession {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sess, ok := l.sessions[sessionID]
	if !ok {
		return nil
	}
	out := *sess
	out.Records = append([]models.MemoryRecord(nil), sess.Records...)
	return &out
}

// Evict removes sessions that are both unimportant and idle beyond the
// retention window. Returns the number of sessions evicted (or that would
// be, when dryRun is set). A session at or above the importance threshold is
// never evicted regardless of age.
func (l *Log) Evict(ctx context.Context, dryRun bool) (int, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for id, sess := range l.sessions {
		if sess.Importance >= l.cfg.EvictionThreshold {
			continue
		}
		if now.Sub(sess.LastActivity) <= l.cfg.RetentionWindow {
			continue
		}
		l.logger.Info("evicting session", "session_id", id, "importance", sess.Importance, "last_activity", sess.LastActivity, "dry_run", dryRun)
		if !dryRun {
			delete(l.sessions, id)
			if err := l.backend.ClearNamespace(ctx, storage.MemoryNamespace(id)); err != nil {
				l.logger.Warn("clearing evicted session namespace", "session_id", id, "error", err)
			}
			if err := l.backend.Delete(ctx, indexNamespace, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
				l.logger.Warn("removing evicted session from index", "session_id", id, "error", err)
			}
			l.evicted++
			metrics.Inc(metrics.SessionsEvicted)
		}
		evicted++
	}
	return evicted, nil
}

// Stats summarizes memory occupancy.
func (l *Log) Stats() models.SessionStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := models.SessionStats{Sessions: len(l.sessions), Evicted: l.evicted}
	var sum float64
	for _, sess := range l.sessions {
		stats.TotalRecords += len(sess.Records)
		sum += sess.Importance
	}
	if len(l.sessions) > 0 {
		stats.MeanImport = sum / float64(len(l.sessions))
	}
	return stats
}

// importanceLocked recomputes session importance as the mean of the message
// count, recency, and duration scores. Substantial fresh sessions score
// high; stale short sessions decay toward eviction.
func (l *Log) importanceLocked(sess *models.ConversationSession) float64 {
	now := l.now()

	countScore := float64(len(sess.Records)) / 20
	if countScore > 1 {
		countScore = 1
	}

	recencyScore := 1 - now.Sub(sess.LastActivity).Hours()/24
	if recencyScore < 0 {
		recencyScore = 0
	}

	durationScore := sess.LastActivity.Sub(sess.StartedAt).Hours()
	if durationScore > 1 {
		durationScore = 1
	}
	if durationScore < 0 {
		durationScore = 0
	}

	return (countScore + recencyScore + durationScore) / 3
}

// persistLocked writes the session blob and its index entry.
func (l *Log) persistLocked(ctx context.Context, sess *models.ConversationSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := l.backend.Set(ctx, storage.MemoryNamespace(sess.ID), sessionKey, raw); err != nil {
		return err
	}
	meta, err := json.Marshal(map[string]any{
		"importance":    sess.Importance,
		"last_activity": sess.LastActivity,
	})
	if err != nil {
		return err
	}
	return l.backend.Set(ctx, indexNamespace, sess.ID, meta)
}
