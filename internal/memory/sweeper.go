package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the background sweeper runs eviction.
const DefaultSweepInterval = 30 * time.Second

// Report summarizes one sweep.
type Report struct {
	EvictedSessions int `json:"evicted_sessions"`
}

// Sweeper runs Evict on a fixed interval. It takes the turn gate before
// every sweep so eviction never runs while a turn is between extraction and
// record.
type Sweeper struct {
	log      *Log
	gate     sync.Locker
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper over log. gate must be the same lock that
// serializes turns; interval <= 0 selects DefaultSweepInterval.
func NewSweeper(log *Log, gate sync.Locker, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{log: log, gate: gate, interval: interval, logger: logger}
}

// Run blocks, sweeping on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.RunOnce(ctx, false)
			if err != nil {
				s.logger.Error("sweep failed", "error", err)
				continue
			}
			if report.EvictedSessions > 0 {
				s.logger.Info("sweep complete", "evicted_sessions", report.EvictedSessions)
			}
		}
	}
}

// RunOnce performs a single sweep under the turn gate.
func (s *Sweeper) RunOnce(ctx context.Context, dryRun bool) (*Report, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	evicted, err := s.log.Evict(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	return &Report{EvictedSessions: evicted}, nil
}
