// Package lookup implements the external word/knowledge lookup collaborator.
// Providers are only ever invoked from knowledge-store population paths,
// behind an explicit timeout after which callers proceed with degraded
// confidence instead of blocking.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Kind selects which lookup capability to use.
type Kind string

const (
	KindDictionary   Kind = "dictionary"
	KindThesaurus    Kind = "thesaurus"
	KindEncyclopedia Kind = "encyclopedia"
)

// Result is the outcome of a successful lookup call. Found reports whether
// the provider actually knew the term; a false Found is not an error.
type Result struct {
	Found   bool   `json:"found"`
	Payload string `json:"payload"`
	Source  string `json:"source"`
}

// ErrTimeout is returned when a provider did not answer within the deadline.
var ErrTimeout = errors.New("lookup timed out")

// ErrUnavailable is returned when a provider failed for any non-timeout reason.
var ErrUnavailable = errors.New("lookup unavailable")

// Provider answers lookup requests for one or more kinds.
type Provider interface {
	Lookup(ctx context.Context, kind Kind, term string) (Result, error)
}

// Mux routes lookup kinds to the configured providers and enforces the
// per-call timeout.
type Mux struct {
	providers map[Kind]Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewMux creates a Mux. A zero timeout disables the deadline.
func NewMux(providers map[Kind]Provider, timeout time.Duration, logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mux{providers: providers, timeout: timeout, logger: logger}
}

// Lookup dispatches to the provider registered for kind. Deadline overruns
// come back as ErrTimeout so callers can degrade rather than surface a raw
// transport error.
func (m *Mux) Lookup(ctx context.Context, kind Kind, term string) (Result, error) {
	p, ok := m.providers[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: no provider for kind %q", ErrUnavailable, kind)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	res, err := p.Lookup(ctx, kind, term)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			m.logger.Warn("lookup timed out", "kind", kind, "term", term)
			return Result{}, fmt.Errorf("%w: %s %q", ErrTimeout, kind, term)
		}
		m.logger.Warn("lookup failed", "kind", kind, "term", term, "error", err)
		return Result{}, fmt.Errorf("%w: %s %q: %s", ErrUnavailable, kind, term, err)
	}
	return res, nil
}
