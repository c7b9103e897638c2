// Package orchestrator sequences one conversational turn: extract facts,
// acknowledge or classify, dispatch to the answering capability, and fold
// the result into conversational memory. Within a turn, fact persistence
// happens before dispatch, which happens before the memory appends; recall
// issued later in a turn must see facts extracted earlier in it.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkovacs-dev/cogno/internal/extract"
	"github.com/mkovacs-dev/cogno/internal/facts"
	"github.com/mkovacs-dev/cogno/internal/intent"
	"github.com/mkovacs-dev/cogno/internal/knowledge"
	"github.com/mkovacs-dev/cogno/internal/lookup"
	"github.com/mkovacs-dev/cogno/internal/memory"
	"github.com/mkovacs-dev/cogno/internal/metrics"
	"github.com/mkovacs-dev/cogno/internal/models"
)

// apologyConfidence is the fixed confidence of the fallback answer produced
// when a capability handler fails.
const apologyConfidence = 0.1

// Options tunes the router.
type Options struct {
	// ImmediateResponse enables the fast acknowledgement path for a single
	// high-importance extracted fact.
	ImmediateResponse bool

	// ImmediateResponseFloor is the minimum importance for that path.
	ImmediateResponseFloor float64
}

// DefaultOptions returns the default router options.
func DefaultOptions() Options {
	return Options{
		ImmediateResponse:      true,
		ImmediateResponseFloor: 0.7,
	}
}

// Router owns one conversational session and processes its turns to
// completion, one at a time.
type Router struct {
	sessionID  string
	classifier intent.Classifier
	extractor  extract.Extractor
	knowledge  *knowledge.Store
	memory     *memory.Log
	facts      *facts.Book
	lookup     lookup.Provider
	opts       Options
	logger     *slog.Logger

	// turnMu serializes turns and doubles as the sweeper gate: eviction
	// can never interleave with a turn in flight.
	turnMu sync.Mutex
}

// NewRouter wires a router for one session.
func NewRouter(
	sessionID string,
	cls intent.Classifier,
	ext extract.Extractor,
	ks *knowledge.Store,
	mem *memory.Log,
	fb *facts.Book,
	lk lookup.Provider,
	opts Options,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		sessionID:  sessionID,
		classifier: cls,
		extractor:  ext,
		knowledge:  ks,
		memory:     mem,
		facts:      fb,
		lookup:     lk,
		opts:       opts,
		logger:     logger,
	}
}

// SessionID returns the session this router owns.
func (r *Router) SessionID() string {
	return r.sessionID
}

// TurnGate returns the lock that serializes turns, for the eviction sweeper.
func (r *Router) TurnGate() sync.Locker {
	return &r.turnMu
}

// Respond processes one utterance to completion and returns the answer. It
// never returns an error: capability failures become a fixed-confidence
// apology, and the turn still reaches memory so state stays consistent.
func (r *Router) Respond(ctx context.Context, text string) models.Answer {
	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	metrics.Inc(metrics.TurnsTotal)
	utt := models.Utterance{
		Text:      text,
		Timestamp: time.Now().UTC(),
		SessionID: r.sessionID,
	}

	// Received → Extracted. All facts persist regardless of downstream path.
	extracted := r.extractor.Extract(text)
	if len(extracted) > 0 {
		metrics.FactsExtracted.Add(int64(len(extracted)))
		if err := r.facts.StoreAll(ctx, extracted); err != nil {
			r.logger.Warn("persisting extracted facts", "error", err)
		}
	}

	var answer models.Answer
	if r.opts.ImmediateResponse && len(extracted) == 1 && extracted[0].Importance >= r.opts.ImmediateResponseFloor {
		// Extracted → ImmediateReply: skip classification entirely.
		metrics.Inc(metrics.ImmediateReplies)
		answer = r.acknowledgeFact(extracted[0])
	} else {
		// Extracted → Classified → Dispatched.
		it := r.classifier.Classify(text)
		answer = r.dispatch(ctx, it, utt)
		answer.Reasoning = append([]string{it.Reasoning}, answer.Reasoning...)
	}

	// Dispatched → Recorded: both halves of the turn enter memory.
	r.record(ctx, models.RoleUser, utt.Text, utt.Timestamp)
	r.record(ctx, models.RoleAssistant, answer.Content, time.Now().UTC())

	return answer
}

// dispatch routes the intent to its capability. Any handler error or panic
// becomes the apology answer; the turn still proceeds to Recorded.
func (r *Router) dispatch(ctx context.Context, it models.Intent, utt models.Utterance) (answer models.Answer) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("capability handler panicked", "kind", it.Kind, "panic", p)
			metrics.Inc(metrics.HandlerFailures)
			answer = r.apology()
		}
	}()

	var err error
	switch it.Kind {
	case models.IntentMath:
		answer, err = r.answerMath(utt.Text, it)
	case models.IntentPersonalInfoShare:
		answer = r.answerShare()
	case models.IntentPersonalInfoRecall:
		answer = r.answerRecall(utt.Text, it)
	case models.IntentDefinitionRequest:
		answer, err = r.answerDefinition(ctx, utt.Text, it)
	case models.IntentKnowledgeQuery:
		answer, err = r.answerKnowledge(ctx, utt.Text, it)
	case models.IntentMemoryDeletion:
		answer, err = r.answerDeletion(ctx, utt.Text)
	default:
		answer = r.answerConversational(utt.Text, it)
	}
	if err != nil {
		r.logger.Warn("capability handler failed", "kind", it.Kind, "error", err)
		metrics.Inc(metrics.HandlerFailures)
		return r.apology()
	}
	return answer
}

// record appends one memory record, logging instead of failing the turn.
func (r *Router) record(ctx context.Context, role models.MemoryRole, content string, ts time.Time) {
	err := r.memory.Append(ctx, models.MemoryRecord{
		Role:      role,
		Content:   content,
		Timestamp: ts,
		SessionID: r.sessionID,
	})
	if err != nil {
		r.logger.Warn("appending memory record", "role", role, "error", err)
	}
}

// apology is the fixed-confidence fallback answer for handler failures.
func (r *Router) apology() models.Answer {
	return models.Answer{
		Content:    "I'm sorry, something went wrong on my end while answering that. Could you try again?",
		Confidence: apologyConfidence,
	}
}
