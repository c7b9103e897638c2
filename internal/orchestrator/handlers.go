package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mkovacs-dev/cogno/internal/lookup"
	"github.com/mkovacs-dev/cogno/internal/metrics"
	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/pkg/textutil"
)

// degradedConfidence caps answers produced without any local or external
// knowledge hit.
const degradedConfidence = 0.3

// factLabels maps fact keys to conversational labels.
var factLabels = map[string]string{
	"name":       "your name is",
	"age":        "you are",
	"job":        "you work as",
	"location":   "you live in",
	"pet_name":   "your pet is called",
	"pet_name_1": "one of your pets is called",
	"pet_name_2": "another of your pets is called",
	"favorite":   "your favorite is",
	"likes":      "you like",
}

// acknowledgeFact synthesizes the fast reply for a single high-importance
// fact, without consulting the classifier or the knowledge store.
func (r *Router) acknowledgeFact(fact models.ExtractedFact) models.Answer {
	label, ok := factLabels[fact.Key]
	if !ok {
		label = "your " + strings.ReplaceAll(fact.Key, "_", " ") + " is"
	}
	return models.Answer{
		Content:    fmt.Sprintf("Got it — %s %s. I'll remember that.", label, fact.Value),
		Confidence: fact.Importance,
		Reasoning:  []string{"acknowledged a newly shared personal fact"},
	}
}

// answerShare acknowledges whatever facts this turn stored.
func (r *Router) answerShare() models.Answer {
	stored := r.facts.List()
	if len(stored) == 0 {
		return models.Answer{
			Content:    "Thanks for sharing that with me.",
			Confidence: 0.6,
		}
	}
	return models.Answer{
		Content:    "Thanks, I've noted that. " + factSummary(stored),
		Confidence: 0.9,
	}
}

// answerRecall summarizes accumulated facts, narrowing by keyword when the
// utterance names one. The knowledge store is deliberately not consulted.
func (r *Router) answerRecall(text string, it models.Intent) models.Answer {
	keyword := recallKeyword(text)

	stored := r.facts.List()
	var matched []models.ExtractedFact
	if keyword == "" {
		matched = stored
	} else {
		for _, f := range stored {
			if textutil.ContainsEither(strings.ToLower(f.Value), keyword) ||
				textutil.ContainsEither(strings.ToLower(f.Key), keyword) {
				matched = append(matched, f)
			}
		}
		if len(matched) == 0 {
			// Fall back to conversational memory for the keyword.
			records := r.memory.Recall(r.sessionID, keyword, 5)
			if len(records) > 0 {
				return models.Answer{
					Content:    fmt.Sprintf("I remember us talking about that: %q", records[0].Content),
					Confidence: it.Confidence,
				}
			}
		}
	}

	if len(matched) == 0 {
		return models.Answer{
			Content:    "I don't know anything about you yet. Tell me something about yourself!",
			Confidence: 0.5,
		}
	}
	return models.Answer{
		Content:    "Here's what I know about you: " + factSummary(matched),
		Confidence: it.Confidence,
	}
}

// answerDefinition resolves a definition request from the knowledge store,
// falling back to the dictionary collaborator and learning its answer.
func (r *Router) answerDefinition(ctx context.Context, text string, it models.Intent) (models.Answer, error) {
	return r.answerFromKnowledge(ctx, text, it, lookup.KindDictionary)
}

// answerKnowledge resolves a broader knowledge query, falling back to the
// encyclopedia collaborator.
func (r *Router) answerKnowledge(ctx context.Context, text string, it models.Intent) (models.Answer, error) {
	return r.answerFromKnowledge(ctx, text, it, lookup.KindEncyclopedia)
}

// answerFromKnowledge implements the shared store→lookup→learn path. The
// lookup collaborator failing is not a handler error: the answer degrades
// to the local store only.
func (r *Router) answerFromKnowledge(ctx context.Context, text string, it models.Intent, kind lookup.Kind) (models.Answer, error) {
	term := queryTerm(text)
	if term == "" {
		return models.Answer{
			Content:    "What would you like me to look up?",
			Confidence: 0.5,
		}, nil
	}

	if results := r.knowledge.Search(term); len(results) > 0 {
		top := results[0]
		// Bump access metadata for the entry that answered.
		r.knowledge.Get(ctx, top.Entry.Term)
		return models.Answer{
			Content:    fmt.Sprintf("%s: %s", top.Entry.Term, top.Entry.Payload),
			Confidence: top.Entry.Confidence * top.Score,
			Reasoning:  []string{fmt.Sprintf("matched local knowledge with relevance %.2f", top.Score)},
		}, nil
	}

	metrics.Inc(metrics.LookupsTotal)
	res, err := r.lookup.Lookup(ctx, kind, term)
	if err != nil {
		if errors.Is(err, lookup.ErrTimeout) {
			metrics.Inc(metrics.LookupTimeouts)
		}
		// Degrade rather than fail: the local store already missed.
		return models.Answer{
			Content:    fmt.Sprintf("I can't reach my sources right now and I don't know %q yet. Want to teach me?", term),
			Confidence: degradedConfidence,
			Reasoning:  []string{"external lookup unavailable"},
		}, nil
	}

	if !res.Found {
		// Failed lookups never create knowledge entries.
		return models.Answer{
			Content:    fmt.Sprintf("I don't know %q yet. Do you want to teach me about it?", term),
			Confidence: degradedConfidence,
			Reasoning:  []string{"term not found locally or externally"},
		}, nil
	}

	category := models.CategoryFact
	if kind == lookup.KindDictionary || kind == lookup.KindThesaurus {
		category = models.CategoryVocabulary
	}
	entry, err := r.knowledge.Learn(ctx, term, res.Payload, category)
	if err != nil {
		r.logger.Warn("recording learned knowledge", "term", term, "error", err)
		entry = models.KnowledgeEntry{Term: term, Payload: res.Payload, Confidence: 0.8}
	}
	metrics.Inc(metrics.KnowledgeLearned)

	return models.Answer{
		Content:    fmt.Sprintf("%s: %s", term, res.Payload),
		Confidence: entry.Confidence,
		Reasoning:  []string{"learned from " + res.Source},
	}, nil
}

// answerDeletion removes facts by fuzzy key/value match and confirms.
func (r *Router) answerDeletion(ctx context.Context, text string) (models.Answer, error) {
	target := deletionTarget(text)
	if target == "" {
		return models.Answer{
			Content:    "What should I forget?",
			Confidence: 0.5,
		}, nil
	}

	removed, err := r.facts.Forget(ctx, target)
	if err != nil {
		return models.Answer{}, fmt.Errorf("forgetting %q: %w", target, err)
	}
	if len(removed) == 0 {
		return models.Answer{
			Content:    fmt.Sprintf("I didn't have anything stored about %q.", target),
			Confidence: 0.6,
		}, nil
	}

	keys := make([]string, 0, len(removed))
	for _, f := range removed {
		keys = append(keys, strings.ReplaceAll(f.Key, "_", " "))
	}
	return models.Answer{
		Content:    fmt.Sprintf("Done — I've forgotten your %s.", strings.Join(keys, ", ")),
		Confidence: 0.9,
	}, nil
}

// answerConversational is the total fallback capability.
func (r *Router) answerConversational(text string, it models.Intent) models.Answer {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi "), strings.HasPrefix(lower, "hi"):
		return models.Answer{Content: "Hello! Tell me something about yourself, or ask me anything.", Confidence: it.Confidence}
	case strings.Contains(lower, "thank"):
		return models.Answer{Content: "You're welcome!", Confidence: it.Confidence}
	case strings.Contains(lower, "bye"):
		return models.Answer{Content: "Goodbye! I'll remember our conversation.", Confidence: it.Confidence}
	default:
		return models.Answer{
			Content:    "Interesting! You can share facts about yourself, ask me to define words, or give me some arithmetic.",
			Confidence: it.Confidence,
		}
	}
}

// factSummary renders facts as a readable clause list.
func factSummary(list []models.ExtractedFact) string {
	parts := make([]string, 0, len(list))
	for _, f := range list {
		label, ok := factLabels[f.Key]
		if !ok {
			label = "your " + strings.ReplaceAll(f.Key, "_", " ") + " is"
		}
		parts = append(parts, fmt.Sprintf("%s %s", label, f.Value))
	}
	return strings.Join(parts, "; ") + "."
}

var (
	queryPrefixRe = regexp.MustCompile(`(?i)^(?:please\s+)?(?:can you\s+)?(?:what(?:'s|\s+is|\s+are|\s+does)\s+|how does\s+|define\s+|definition of\s+|meaning of\s+|tell me about\s+|explain\s+|describe\s+|what do you know about\s+)(?:a\s+|an\s+|the\s+)?`)
	recallRe      = regexp.MustCompile(`(?i)\bdo you remember\s+(?:about\s+)?(.+)$`)
	deletionRe    = regexp.MustCompile(`(?i)\b(?:forget|erase|delete (?:the )?memory of)\s+(?:about\s+)?(?:my\s+)?(.+)$`)
)

// queryTerm strips question scaffolding from a definition/knowledge request.
func queryTerm(text string) string {
	term := queryPrefixRe.ReplaceAllString(strings.TrimSpace(text), "")
	term = strings.Trim(term, " ?!.\"'")
	term = strings.TrimSuffix(term, " mean")
	term = strings.TrimSuffix(term, " work")
	if strings.EqualFold(term, strings.TrimSpace(text)) && len(textutil.Tokenize(term)) > 6 {
		// No scaffolding matched and the utterance is long; avoid searching
		// on a whole sentence.
		return ""
	}
	return term
}

// recallKeyword pulls the topic out of a recall request, empty for a
// general "what do you know about me".
func recallKeyword(text string) string {
	m := recallRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	kw := strings.ToLower(strings.Trim(m[1], " ?!."))
	if kw == "me" || kw == "anything about me" {
		return ""
	}
	return kw
}

// deletionTarget pulls the fact reference out of a deletion request.
func deletionTarget(text string) string {
	m := deletionRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	target := strings.Trim(m[1], " ?!.")
	target = strings.TrimPrefix(target, "about ")
	return target
}
