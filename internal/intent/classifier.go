// Package intent classifies utterances into routing decisions using an
// ordered rule table. Rules deliberately overlap; table order encodes
// precedence, so the first matching rule wins rather than the highest score.
package intent

import (
	"log/slog"
	"regexp"

	"github.com/mkovacs-dev/cogno/internal/models"
)

// Classifier determines the intent of an utterance.
type Classifier interface {
	Classify(utterance string) models.Intent
}

// rule is one row of the classification table. A rule matches when pattern
// matches and exclude (when set) does not.
type rule struct {
	kind       models.IntentKind
	confidence float64
	pattern    *regexp.Regexp
	exclude    *regexp.Regexp
	reasoning  string
}

// rules is the canonical classification table. A declarative "I am ..." must
// never be misread as a question or a sum, so personal-info sharing sits
// above arithmetic and the question rules.
var rules = []rule{
	{
		kind:       models.IntentPersonalInfoShare,
		confidence: 0.95,
		pattern: regexp.MustCompile(`(?i)\b(my name is|i'?m called|call me|i am \w+ years old|i'?m \d+|my (?:dog|cat|pet)s?(?:'s)? (?:is|are) (?:named|called)|i have (?:a|two|\d+) (?:dog|cat|pet)s?|i work as|my job is|i'?m an? \w+ by trade|i live in|i'?m from|my favorite|my favourite|i (?:really )?(?:love|like|enjoy|prefer))\b`),
		reasoning:  "utterance declares a personal fact",
	},
	{
		kind:       models.IntentMath,
		confidence: 0.9,
		pattern:    regexp.MustCompile(`\d+(?:\.\d+)?\s*[-+*/×÷]\s*\d+(?:\.\d+)?`),
		reasoning:  "utterance contains an arithmetic expression",
	},
	{
		kind:       models.IntentDefinitionRequest,
		confidence: 0.9,
		pattern:    regexp.MustCompile(`(?i)\b(what(?:'s| is| does| are)|define|definition of|meaning of)\b`),
		exclude:    regexp.MustCompile(`(?i)\b(about me|remember|my)\b`),
		reasoning:  "utterance asks for a definition",
	},
	{
		kind:       models.IntentKnowledgeQuery,
		confidence: 0.8,
		pattern:    regexp.MustCompile(`(?i)\b(tell me about|explain|describe|what do you know about|how does .+ work)\b`),
		exclude:    regexp.MustCompile(`(?i)\b(about me|remember)\b`),
		reasoning:  "utterance requests broader knowledge",
	},
	{
		kind:       models.IntentPersonalInfoRecall,
		confidence: 0.85,
		pattern:    regexp.MustCompile(`(?i)\b(do you remember|what do you (?:know|remember) about me|who am i|what(?:'s| is) my \w+)\b`),
		reasoning:  "utterance asks to recall personal facts",
	},
	{
		kind:       models.IntentMemoryDeletion,
		confidence: 0.9,
		pattern:    regexp.MustCompile(`(?i)\b(forget|delete (?:the )?memory of|erase|don'?t remember)\b`),
		reasoning:  "utterance asks to delete a memory",
	},
}

// RuleClassifier walks the ordered rule table and returns the first match.
type RuleClassifier struct {
	logger *slog.Logger
}

// NewClassifier creates a new rule-table classifier.
func NewClassifier(logger *slog.Logger) *RuleClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleClassifier{logger: logger}
}

// Classify returns the intent for an utterance. It is total: when no rule
// matches, the conversational fallback is returned with confidence 0.7.
func (c *RuleClassifier) Classify(utterance string) models.Intent {
	for i := range rules {
		r := &rules[i]
		if !r.pattern.MatchString(utterance) {
			continue
		}
		if r.exclude != nil && r.exclude.MatchString(utterance) {
			continue
		}
		c.logger.Debug("classified utterance", "kind", r.kind, "confidence", r.confidence, "utterance_prefix", truncate(utterance, 60))
		return models.Intent{
			Kind:       r.kind,
			Confidence: r.confidence,
			Reasoning:  r.reasoning,
		}
	}

	c.logger.Debug("classified utterance", "kind", models.IntentConversational, "utterance_prefix", truncate(utterance, 60))
	return models.Intent{
		Kind:       models.IntentConversational,
		Confidence: 0.7,
		Reasoning:  "no routing rule matched; treating as small talk",
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}
