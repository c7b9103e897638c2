package models

// IntentKind identifies which capability should answer an utterance.
type IntentKind string

const (
	IntentMath               IntentKind = "math"
	IntentPersonalInfoShare  IntentKind = "personal_info_share"
	IntentPersonalInfoRecall IntentKind = "personal_info_recall"
	IntentDefinitionRequest  IntentKind = "definition_request"
	IntentKnowledgeQuery     IntentKind = "knowledge_query"
	IntentMemoryDeletion     IntentKind = "memory_deletion"
	IntentConversational     IntentKind = "conversational"
)

// ValidIntentKinds is the set of all recognized intent kinds.
var ValidIntentKinds = []IntentKind{
	IntentMath,
	IntentPersonalInfoShare,
	IntentPersonalInfoRecall,
	IntentDefinitionRequest,
	IntentKnowledgeQuery,
	IntentMemoryDeletion,
	IntentConversational,
}

// IsValid returns true if the intent kind is recognized.
func (k IntentKind) IsValid() bool {
	for _, v := range ValidIntentKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Intent is the routing decision for one utterance.
type Intent struct {
	Kind       IntentKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
}

// Answer is the structured per-turn result handed to the rendering consumer.
type Answer struct {
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning,omitempty"`
}
