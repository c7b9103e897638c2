// Package metrics provides application-level counters using stdlib expvar.
// Counters are exported on the /debug/vars HTTP endpoint when the API
// server is running.
package metrics

import "expvar"

// Operation counters.
var (
	TurnsTotal       = expvar.NewInt("cogno_turns_total")
	FactsExtracted   = expvar.NewInt("cogno_facts_extracted_total")
	ImmediateReplies = expvar.NewInt("cogno_immediate_replies_total")
	LookupsTotal     = expvar.NewInt("cogno_lookups_total")
	LookupTimeouts   = expvar.NewInt("cogno_lookup_timeouts_total")
	KnowledgeLearned = expvar.NewInt("cogno_knowledge_learned_total")
	SessionsEvicted  = expvar.NewInt("cogno_sessions_evicted_total")
	HandlerFailures  = expvar.NewInt("cogno_handler_failures_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
