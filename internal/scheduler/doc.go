// Package scheduler drives the session loop.
//
// Per run the orchestrator walks
//
//	INIT -> (BUILD -> SUBMIT -> EXTRACT -> LEDGER_UPDATE -> RECORD)* -> DONE
//
// Sessions are strictly sequential: session k+1's model depends on the
// ledger as updated by session k, so nothing about the loop may be
// reordered or parallelized. The ledger is exclusively owned here; the
// builder only ever sees a clone.
//
// Two run modes:
//
//   - Batch: a fixed ordered session list processed end to end against a
//     ledger built from zero.
//   - Incremental: exactly one session against a ledger seeded from
//     externally supplied historical groupings.
//
// Failure discipline: an Infeasible or Failure verdict halts the run.
// The failed session contributes no ledger update and no records, and
// the results accumulated by prior sessions are returned intact, never
// discarded. No partial schedule is ever inferred from a failed solve.
//
// The only long-blocking operation is the gateway submission; a
// heartbeat callback fires on a ticker around it so a caller can report
// "still solving" without perturbing ordering.
package scheduler
