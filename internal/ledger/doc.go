// Package ledger maintains the pairwise interaction history that threads
// the sequential session solves together.
//
// The ledger is an N×N symmetric matrix of non-negative counts, one
// row/column per roster index. M[i][j] is the number of sessions so far
// in which students i and j were placed in the same group. The diagonal
// is unused.
//
// INVARIANTS:
//   - M[i][j] == M[j][i] for all i != j, after every mutation
//   - entries never decrease; the ledger is append-only across a run
//
// The orchestrator is the sole mutator: it calls RecordSession exactly
// once per solved session, after the solver returns and before the next
// session's model is built. The model builder only reads a Clone, so a
// failed session can never leave a half-applied update behind.
package ledger
