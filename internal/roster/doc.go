// Package roster holds the immutable student roster and the loaders for
// the two CSV inputs the scheduler consumes.
//
// A Roster is an ordered sequence of students. The load order is the
// canonical index for every matrix and model built during a run: student i
// in the roster is row/column i in the interaction ledger and index i in
// the assignment model. The roster is never mutated after construction.
//
// Names are NFC-normalized on load. Roster files and history files are
// often exported from different tools, and the same name can arrive in
// different Unicode compositions; normalizing both sides makes the
// history-to-roster link byte-comparable.
package roster
