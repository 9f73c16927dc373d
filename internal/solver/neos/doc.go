// Package neos implements the solver gateway against the NEOS Server,
// the hosted optimization service at neos-server.org.
//
// NEOS speaks XML-RPC. A solve is: submitJob with a job document
// embedding the LP model text and the caller's email (NEOS requires a
// contact address to accept a submission; it has no effect on the
// model), then poll getJobStatus until "Done", then fetch the solver log
// with getFinalResults and parse the CPLEX solution out of it.
//
// Outcome mapping: a proven-optimal CPLEX verdict becomes
// StatusOptimal; a time-limit verdict with an incumbent becomes
// StatusFeasible; an infeasibility verdict becomes StatusInfeasible;
// transport errors, rejected submissions and logs with no parseable
// solution become StatusFailure.
package neos
