// Package solver defines the gateway contract between the scheduling
// engine and whatever actually solves the mixed-integer program.
//
// The engine's job ends at "submit a fully specified model" and resumes
// at "consume a feasible assignment or a failure signal". Everything in
// between — branch and bound, remote submission, queuing — is behind the
// Gateway interface, so a local solver, a commercial solver or a remote
// service can be substituted without touching the builder or the
// orchestrator.
//
// A Result is one of four statuses. Optimal and Feasible both carry a
// complete assignment and are treated identically downstream; Feasible
// merely means the time limit expired before optimality was proven.
// Infeasible and Failure carry no assignment, ever: the engine must not
// fabricate a partial schedule from a failed solve.
package solver
