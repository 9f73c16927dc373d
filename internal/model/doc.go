// Package model builds the mixed-integer assignment problem for one
// session.
//
// Decision structure:
//
//	x[i][g]    binary, 1 iff student i is placed in group g
//	w[i][j][g] binary for i<j, intended to equal x[i][g] AND x[j][g]
//
// The AND is linearized with the standard three inequalities
//
//	w[i][j][g] <= x[i][g]
//	w[i][j][g] <= x[j][g]
//	w[i][j][g] >= x[i][g] + x[j][g] - 1
//
// which is exact for binary x: the first two forbid w=1 unless both x's
// are 1, and because the objective only ever rewards w for never-met
// pairs (and penalizes it for over-threshold pairs), the solver has no
// incentive to set w falsely. These are integer feasibility constraints,
// not approximations; no rounding or tolerance handling is involved.
//
// Objective (maximize), over unordered pairs i<j and groups g:
//
//	delta(i,j)*w[i][j][g] - penaltyWeight*over(i,j)*w[i][j][g]
//
// where delta is 1 for pairs that have never met and over is 1 for pairs
// at or above the penalty threshold. A never-met pair contributes +1, a
// pair between 1 and threshold-1 contributes 0, and an over-threshold
// pair contributes -penaltyWeight, flat, however far past the threshold
// it is.
//
// Hard constraints: every student in exactly one group, exact group
// sizes, at most categoryCap students of any one category per group, and
// w[i][j][g] forced to 0 in every group for pairs already at the hard
// interaction cap.
//
// CRITICAL: Build is deterministic. Identical roster, ledger and config
// produce a bit-identical model: variables, objective terms and
// constraints are emitted in fixed index order, and the canonical LP
// render (and therefore Hash) is stable. Golden tests pin the render.
package model
