package neos

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/seminarlabs/cohort/internal/model"
	"github.com/seminarlabs/cohort/internal/solver"
)

// parseCPLEXLog extracts verdict and assignment from a CPLEX job log.
//
// CPLEX prints a one-line MIP verdict ("MIP - Integer optimal solution",
// "MIP - Time limit exceeded, integer feasible", "MIP - Integer
// infeasible.") followed, when the post commands ran, by the nonzero
// solution variables as "name  value" lines. Only x variables with value
// > 0.5 matter for extraction; these are exact binaries so 0.5 is a safe
// midpoint, not a tolerance tune.
func parseCPLEXLog(log string, m *model.Model) (*solver.Result, error) {
	status := solver.StatusFailure
	reason := ""
	objective := 0.0

	sc := bufio.NewScanner(strings.NewReader(log))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	assignment := make(solver.Assignment, m.NumStudents)
	for i := range assignment {
		assignment[i] = -1
	}
	sawVars := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		// Verdict lines may carry an interactive "CPLEX>" prompt prefix.
		switch {
		case strings.Contains(line, "MIP - Integer optimal"):
			status = solver.StatusOptimal
		case strings.Contains(line, "MIP - Time limit exceeded, integer feasible"):
			status = solver.StatusFeasible
		case strings.Contains(line, "MIP - Integer infeasible"),
			strings.Contains(line, "MIP - Infeasible"):
			status = solver.StatusInfeasible
			reason = line
		case strings.Contains(line, "MIP - Time limit exceeded, no integer solution"):
			status = solver.StatusFailure
			reason = line
		}

		// CPLEX prints the objective on the verdict line:
		// "MIP - Integer optimal solution:  Objective =  4.0000000000e+00".
		if idx := strings.Index(line, "Objective ="); idx >= 0 {
			rest := strings.Fields(line[idx+len("Objective ="):])
			if len(rest) > 0 {
				if f, err := strconv.ParseFloat(rest[0], 64); err == nil {
					objective = f
				}
			}
		}

		// Solution variable lines: "x_3_1   1.000000".
		fields := strings.Fields(line)
		if len(fields) == 2 && strings.HasPrefix(fields[0], "x_") {
			val, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || val < 0.5 {
				continue
			}
			student, group, err := parseXVar(fields[0])
			if err != nil {
				return nil, err
			}
			if student >= m.NumStudents || group >= m.NumGroups {
				return nil, fmt.Errorf("solution variable %s out of model range", fields[0])
			}
			assignment[student] = group
			sawVars = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning solver log: %w", err)
	}

	switch status {
	case solver.StatusInfeasible:
		return &solver.Result{Status: solver.StatusInfeasible, Reason: reason}, nil
	case solver.StatusFailure:
		if reason == "" {
			reason = "no MIP verdict found in solver log"
		}
		return &solver.Result{Status: solver.StatusFailure, Reason: reason}, nil
	}

	if !sawVars {
		return &solver.Result{Status: solver.StatusFailure, Reason: "solver log contains a verdict but no solution variables"}, nil
	}
	for student, g := range assignment {
		if g < 0 {
			return &solver.Result{Status: solver.StatusFailure, Reason: fmt.Sprintf("student %d missing from solution", student)}, nil
		}
	}

	return &solver.Result{Status: status, Assignment: assignment, Objective: objective}, nil
}

// parseXVar splits an assignment variable name x_<student>_<group>.
func parseXVar(name string) (student, group int, err error) {
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed assignment variable %q", name)
	}
	student, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed assignment variable %q", name)
	}
	group, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed assignment variable %q", name)
	}
	return student, group, nil
}
