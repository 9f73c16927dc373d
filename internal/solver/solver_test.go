package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarlabs/cohort/internal/model"
)

func TestAssignment_Groups(t *testing.T) {
	a := Assignment{0, 1, 0, 1, 1}
	groups := a.Groups(2)

	assert.Equal(t, []int{0, 2}, groups[0])
	assert.Equal(t, []int{1, 3, 4}, groups[1])
}

func TestAssignment_Validate(t *testing.T) {
	m := &model.Model{NumStudents: 4, NumGroups: 2, GroupSizes: []int{2, 2}}

	require.NoError(t, Assignment{0, 0, 1, 1}.Validate(m))

	err := Assignment{0, 0, 1}.Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "covers 3 students")

	err = Assignment{0, 0, 1, 2}.Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group 2")

	err = Assignment{0, 0, 0, 1}.Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured size")
}

func TestResult_Usable(t *testing.T) {
	assert.True(t, (&Result{Status: StatusOptimal}).Usable())
	assert.True(t, (&Result{Status: StatusFeasible}).Usable())
	assert.False(t, (&Result{Status: StatusInfeasible}).Usable())
	assert.False(t, (&Result{Status: StatusFailure}).Usable())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
}
