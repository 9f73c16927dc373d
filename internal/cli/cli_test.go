package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarlabs/cohort/internal/solver"
	"github.com/seminarlabs/cohort/internal/store"
	"github.com/seminarlabs/cohort/internal/testutil"
)

const testRosterCSV = `Student Name,AFSC
Adams,11F
Baker,11F
Clark,11F
Diaz,17D
Evans,17D
Frost,21A
Grant,21A
Hayes,62E
`

// writeFixtures writes a roster and config into dir and returns the
// config path.
func writeFixtures(t *testing.T, dir string, sessions ...string) string {
	t.Helper()

	rosterPath := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(testRosterCSV), 0o644))

	yaml := fmt.Sprintf("roster: %s\ngroup_sizes: [4, 4]\npenalty_threshold: 3\nmax_interaction: 4\nsessions:\n", rosterPath)
	for _, id := range sessions {
		yaml += fmt.Sprintf("  - id: %q\n", id)
	}
	yaml += "solver:\n  email: scheduler@example.com\n"

	cfgPath := filepath.Join(dir, "cohort.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))
	return cfgPath
}

// testCommand builds a bare command carrier for calling command
// implementations directly, with a context and captured output.
func testCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func TestValidate_OK(t *testing.T) {
	cfgPath := writeFixtures(t, t.TempDir(), "601", "600")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"validate", "--config", cfgPath})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "ok: 8 students in 4 categories, 2 sessions")
}

func TestValidate_MissingConfig(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"validate", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_CategoryOverCapacity(t *testing.T) {
	dir := t.TempDir()
	// Five members of one category can never fit under cap 2 across 2
	// groups.
	roster := "name,category\nA,11F\nB,11F\nC,11F\nD,11F\nE,11F\nF,17D\nG,17D\nH,17D\n"
	rosterPath := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(roster), 0o644))

	yaml := fmt.Sprintf("roster: %s\ngroups: 2\nsessions:\n  - id: \"601\"\nsolver:\n  email: a@b.io\n", rosterPath)
	cfgPath := filepath.Join(dir, "cohort.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"validate", "--config", cfgPath})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunBatch_SolvesAndStores(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixtures(t, dir, "601", "600")
	dbPath := filepath.Join(dir, "runs.db")

	cmd, out := testCommand(t)
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Config:      cfgPath,
		Database:    dbPath,
		Gateway:     testutil.ExactGateway{},
	}
	require.NoError(t, runBatch(opts, cmd))

	assert.Contains(t, out.String(), "session 601: optimal")
	assert.Contains(t, out.String(), "session 600: optimal")
	assert.Contains(t, out.String(), "group 1:")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "batch", runs[0].Mode)

	recs, err := st.Assignments(cmd.Context(), runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, recs, 16)
}

func TestRunBatch_HaltStoresCompletedSessions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixtures(t, dir, "601", "600", "627")
	dbPath := filepath.Join(dir, "runs.db")

	cmd, _ := testCommand(t)
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Config:      cfgPath,
		Database:    dbPath,
		Gateway:     &testutil.FailAfterGateway{Succeed: 2, Status: solver.StatusFailure},
	}
	err := runBatch(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context())
	require.NoError(t, err)
	require.Len(t, runs, 1)

	recs, err := st.Assignments(cmd.Context(), runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, recs, 16, "the two completed sessions are kept")
}

func TestRunNext_FromHistoryCSV(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixtures(t, dir, "601", "667")

	history := "session,group,name\n" +
		"601,1,Adams\n601,1,Baker\n601,1,Clark\n601,1,Diaz\n" +
		"601,2,Evans\n601,2,Frost\n601,2,Grant\n601,2,Hayes\n"
	historyPath := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(historyPath, []byte(history), 0o644))

	cmd, out := testCommand(t)
	opts := &NextOptions{
		RootOptions: &RootOptions{Format: "text"},
		Config:      cfgPath,
		History:     historyPath,
		Gateway:     testutil.ExactGateway{},
	}
	require.NoError(t, runNext(opts, "667", cmd))
	assert.Contains(t, out.String(), "session 667: optimal")
}

func TestRunNext_FromStoredRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixtures(t, dir, "601", "667")
	dbPath := filepath.Join(dir, "runs.db")

	cmd, _ := testCommand(t)
	batchOpts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Config:      cfgPath,
		Database:    dbPath,
		Gateway:     testutil.ExactGateway{},
	}
	require.NoError(t, runBatch(batchOpts, cmd))

	nextCmd, out := testCommand(t)
	opts := &NextOptions{
		RootOptions: &RootOptions{Format: "text"},
		Config:      cfgPath,
		Database:    dbPath,
		FromRun:     "latest",
		Gateway:     testutil.ExactGateway{},
	}
	require.NoError(t, runNext(opts, "627", nextCmd))
	assert.Contains(t, out.String(), "session 627: optimal")
}

func TestRunNext_FlagValidation(t *testing.T) {
	cmd, _ := testCommand(t)

	err := runNext(&NextOptions{RootOptions: &RootOptions{Format: "text"}}, "601", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	err = runNext(&NextOptions{
		RootOptions: &RootOptions{Format: "text"},
		History:     "a.csv",
		FromRun:     "latest",
	}, "601", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	err = runNext(&NextOptions{
		RootOptions: &RootOptions{Format: "text"},
		FromRun:     "latest",
	}, "601", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
