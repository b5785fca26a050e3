package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/rnsgit/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*CLIRepository, string) {
	t.Helper()
	testutil.RequireGit(t)

	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)
	return NewCLIRepository(testutil.Runner(t), ""), dir
}

func TestProbe(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	assert.True(t, repo.FolderExists(dir))
	assert.True(t, repo.IsRepository(dir))

	plain := t.TempDir()
	assert.True(t, repo.FolderExists(plain))
	assert.False(t, repo.IsRepository(plain))

	missing := filepath.Join(plain, "missing")
	assert.False(t, repo.FolderExists(missing))
	assert.False(t, repo.IsRepository(missing))

	branch, err := repo.CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestBranchNames(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	outcome, _, err := repo.CreateBranch(ctx, dir, "chorus")
	require.NoError(t, err)
	assert.Equal(t, BranchCreated, outcome)

	outcome, _, err = repo.CreateBranch(ctx, dir, "chorus")
	require.NoError(t, err)
	assert.Equal(t, BranchAlreadyExists, outcome)

	all, err := repo.BranchNames(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"chorus", "main"}, all)

	others, err := repo.BranchNames(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"chorus"}, others)
}

func TestCheckout(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	outcome, _, err := repo.Checkout(ctx, dir, "main")
	require.NoError(t, err)
	assert.Equal(t, CheckoutAlreadyOn, outcome)

	testutil.RunGitCommand(t, dir, "branch", "verse")
	outcome, _, err = repo.Checkout(ctx, dir, "verse")
	require.NoError(t, err)
	assert.Equal(t, CheckoutSwitched, outcome)

	branch, err := repo.CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "verse", branch)

	outcome, res, err := repo.Checkout(ctx, dir, "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, CheckoutFailed, outcome)
	assert.NotEmpty(t, res.Output)
}

func TestCommitAll(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	outcome, _, err := repo.CommitAll(ctx, dir, "nothing")
	require.NoError(t, err)
	assert.Equal(t, CommitNothingToCommit, outcome)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Song.xml"), []byte("<RenoiseSong v=\"2\"/>\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0644))
	_, err = repo.AddAll(ctx, dir)
	require.NoError(t, err)

	before, err := repo.HeadCommit(ctx, dir)
	require.NoError(t, err)

	outcome, _, err = repo.CommitAll(ctx, dir, "Updated")
	require.NoError(t, err)
	assert.Equal(t, CommitRecorded, outcome)

	after, err := repo.HeadCommit(ctx, dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	status, err := repo.Summary(ctx, dir)
	require.NoError(t, err)
	assert.False(t, status.IsDirty)
}

func TestMerge(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	testutil.CreateBranch(t, dir, "bridge")
	testutil.CreateCommit(t, dir, "bridge.txt", "bridge")
	_, _, err := repo.Checkout(ctx, dir, "main")
	require.NoError(t, err)

	outcome, _, err := repo.Merge(ctx, dir, "bridge")
	require.NoError(t, err)
	assert.Equal(t, MergeApplied, outcome)
	assert.FileExists(t, filepath.Join(dir, "bridge.txt"))

	outcome, _, err = repo.Merge(ctx, dir, "bridge")
	require.NoError(t, err)
	assert.Equal(t, MergeUpToDate, outcome)
}

func TestMerge_Conflict(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	testutil.CreateBranch(t, dir, "alt")
	testutil.CreateCommit(t, dir, "Song.xml", "<RenoiseSong alt/>\n")
	testutil.RunGitCommand(t, dir, "checkout", "main")
	testutil.CreateCommit(t, dir, "Song.xml", "<RenoiseSong main/>\n")

	outcome, res, err := repo.Merge(ctx, dir, "alt")
	require.NoError(t, err)
	assert.Equal(t, MergeConflict, outcome)
	assert.Contains(t, res.Output, "CONFLICT")
}

func TestInitAndExec(t *testing.T) {
	testutil.RequireGit(t)
	repo := NewCLIRepository(testutil.Runner(t), "")
	ctx := context.Background()
	dir := t.TempDir()

	res, err := repo.Init(ctx, dir)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.True(t, repo.IsRepository(dir))

	res, err = repo.Exec(ctx, dir, "rev-parse", "--is-inside-work-tree")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "true")
}
