package engine

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBranch adds branch holding a changed Song.xml and returns to main.
func withBranch(t *testing.T, f *fixture, branch, song string) {
	t.Helper()
	dir := f.project.WorkDir()
	testutil.RunGitCommand(t, dir, "checkout", "-b", branch)
	f.write(t, "Song.xml", song)
	testutil.RunGitCommand(t, dir, "commit", "-am", "Change on "+branch)
	testutil.RunGitCommand(t, dir, "checkout", "main")
}

func currentBranch(t *testing.T, f *fixture) string {
	t.Helper()
	name, err := f.repo.CurrentBranch(context.Background(), f.project.WorkDir())
	require.NoError(t, err)
	return name
}

func TestCheckoutBranch_Idempotent(t *testing.T) {
	f := materialized(t)
	ctx := context.Background()
	testutil.RunGitCommand(t, f.project.WorkDir(), "branch", "faster-version")

	ok, err := f.engine.CheckoutBranch(ctx, f.project, "faster-version")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.engine.CheckoutBranch(ctx, f.project, "faster-version")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "faster-version", currentBranch(t, f))
}

func TestCheckoutBranch_NoRepository(t *testing.T) {
	f := newFixture(t, nil)

	ok, err := f.engine.CheckoutBranch(context.Background(), f.project, "main")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckoutBranch_UnknownBranchIsFatal(t *testing.T) {
	f := materialized(t)

	ok, err := f.engine.CheckoutBranch(context.Background(), f.project, "nope")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCheckoutFailed))
}

func TestCreateBranch(t *testing.T) {
	f := materialized(t)
	ctx := context.Background()

	ok, err := f.engine.CreateBranch(ctx, f.project, "verse")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "verse", currentBranch(t, f))

	testutil.RunGitCommand(t, f.project.WorkDir(), "checkout", "main")
	ok, err = f.engine.CreateBranch(ctx, f.project, "verse")
	require.NoError(t, err, "an existing branch is checked out")
	assert.True(t, ok)
	assert.Equal(t, "verse", currentBranch(t, f))
}

func TestCreateBranch_NamesGitAccepts(t *testing.T) {
	f := materialized(t)
	ctx := context.Background()

	for _, name := range []string{"mélodie", "fix#2", "v1@home", "take'2"} {
		t.Run(name, func(t *testing.T) {
			ok, err := f.engine.CreateBranch(ctx, f.project, name)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, name, currentBranch(t, f))

			ok, err = f.engine.CheckoutBranch(ctx, f.project, "main")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = f.engine.CheckoutBranch(ctx, f.project, name)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, name, currentBranch(t, f))
		})
	}
}

func TestCreateBranch_RejectsOptionLikeName(t *testing.T) {
	f := materialized(t)

	_, err := f.engine.CreateBranch(context.Background(), f.project, "-D")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestCreateBranch_Preconditions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.engine.CreateBranch(ctx, f.project, "verse")
	assert.True(t, errors.Is(err, errors.ErrCodeFolderMissing))

	testutil.WriteTree(t, f.project.WorkDir(), map[string]string{"Song.xml": "x"})
	_, err = f.engine.CreateBranch(ctx, f.project, "verse")
	assert.True(t, errors.Is(err, errors.ErrCodeNotRepository))
}

func TestFromBranch_PacksCheckedOutContent(t *testing.T) {
	f := materialized(t)
	withBranch(t, f, "faster-version", "<RenoiseSong bpm=\"180\"/>\n")

	result, err := f.engine.FromBranch(context.Background(), f.project, "faster-version", "")
	require.NoError(t, err)

	assert.Equal(t, "faster-version", currentBranch(t, f))
	assert.Equal(t, f.project.ArchivePath(), result.Path)
	packed := testutil.ReadArchive(t, f.project.ArchivePath())
	assert.Equal(t, "<RenoiseSong bpm=\"180\"/>\n", packed["Song.xml"])
}

func TestFromBranch_NameModifier(t *testing.T) {
	f := materialized(t)
	withBranch(t, f, "faster-version", "<RenoiseSong bpm=\"180\"/>\n")

	result, err := f.engine.FromBranch(context.Background(), f.project, "faster-version", "-fast")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.base, "song-fast.xrns"), result.Path)

	original := testutil.ReadArchive(t, f.project.ArchivePath())
	assert.Equal(t, songFiles["Song.xml"], original["Song.xml"], "the main archive is untouched")
}

func TestFromBranch_CheckoutFailureSkipsPack(t *testing.T) {
	f := materialized(t)

	_, err := f.engine.FromBranch(context.Background(), f.project, "missing", "")
	assert.True(t, errors.Is(err, errors.ErrCodeCheckoutFailed))
	assert.NoFileExists(t, f.project.StashPath(f.project.Archive))
}

func TestMerge_PacksResult(t *testing.T) {
	f := materialized(t)
	withBranch(t, f, "bridge", "<RenoiseSong bridge/>\n")

	result, err := f.engine.Merge(context.Background(), f.project, "bridge")
	require.NoError(t, err)
	assert.Equal(t, "main", currentBranch(t, f))
	assert.Equal(t, "<RenoiseSong bridge/>\n", testutil.ReadArchive(t, result.Path)["Song.xml"])
}

func TestMerge_ConflictLeavesArchive(t *testing.T) {
	f := materialized(t)
	withBranch(t, f, "alt", "<RenoiseSong alt/>\n")
	f.write(t, "Song.xml", "<RenoiseSong main/>\n")
	testutil.RunGitCommand(t, f.project.WorkDir(), "commit", "-am", "Change on main")

	_, err := f.engine.Merge(context.Background(), f.project, "alt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMergeFailed))
	assert.Equal(t, songFiles["Song.xml"], testutil.ReadArchive(t, f.project.ArchivePath())["Song.xml"])
	assert.NoFileExists(t, f.project.StashPath(f.project.Archive))
}

func TestInteractiveMerge(t *testing.T) {
	f := materialized(t)
	withBranch(t, f, "bridge", "<RenoiseSong bridge/>\n")
	withBranch(t, f, "chorus", "<RenoiseSong chorus/>\n")

	var buf bytes.Buffer
	out := logging.NewPrettyLogger().WithWriter(&buf)

	result, err := f.engine.InteractiveMerge(context.Background(), f.project, strings.NewReader("1\n"), out)
	require.NoError(t, err)
	require.NotNil(t, result)

	printed := buf.String()
	assert.Contains(t, printed, "* main")
	assert.Contains(t, printed, "1) bridge")
	assert.Contains(t, printed, "2) chorus")
	assert.Equal(t, "<RenoiseSong bridge/>\n", testutil.ReadArchive(t, f.project.ArchivePath())["Song.xml"])
}

func TestInteractiveMerge_InvalidInputCancels(t *testing.T) {
	for _, input := range []string{"", "abc\n", "0\n", "7\n", "-1\n"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			f := materialized(t)
			withBranch(t, f, "bridge", "<RenoiseSong bridge/>\n")
			head := testutil.RunGitCommand(t, f.project.WorkDir(), "rev-parse", "HEAD")

			var buf bytes.Buffer
			out := logging.NewPrettyLogger().WithWriter(&buf)
			result, err := f.engine.InteractiveMerge(context.Background(), f.project, strings.NewReader(input), out)
			require.NoError(t, err)
			assert.Nil(t, result)
			assert.Contains(t, buf.String(), "Cancelled")
			assert.Equal(t, head, testutil.RunGitCommand(t, f.project.WorkDir(), "rev-parse", "HEAD"))
			assert.Equal(t, songFiles["Song.xml"], testutil.ReadArchive(t, f.project.ArchivePath())["Song.xml"])
		})
	}
}
