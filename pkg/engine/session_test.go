package engine

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/grovetools/rnsgit/config"
	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) (*Session, *fixture) {
	t.Helper()
	f := newFixture(t, nil)
	return NewSession(f.engine, f.base), f
}

func TestSession_InitScenario(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()

	var states []State
	s.OnTransition(func(_, to State) { states = append(states, to) })

	result, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)
	assert.True(t, result.Initialized)

	assert.DirExists(t, filepath.Join(f.base, "song", ".git"))
	assert.NoFileExists(t, filepath.Join(f.base, "song", "song.xrns"))
	assert.Equal(t, []State{StateResolving, StateMaterializing, StateIdle}, states)
	assert.Equal(t, StateIdle, s.State())
	assert.NoFileExists(t, f.project.LockPath())
}

func TestSession_CheckoutScenario(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()
	_, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)
	withBranch(t, f, "faster-version", "<RenoiseSong bpm=\"180\"/>\n")

	result, err := s.Checkout(ctx, "song.xrns", "faster-version", "")
	require.NoError(t, err)
	assert.Equal(t, "faster-version", currentBranch(t, f))
	assert.Equal(t, filepath.Join(f.base, "song.xrns"), result.Path)
	assert.Equal(t, "<RenoiseSong bpm=\"180\"/>\n", testutil.ReadArchive(t, result.Path)["Song.xml"])
}

func TestSession_ResolvesPinnedReference(t *testing.T) {
	s, f := newSession(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.base, ".rnsgit"), []byte("xrns: \"song.xrns\"\n"), 0644))

	p, err := s.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "song", p.Name)
	assert.Equal(t, "song.xrns", p.Archive)
}

func TestSession_NoArchive(t *testing.T) {
	s, _ := newSession(t)

	var states []State
	s.OnTransition(func(_, to State) { states = append(states, to) })

	_, err := s.Pack(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNoArchive))
	assert.Equal(t, []State{StateResolving, StateIdle}, states)
}

func TestSession_Pin(t *testing.T) {
	s, f := newSession(t)

	p, err := s.Pin("song.xrns")
	require.NoError(t, err)
	assert.Equal(t, "song", p.Name)

	pinned, err := config.ReadPinned(f.base)
	require.NoError(t, err)
	assert.Equal(t, "song.xrns", pinned)

	resolved, err := s.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, p.WorkDir(), resolved.WorkDir())
}

func TestSession_HoldsLockWhileWorking(t *testing.T) {
	s, f := newSession(t)

	var lockedDuringRun bool
	s.OnTransition(func(_, to State) {
		if to == StateMaterializing {
			_, err := os.Stat(f.project.LockPath())
			lockedDuringRun = err == nil
		}
	})

	_, err := s.Init(context.Background(), "song.xrns", "")
	require.NoError(t, err)
	assert.True(t, lockedDuringRun)
	assert.NoFileExists(t, f.project.LockPath())
}

func TestSession_RefusesLockedProject(t *testing.T) {
	s, f := newSession(t)
	require.NoError(t, os.WriteFile(f.project.LockPath(), []byte(strconv.Itoa(os.Getpid())), 0644))

	_, err := s.Init(context.Background(), "song.xrns", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLocked))
	assert.NoDirExists(t, f.project.WorkDir())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_CommitDefaultMessage(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()
	_, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)

	changed := map[string]string{}
	for k, v := range songFiles {
		changed[k] = v
	}
	changed["Song.xml"] = "<RenoiseSong saved/>\n"
	testutil.WriteArchive(t, f.project.ArchivePath(), changed)

	_, err = s.Commit(ctx, "song.xrns", "")
	require.NoError(t, err)
	log := testutil.RunGitCommand(t, f.project.WorkDir(), "log", "-1", "--format=%s")
	assert.Equal(t, "Updated from song.xrns\n", log)
}

func TestSession_UnzipDefaultMessage(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()
	_, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)
	log := testutil.RunGitCommand(t, f.project.WorkDir(), "log", "-1", "--format=%s")
	assert.Equal(t, InitMessage+"\n", log)

	testutil.WriteArchive(t, f.project.ArchivePath(), map[string]string{
		"Song.xml": "<RenoiseSong unzipped/>\n",
	})
	_, err = s.Unzip(ctx, "song.xrns")
	require.NoError(t, err)
	log = testutil.RunGitCommand(t, f.project.WorkDir(), "log", "-1", "--format=%s")
	assert.Equal(t, UnzipMessage+"\n", log)
}

func TestSession_GitPassthrough(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	_, err := s.Status(ctx, "song.xrns")
	assert.True(t, errors.Is(err, errors.ErrCodeFolderMissing))

	_, err = s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)

	res, err := s.Git(ctx, "song.xrns", "log", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "New\n", res.Output)

	res, err = s.Branches(ctx, "song.xrns")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "* main")
}

func TestSession_Verify(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()
	_, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)

	v, err := s.Verify(ctx, "song.xrns")
	require.NoError(t, err)
	assert.True(t, v.InSync())

	f.write(t, "Song.xml", "<RenoiseSong edited/>\n")
	f.write(t, "SampleData/new.wav", "RIFF")
	v, err = s.Verify(ctx, "song.xrns")
	require.NoError(t, err)
	assert.False(t, v.InSync())
	assert.Equal(t, []string{"SampleData/new.wav"}, v.Missing)
	assert.NotEqual(t, v.ArchiveDigest, v.TreeDigest)

	_, err = s.Pack(ctx, "song.xrns")
	require.NoError(t, err)
	v, err = s.Verify(ctx, "song.xrns")
	require.NoError(t, err)
	assert.True(t, v.InSync())
}

func TestSession_RecoverAndMerge(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()
	_, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)

	require.NoError(t, os.Rename(f.project.ArchivePath(), f.project.StashPath("song.xrns")))
	rec, err := s.Recover("song.xrns")
	require.NoError(t, err)
	assert.Equal(t, StashRestored, rec.Final)

	withBranch(t, f, "bridge", "<RenoiseSong bridge/>\n")
	var states []State
	s.OnTransition(func(_, to State) { states = append(states, to) })
	_, err = s.Merge(ctx, "song.xrns", "bridge")
	require.NoError(t, err)
	assert.Equal(t, []State{StateResolving, StateMerging, StateIdle}, states)
}

func TestSession_Summary(t *testing.T) {
	s, f := newSession(t)
	ctx := context.Background()
	_, err := s.Init(ctx, "song.xrns", "")
	require.NoError(t, err)

	info, err := s.Summary(ctx, "song.xrns")
	require.NoError(t, err)
	assert.Equal(t, "main", info.Branch)
	assert.False(t, info.IsDirty)

	f.write(t, "Song.xml", "<RenoiseSong dirty/>\n")
	info, err = s.Summary(ctx, "song.xrns")
	require.NoError(t, err)
	assert.True(t, info.IsDirty)
	assert.Equal(t, 1, info.ModifiedCount)
}
