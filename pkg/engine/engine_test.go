package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/rnsgit/archive"
	"github.com/grovetools/rnsgit/git"
	"github.com/grovetools/rnsgit/pkg/project"
	"github.com/grovetools/rnsgit/testutil"
	"github.com/stretchr/testify/require"
)

var songFiles = map[string]string{
	"Song.xml":                 "<RenoiseSong doc_version=\"63\"/>\n",
	"SampleData/Instr0/a.flac": "fLaC-kick",
	"Instruments/lead.xml":     "<Instrument/>\n",
}

// fixture is a base directory holding one song archive.
type fixture struct {
	base    string
	engine  *Engine
	project *project.Project
	repo    *git.CLIRepository
}

func newFixture(t *testing.T, archiver archive.Archiver) *fixture {
	t.Helper()
	testutil.RequireGit(t)

	base := t.TempDir()
	testutil.WriteArchive(t, filepath.Join(base, "song.xrns"), songFiles)

	if archiver == nil {
		archiver = archive.NewZip()
	}
	repo := git.NewCLIRepository(testutil.Runner(t), "")
	p, err := project.FromArchive(base, "song.xrns")
	require.NoError(t, err)

	return &fixture{
		base:    base,
		engine:  New(repo, archiver, Options{}),
		project: p,
		repo:    repo,
	}
}

// materialized is newFixture followed by a first Materialize.
func materialized(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, nil)
	_, err := f.engine.Materialize(context.Background(), f.project, InitMessage)
	require.NoError(t, err)
	return f
}

func (f *fixture) workFile(name string) string {
	return filepath.Join(f.project.WorkDir(), filepath.FromSlash(name))
}

func (f *fixture) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(f.workFile(name)), 0755))
	require.NoError(t, os.WriteFile(f.workFile(name), []byte(content), 0644))
}

// hollowArchiver reports success from Create without writing anything.
type hollowArchiver struct {
	*archive.Zip
}

func (hollowArchiver) Create(context.Context, string, string, []string) error {
	return nil
}

// lossyArchiver drops the last file while building.
type lossyArchiver struct {
	*archive.Zip
}

func (l lossyArchiver) Create(ctx context.Context, dir, name string, files []string) error {
	return l.Zip.Create(ctx, dir, name, files[:len(files)-1])
}
