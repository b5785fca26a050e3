package fileset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/rnsgit/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerate_SkipsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"a.txt":          "a",
		".git/objects/x": "x",
		".hidden":        "h",
	})

	files, err := Enumerate(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestEnumerate_NestedAndSorted(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Song.xml":                  "s",
		"SampleData/Instr1/b.flac":  "b",
		"SampleData/Instr0/a.wav":   "a",
		"SampleData/.DS_Store":      "junk",
		"SampleData/.cache/tmp.bin": "tmp",
	})

	files, err := Enumerate(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SampleData/Instr0/a.wav",
		"SampleData/Instr1/b.flac",
		"Song.xml",
	}, files)
}

func TestEnumerate_ExcludeAndSkip(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Song.xml":         "s",
		"song.xrns":        "stale",
		"Backups/old.xml":  "b",
		"SampleData/a.wav": "a",
		"SampleData/a.asd": "analysis",
	})

	files, err := Enumerate(root, Options{
		Exclude: []string{"Backups", "**/*.asd"},
		Skip:    []string{"song.xrns"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SampleData/a.wav", "Song.xml"}, files)
}

func TestEnumerate_InvalidPattern(t *testing.T) {
	_, err := Enumerate(t.TempDir(), Options{Exclude: []string{"[a-"}})
	assert.Error(t, err)
}

func TestEnumerate_MissingRoot(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	tree := map[string]string{"Song.xml": "s", "SampleData/a.wav": "a"}
	testutil.WriteTree(t, a, tree)
	testutil.WriteTree(t, b, tree)

	da, err := Digest(a, []string{"Song.xml", "SampleData/a.wav"})
	require.NoError(t, err)
	db, err := Digest(b, []string{"SampleData/a.wav", "Song.xml"})
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 32)

	require.NoError(t, os.WriteFile(filepath.Join(b, "Song.xml"), []byte("changed"), 0644))
	dc, err := Digest(b, []string{"Song.xml", "SampleData/a.wav"})
	require.NoError(t, err)
	assert.NotEqual(t, da, dc)
}

func TestDiff(t *testing.T) {
	missing, extra := Diff([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	assert.Equal(t, []string{"a"}, missing)
	assert.Equal(t, []string{"d"}, extra)

	missing, extra = Diff([]string{"a", "b"}, []string{"b", "a"})
	assert.Empty(t, missing)
	assert.Empty(t, extra)
}
