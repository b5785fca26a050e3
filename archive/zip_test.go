package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZip_CreateListExtract(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	files := map[string]string{
		"Song.xml":                "<RenoiseSong/>",
		"SampleData/Instr0/a.wav": "RIFF....",
		"Instruments/lead.xml":    "<Instrument/>",
	}
	testutil.WriteTree(t, src, files)

	z := NewZip()
	names := []string{"Instruments/lead.xml", "SampleData/Instr0/a.wav", "Song.xml"}
	require.NoError(t, z.Create(ctx, src, "song.xrns", names))

	listed, err := z.List(ctx, filepath.Join(src, "song.xrns"))
	require.NoError(t, err)
	assert.Equal(t, names, listed)

	dest := t.TempDir()
	require.NoError(t, z.Extract(ctx, filepath.Join(src, "song.xrns"), dest))
	assert.Equal(t, files, testutil.ReadTree(t, dest))
}

func TestZip_ExtractOverwrites(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(t.TempDir(), "song.xrns")
	testutil.WriteArchive(t, archivePath, map[string]string{"Song.xml": "new"})
	testutil.WriteTree(t, dir, map[string]string{"Song.xml": "old contents that are longer"})

	require.NoError(t, NewZip().Extract(context.Background(), archivePath, dir))
	assert.Equal(t, map[string]string{"Song.xml": "new"}, testutil.ReadTree(t, dir))
}

// writeModeArchive writes a single-entry archive whose entry carries mode.
func writeModeArchive(t *testing.T, archivePath, name, content string, mode os.FileMode) {
	t.Helper()
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.SetMode(mode)
	w, err := zw.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestZip_ExtractOverwritesReadOnlyFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archivePath := filepath.Join(t.TempDir(), "song.xrns")
	z := NewZip()

	writeModeArchive(t, archivePath, "Song.xml", "first", 0444)
	require.NoError(t, z.Extract(ctx, archivePath, dir))
	info, err := os.Stat(filepath.Join(dir, "Song.xml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())

	writeModeArchive(t, archivePath, "Song.xml", "second", 0444)
	require.NoError(t, z.Extract(ctx, archivePath, dir))
	assert.Equal(t, map[string]string{"Song.xml": "second"}, testutil.ReadTree(t, dir))
}

func TestZip_ExtractRejectsEscapingEntries(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "evil.xrns")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../outside.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	err = NewZip().Extract(context.Background(), archivePath, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeExtractFailed))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "outside.txt"))
}

func TestZip_ExtractCorruptArchive(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "broken.xrns")
	require.NoError(t, os.WriteFile(archivePath, []byte("not a zip"), 0644))

	err := NewZip().Extract(context.Background(), archivePath, t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrCodeExtractFailed))
}

func TestZip_CreateMissingFile(t *testing.T) {
	dir := t.TempDir()
	err := NewZip().Create(context.Background(), dir, "song.xrns", []string{"missing.xml"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePackFailed))
}

func TestEntryPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Song.xml", "Song.xml", false},
		{"a/./b.xml", "a/b.xml", false},
		{`Samples\kick.wav`, "Samples/kick.wav", false},
		{"../x", "", true},
		{"/etc/passwd", "", true},
		{"a/../../x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := entryPath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
