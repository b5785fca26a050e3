package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/rnsgit/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePinned_Format(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WritePinned(dir, "song.xrns"))

	data, err := os.ReadFile(filepath.Join(dir, ".rnsgit"))
	require.NoError(t, err)
	assert.Equal(t, "xrns: \"song.xrns\"\n", string(data))
}

func TestReadPinned(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     string
		wantCode errors.ErrorCode
	}{
		{"quoted value", `xrns: "song.xrns"`, "song.xrns", ""},
		{"legacy key", `:xrns: "my-colossal-song.xrns"`, "my-colossal-song.xrns", ""},
		{"unquoted value", "xrns: song.xrns\n", "song.xrns", ""},
		{"missing key", "other: value\n", "", errors.ErrCodeConfigInvalid},
		{"empty value", `xrns: ""`, "", errors.ErrCodeConfigInvalid},
		{"not yaml", "xrns: [unterminated", "", errors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, PinFileName), []byte(tt.content), 0644))

			got, err := ReadPinned(dir)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadPinned_Missing(t *testing.T) {
	_, err := ReadPinned(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestPinRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WritePinned(dir, "first.xrns"))
	require.NoError(t, WritePinned(dir, "second song.xrns"))

	got, err := ReadPinned(dir)
	require.NoError(t, err)
	assert.Equal(t, "second song.xrns", got)
}
