package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/rnsgit/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateGlobal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadFrom_NoFilesGivesDefaults(t *testing.T) {
	isolateGlobal(t)

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "git", cfg.Git.Binary)
	assert.Equal(t, ArchiverAuto, cfg.Archiver.Kind)
	assert.Equal(t, "7z", cfg.Archiver.Binary)
	assert.Equal(t, "New", cfg.Commit.InitialMessage)

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", d.String())
}

func TestLoadFrom_ProjectOverridesGlobal(t *testing.T) {
	global := isolateGlobal(t)
	require.NoError(t, os.MkdirAll(filepath.Join(global, "rnsgit"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(global, "rnsgit", "rnsgit.yml"), []byte(`
archiver:
  kind: 7z
  binary: /opt/7z/7zz
pack:
  exclude: ["*.bak"]
`), 0644))

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "rnsgit.yml"), []byte(`
archiver:
  kind: zip
timeout: 30s
pack:
  exclude: ["Backups"]
logging:
  level: debug
`), 0644))

	cfg, err := LoadFrom(base)
	require.NoError(t, err)

	assert.Equal(t, ArchiverZip, cfg.Archiver.Kind)
	assert.Equal(t, "/opt/7z/7zz", cfg.Archiver.Binary, "unset project field keeps global value")
	assert.Equal(t, "30s", cfg.Timeout)
	assert.Equal(t, []string{"*.bak", "Backups"}, cfg.Pack.Exclude)
	assert.Contains(t, cfg.Extensions, "logging")
}

func TestLoadFrom_TOML(t *testing.T) {
	isolateGlobal(t)
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "rnsgit.toml"), []byte(`
timeout = "45s"

[git]
binary = "/usr/local/bin/git"

[pack]
exclude = ["*.tmp"]

[logging]
level = "warn"
`), 0644))

	cfg, err := LoadFrom(base)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/git", cfg.Git.Binary)
	assert.Equal(t, "45s", cfg.Timeout)
	assert.Equal(t, []string{"*.tmp"}, cfg.Pack.Exclude)

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "warn", logCfg.Level)
}

func TestLoadFromBytes_EnvExpansion(t *testing.T) {
	t.Setenv("RNSGIT_TEST_ARCHIVER", "/tmp/7zz")

	cfg, err := LoadFromBytes([]byte(`
archiver:
  binary: ${RNSGIT_TEST_ARCHIVER}
git:
  binary: ${RNSGIT_TEST_UNSET:-git2}
`), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/7zz", cfg.Archiver.Binary)
	assert.Equal(t, "git2", cfg.Git.Binary)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"defaults", ``, false},
		{"bad archiver kind", "archiver:\n  kind: rar\n", true},
		{"bad timeout", "timeout: soon\n", true},
		{"bad exclude pattern", "pack:\n  exclude: [\"[\"]\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml), "yaml")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnmarshalExtension_Missing(t *testing.T) {
	cfg := Default()
	target := struct {
		Level string `yaml:"level"`
	}{Level: "keep"}

	require.NoError(t, cfg.UnmarshalExtension("logging", &target))
	assert.Equal(t, "keep", target.Level)
}
