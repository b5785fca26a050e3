package testutil

import (
	"archive/zip"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/grovetools/rnsgit/command"
	"github.com/stretchr/testify/require"
)

// GitEnv pins the author identity and default branch name so commits work
// on machines without a global git config.
func GitEnv() []string {
	return []string{
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_COUNT=1",
		"GIT_CONFIG_KEY_0=init.defaultBranch",
		"GIT_CONFIG_VALUE_0=main",
	}
}

// RequireGit skips the test if git is not available
func RequireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// Runner returns an ExecRunner carrying GitEnv.
func Runner(t *testing.T) *command.ExecRunner {
	t.Helper()
	return command.NewExecRunner(nil).WithEnv(GitEnv()...)
}

// RunGitCommand runs a git command in the given directory and returns its
// combined output.
func RunGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), GitEnv()...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to run git %v: %v\n%s", args, err, output)
	}
	return string(output)
}

// InitGitRepo initializes a repository on branch main with one commit
func InitGitRepo(t *testing.T, dir string) {
	t.Helper()

	RunGitCommand(t, dir, "init")
	CreateCommit(t, dir, "Song.xml", "<RenoiseSong/>\n")

	// Ensure we have a main branch on gits that ignore init.defaultBranch
	RunGitCommand(t, dir, "branch", "-M", "main")
}

// CreateBranch creates and checks out a new git branch
func CreateBranch(t *testing.T, dir, branch string) {
	t.Helper()
	RunGitCommand(t, dir, "checkout", "-b", branch)
}

// CreateCommit creates a file and commits it
func CreateCommit(t *testing.T, dir, filename, content string) {
	t.Helper()

	WriteTree(t, dir, map[string]string{filename: content})
	RunGitCommand(t, dir, "add", filename)
	RunGitCommand(t, dir, "commit", "-m", "Add "+filename)
}

// WriteTree creates files (slash-separated relative paths) under root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// WriteArchive writes a zip archive at path holding files.
func WriteArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// ReadArchive returns the regular-file entries of a zip archive and their content.
func ReadArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		var b strings.Builder
		_, err = io.Copy(&b, rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = b.String()
	}
	return out
}

// ReadTree returns every regular file under root outside hidden
// directories, keyed by slash-separated relative path.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}
