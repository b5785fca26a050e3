package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/rnsgit/errors"
)

// MetadataDir is the marker whose presence makes a folder a repository.
const MetadataDir = ".git"

// Branch is one line of `git branch` output.
type Branch struct {
	Name    string
	Current bool
}

// FolderExists reports whether dir exists as a directory
func (r *CLIRepository) FolderExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// IsRepository reports whether dir exists and holds version-control
// metadata. A missing folder is logged, not an error.
func (r *CLIRepository) IsRepository(dir string) bool {
	if !r.FolderExists(dir) {
		r.logger.WithField("dir", dir).Warn("No existing folder")
		return false
	}
	_, err := os.Stat(filepath.Join(dir, MetadataDir))
	return err == nil
}

// CurrentBranch returns the branch marked current in `git branch` output
func (r *CLIRepository) CurrentBranch(ctx context.Context, dir string) (string, error) {
	branches, output, err := r.branches(ctx, dir)
	if err != nil {
		return "", err
	}
	for _, b := range branches {
		if b.Current {
			return b.Name, nil
		}
	}
	return "", errors.ParseError("current branch", output).WithDetail("dir", dir)
}

// BranchNames lists local branches in git's order, optionally without the current one
func (r *CLIRepository) BranchNames(ctx context.Context, dir string, excludingCurrent bool) ([]string, error) {
	branches, _, err := r.branches(ctx, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(branches))
	for _, b := range branches {
		if excludingCurrent && b.Current {
			continue
		}
		names = append(names, b.Name)
	}
	return names, nil
}

func (r *CLIRepository) branches(ctx context.Context, dir string) ([]Branch, string, error) {
	res, err := r.ListBranches(ctx, dir, false)
	if err != nil {
		return nil, res.Output, err
	}
	if !res.Success() {
		return nil, res.Output, errors.New(errors.ErrCodeCommandFailed, "failed to list branches").
			WithDetail("dir", dir).
			WithDetail("output", res.Output)
	}
	return ParseBranchList(res.Output), res.Output, nil
}

// ParseBranchList parses `git branch` output. The current branch carries a
// leading "*"; worktree-checked-out branches carry "+".
func ParseBranchList(output string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b := Branch{}
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(trimmed, "*"):
			b.Current = true
			trimmed = trimmed[1:]
		case strings.HasPrefix(trimmed, "+"):
			trimmed = trimmed[1:]
		}
		b.Name = strings.TrimSpace(trimmed)
		if b.Name == "" {
			continue
		}
		branches = append(branches, b)
	}
	return branches
}
