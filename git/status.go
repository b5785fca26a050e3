package git

import (
	"context"
	"strconv"
	"strings"

	"github.com/grovetools/rnsgit/errors"
)

// StatusInfo contains summarized status information for a working folder
type StatusInfo struct {
	// Branch is the current branch name
	Branch string `json:"branch"`

	// AheadCount is the number of commits ahead of the upstream branch
	AheadCount int `json:"ahead_count"`

	// BehindCount is the number of commits behind the upstream branch
	BehindCount int `json:"behind_count"`

	// ModifiedCount is the number of modified files
	ModifiedCount int `json:"modified_count"`

	// UntrackedCount is the number of untracked files
	UntrackedCount int `json:"untracked_count"`

	// StagedCount is the number of staged files
	StagedCount int `json:"staged_count"`

	// IsDirty indicates if there are any uncommitted changes
	IsDirty bool `json:"is_dirty"`

	// HasUpstream indicates if the branch has an upstream tracking branch
	HasUpstream bool `json:"has_upstream"`
}

// Summary returns status counts for the repository in dir
func (r *CLIRepository) Summary(ctx context.Context, dir string) (*StatusInfo, error) {
	if !r.FolderExists(dir) {
		return nil, errors.FolderMissing(dir)
	}
	res, err := r.run(ctx, dir, "status", "--porcelain=v2", "--branch")
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		if strings.Contains(strings.ToLower(res.Output), "not a git repository") {
			return nil, errors.NotRepository(dir)
		}
		return nil, errors.New(errors.ErrCodeCommandFailed, "failed to get status").
			WithDetail("dir", dir).
			WithDetail("output", res.Output)
	}
	return ParseStatus(res.Output), nil
}

// ParseStatus parses `git status --porcelain=v2 --branch` output
func ParseStatus(output string) *StatusInfo {
	status := &StatusInfo{}

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		// Header lines start with '#'
		if strings.HasPrefix(line, "# ") {
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			switch parts[1] {
			case "branch.head":
				status.Branch = parts[2]
			case "branch.upstream":
				status.HasUpstream = true
			case "branch.ab":
				// +<ahead> -<behind>
				status.AheadCount, _ = strconv.Atoi(strings.TrimPrefix(parts[2], "+"))
				if len(parts) > 3 {
					status.BehindCount, _ = strconv.Atoi(strings.TrimPrefix(parts[3], "-"))
				}
			}
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "?":
			status.UntrackedCount++
		case "1", "2":
			if len(parts) < 2 || len(parts[1]) < 2 {
				continue
			}
			xy := parts[1]
			if xy[0] != '.' {
				status.StagedCount++
			}
			if xy[1] != '.' {
				status.ModifiedCount++
			}
		case "u", "U":
			status.StagedCount++
			status.ModifiedCount++
		}
	}

	status.IsDirty = status.ModifiedCount > 0 || status.UntrackedCount > 0 || status.StagedCount > 0
	return status
}
