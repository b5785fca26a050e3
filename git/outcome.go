package git

import (
	"fmt"
	"strings"

	"github.com/grovetools/rnsgit/command"
)

// CheckoutOutcome is the terminal state of a branch checkout.
type CheckoutOutcome int

const (
	CheckoutFailed CheckoutOutcome = iota
	CheckoutSwitched
	CheckoutAlreadyOn
)

func (o CheckoutOutcome) String() string {
	switch o {
	case CheckoutSwitched:
		return "switched"
	case CheckoutAlreadyOn:
		return "already-on"
	default:
		return "failed"
	}
}

// Ok reports whether the branch is now checked out.
func (o CheckoutOutcome) Ok() bool {
	return o == CheckoutSwitched || o == CheckoutAlreadyOn
}

// CommitOutcome is the terminal state of a commit attempt.
type CommitOutcome int

const (
	CommitFailed CommitOutcome = iota
	CommitRecorded
	CommitNothingToCommit
)

func (o CommitOutcome) String() string {
	switch o {
	case CommitRecorded:
		return "recorded"
	case CommitNothingToCommit:
		return "nothing-to-commit"
	default:
		return "failed"
	}
}

// BranchOutcome is the terminal state of a branch creation.
type BranchOutcome int

const (
	BranchFailed BranchOutcome = iota
	BranchCreated
	BranchAlreadyExists
)

func (o BranchOutcome) String() string {
	switch o {
	case BranchCreated:
		return "created"
	case BranchAlreadyExists:
		return "already-exists"
	default:
		return "failed"
	}
}

// MergeOutcome is the terminal state of a merge.
type MergeOutcome int

const (
	MergeFailed MergeOutcome = iota
	MergeApplied
	MergeUpToDate
	MergeConflict
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeApplied:
		return "applied"
	case MergeUpToDate:
		return "up-to-date"
	case MergeConflict:
		return "conflict"
	default:
		return "failed"
	}
}

// Ok reports whether the merge left a clean, merged tree.
func (o MergeOutcome) Ok() bool {
	return o == MergeApplied || o == MergeUpToDate
}

// The exit status decides success; the text only refines which success.

func classifyCheckout(branch string, res command.Result) CheckoutOutcome {
	if !res.Success() {
		return CheckoutFailed
	}
	out := strings.TrimSpace(res.Output)
	if strings.Contains(out, fmt.Sprintf("Switched to branch '%s'", branch)) {
		return CheckoutSwitched
	}
	lower := strings.ToLower(out)
	if strings.Contains(lower, "already on") || strings.Contains(lower, "already exists") {
		return CheckoutAlreadyOn
	}
	return CheckoutSwitched
}

func classifyCommit(res command.Result) CommitOutcome {
	if res.Success() {
		return CommitRecorded
	}
	lower := strings.ToLower(res.Output)
	if strings.Contains(lower, "nothing to commit") || strings.Contains(lower, "nothing added to commit") {
		return CommitNothingToCommit
	}
	return CommitFailed
}

func classifyBranch(res command.Result) BranchOutcome {
	if res.Success() {
		return BranchCreated
	}
	if strings.Contains(strings.ToLower(res.Output), "already exists") {
		return BranchAlreadyExists
	}
	return BranchFailed
}

func classifyMerge(res command.Result) MergeOutcome {
	lower := strings.ToLower(res.Output)
	if res.Success() {
		if strings.Contains(lower, "already up to date") || strings.Contains(lower, "already up-to-date") {
			return MergeUpToDate
		}
		return MergeApplied
	}
	if strings.Contains(res.Output, "CONFLICT") || strings.Contains(lower, "automatic merge failed") {
		return MergeConflict
	}
	return MergeFailed
}
