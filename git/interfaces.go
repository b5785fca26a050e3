package git

import (
	"context"

	"github.com/grovetools/rnsgit/command"
)

// Prober answers existence questions about a working directory.
type Prober interface {
	FolderExists(dir string) bool
	IsRepository(dir string) bool
	CurrentBranch(ctx context.Context, dir string) (string, error)
	BranchNames(ctx context.Context, dir string, excludingCurrent bool) ([]string, error)
}

// Repository is the version-control contract the sync engine depends on.
// Every method runs in dir; none of them changes the process working directory.
type Repository interface {
	Prober

	Init(ctx context.Context, dir string) (command.Result, error)
	AddAll(ctx context.Context, dir string) (command.Result, error)
	CommitAll(ctx context.Context, dir, message string) (CommitOutcome, command.Result, error)
	Status(ctx context.Context, dir string) (command.Result, error)
	Summary(ctx context.Context, dir string) (*StatusInfo, error)
	ListBranches(ctx context.Context, dir string, all bool) (command.Result, error)
	CreateBranch(ctx context.Context, dir, name string) (BranchOutcome, command.Result, error)
	Checkout(ctx context.Context, dir, name string) (CheckoutOutcome, command.Result, error)
	Merge(ctx context.Context, dir, name string) (MergeOutcome, command.Result, error)
	HeadCommit(ctx context.Context, dir string) (string, error)
	Exec(ctx context.Context, dir string, args ...string) (command.Result, error)
}
