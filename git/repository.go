package git

import (
	"context"
	"strings"

	"github.com/grovetools/rnsgit/command"
	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// CLIRepository implements Repository using the git CLI
type CLIRepository struct {
	runner     command.Runner
	binary     string
	cmdBuilder *command.SafeBuilder
	logger     *logrus.Entry
}

// Ensure it implements the interface
var _ Repository = (*CLIRepository)(nil)

// NewCLIRepository creates a git client running binary through runner.
// An empty binary means "git" from PATH.
func NewCLIRepository(runner command.Runner, binary string) *CLIRepository {
	if binary == "" {
		binary = "git"
	}
	return &CLIRepository{
		runner:     runner,
		binary:     binary,
		cmdBuilder: command.NewSafeBuilder(),
		logger:     logging.NewLogger("rnsgit-git"),
	}
}

func (r *CLIRepository) run(ctx context.Context, dir string, args ...string) (command.Result, error) {
	name := "git"
	if len(args) > 0 {
		name += " " + args[0]
	}
	defer profiling.Start(name).Stop()

	res, err := r.runner.Run(ctx, dir, r.binary, args...)
	r.logger.WithFields(logrus.Fields{
		"dir":  dir,
		"args": strings.Join(args, " "),
		"exit": res.ExitCode,
	}).Debug("git finished")
	return res, err
}

func (r *CLIRepository) validRef(name string) error {
	if err := r.cmdBuilder.Validate("gitRef", name); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid branch name").
			WithDetail("branch", name)
	}
	return nil
}

// Init creates version-control metadata in dir
func (r *CLIRepository) Init(ctx context.Context, dir string) (command.Result, error) {
	return r.run(ctx, dir, "init")
}

// AddAll stages every change in the working tree
func (r *CLIRepository) AddAll(ctx context.Context, dir string) (command.Result, error) {
	return r.run(ctx, dir, "add", "--all")
}

// CommitAll commits tracked changes with message (commit -am)
func (r *CLIRepository) CommitAll(ctx context.Context, dir, message string) (CommitOutcome, command.Result, error) {
	res, err := r.run(ctx, dir, "commit", "-am", message)
	if err != nil {
		return CommitFailed, res, err
	}
	return classifyCommit(res), res, nil
}

// Status returns the human-readable status output
func (r *CLIRepository) Status(ctx context.Context, dir string) (command.Result, error) {
	return r.run(ctx, dir, "status")
}

// ListBranches returns `git branch` output, or `git branch --all` when all is set
func (r *CLIRepository) ListBranches(ctx context.Context, dir string, all bool) (command.Result, error) {
	if all {
		return r.run(ctx, dir, "branch", "--all")
	}
	return r.run(ctx, dir, "branch")
}

// CreateBranch creates a branch at HEAD without switching to it
func (r *CLIRepository) CreateBranch(ctx context.Context, dir, name string) (BranchOutcome, command.Result, error) {
	if err := r.validRef(name); err != nil {
		return BranchFailed, command.Result{}, err
	}
	res, err := r.run(ctx, dir, "branch", name)
	if err != nil {
		return BranchFailed, res, err
	}
	return classifyBranch(res), res, nil
}

// Checkout switches the working tree to branch name
func (r *CLIRepository) Checkout(ctx context.Context, dir, name string) (CheckoutOutcome, command.Result, error) {
	if err := r.validRef(name); err != nil {
		return CheckoutFailed, command.Result{}, err
	}
	// The trailing "--" keeps a branch named like a file from being read as a path
	res, err := r.run(ctx, dir, "checkout", name, "--")
	if err != nil {
		return CheckoutFailed, res, err
	}
	return classifyCheckout(name, res), res, nil
}

// Merge merges branch name into the current branch
func (r *CLIRepository) Merge(ctx context.Context, dir, name string) (MergeOutcome, command.Result, error) {
	if err := r.validRef(name); err != nil {
		return MergeFailed, command.Result{}, err
	}
	res, err := r.run(ctx, dir, "merge", "--no-edit", name)
	if err != nil {
		return MergeFailed, res, err
	}
	return classifyMerge(res), res, nil
}

// HeadCommit returns the abbreviated HEAD commit hash
func (r *CLIRepository) HeadCommit(ctx context.Context, dir string) (string, error) {
	res, err := r.run(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", errors.New(errors.ErrCodeCommandFailed, "resolve HEAD").
			WithDetail("output", res.Output)
	}
	return strings.TrimSpace(res.Output), nil
}

// Exec runs an arbitrary git command, for passthrough of commands rnsgit
// does not handle itself
func (r *CLIRepository) Exec(ctx context.Context, dir string, args ...string) (command.Result, error) {
	return r.run(ctx, dir, args...)
}
