package engine

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/git"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/pkg/project"
	"github.com/sirupsen/logrus"
)

// CheckoutBranch switches the working directory to name. Without a
// repository it reports false and logs why. Any outcome other than
// switched or already-on is fatal: the checked-out state is unknown.
func (e *Engine) CheckoutBranch(ctx context.Context, p *project.Project, name string) (bool, error) {
	workDir := p.WorkDir()
	if !e.git.IsRepository(workDir) {
		e.logger.WithField("dir", workDir).Warn("No existing repository in folder")
		return false, nil
	}

	outcome, res, err := e.git.Checkout(ctx, workDir, name)
	if err != nil {
		return false, err
	}
	e.diagnostic("checkout", res.Output, logrus.Fields{"branch": name, "outcome": outcome.String()})
	if !outcome.Ok() {
		return false, errors.CheckoutFailed(name, strings.TrimSpace(res.Output))
	}
	return true, nil
}

// CreateBranch creates name in an existing repository and checks it out.
// An already existing branch is simply checked out.
func (e *Engine) CreateBranch(ctx context.Context, p *project.Project, name string) (bool, error) {
	if err := e.requireRepository(p); err != nil {
		return false, err
	}

	outcome, res, err := e.git.CreateBranch(ctx, p.WorkDir(), name)
	if err != nil {
		return false, err
	}
	e.diagnostic("branch", res.Output, logrus.Fields{"branch": name, "outcome": outcome.String()})
	if outcome == git.BranchFailed {
		return false, errors.New(errors.ErrCodeCommandFailed, "failed to create branch "+name).
			WithDetail("branch", name).
			WithDetail("output", strings.TrimSpace(res.Output))
	}
	if outcome == git.BranchAlreadyExists {
		e.logger.WithField("branch", name).Warn("Branch already exists")
	}

	return e.CheckoutBranch(ctx, p, name)
}

// FromBranch checks out name and packs it into <project><modifier>.xrns in
// the base directory, ready to open.
func (e *Engine) FromBranch(ctx context.Context, p *project.Project, name, modifier string) (*PackResult, error) {
	if err := e.requireRepository(p); err != nil {
		return nil, err
	}
	archiveName, err := p.DeriveArchiveName(modifier)
	if err != nil {
		return nil, err
	}

	ok, err := e.CheckoutBranch(ctx, p, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.CheckoutFailed(name, "")
	}

	e.logger.WithFields(logrus.Fields{"branch": name, "archive": archiveName}).Info("Creating archive from branch")
	return e.Pack(ctx, p, archiveName)
}

// Merge merges name into the current branch and packs the result. A
// conflicted or failed merge leaves the archive untouched.
func (e *Engine) Merge(ctx context.Context, p *project.Project, name string) (*PackResult, error) {
	if err := e.requireRepository(p); err != nil {
		return nil, err
	}

	outcome, res, err := e.git.Merge(ctx, p.WorkDir(), name)
	if err != nil {
		return nil, err
	}
	e.diagnostic("merge", res.Output, logrus.Fields{"branch": name, "outcome": outcome.String()})
	if !outcome.Ok() {
		return nil, errors.MergeFailed(name, strings.TrimSpace(res.Output)).
			WithDetail("outcome", outcome.String())
	}
	return e.Pack(ctx, p, p.Archive)
}

// InteractiveMerge lists the current branch and the other branches with
// 1-based indices, reads one selection from in and merges it. Invalid or
// out-of-range input cancels with no side effects and a nil result.
func (e *Engine) InteractiveMerge(ctx context.Context, p *project.Project, in io.Reader, out *logging.PrettyLogger) (*PackResult, error) {
	if err := e.requireRepository(p); err != nil {
		return nil, err
	}
	workDir := p.WorkDir()

	current, err := e.git.CurrentBranch(ctx, workDir)
	if err != nil {
		return nil, err
	}
	others, err := e.git.BranchNames(ctx, workDir, true)
	if err != nil {
		return nil, err
	}

	out.Current("Current branch:", current)
	if len(others) == 0 {
		out.WarnPretty("No other branches to merge")
		return nil, nil
	}
	out.InfoPretty("Merge which branch into " + current + "?")
	for i, name := range others {
		out.Choice(i+1, name)
	}
	_, _ = io.WriteString(out.Writer(), "> ")

	selected, ok := readSelection(in, len(others))
	if !ok {
		out.WarnPretty("Cancelled")
		return nil, nil
	}
	branch := others[selected-1]
	out.InfoPretty("Merging " + branch + " into " + current)
	return e.Merge(ctx, p, branch)
}

func readSelection(in io.Reader, count int) (int, bool) {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 1 || n > count {
		return 0, false
	}
	return n, true
}

func (e *Engine) requireRepository(p *project.Project) error {
	workDir := p.WorkDir()
	if !e.git.FolderExists(workDir) {
		return errors.FolderMissing(workDir)
	}
	if !e.git.IsRepository(workDir) {
		return errors.NotRepository(workDir)
	}
	return nil
}
