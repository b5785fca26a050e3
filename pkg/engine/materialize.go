package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/git"
	"github.com/grovetools/rnsgit/pkg/fileset"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/grovetools/rnsgit/pkg/project"
	"github.com/sirupsen/logrus"
)

// MaterializeResult describes one archive expansion.
type MaterializeResult struct {
	// CreatedDir is set when the working directory did not exist before.
	CreatedDir bool `json:"created_dir"`

	// Initialized is set when version control was set up by this run.
	Initialized bool `json:"initialized"`

	// Commit is the outcome of the commit step.
	Commit git.CommitOutcome `json:"-"`

	// CommitState is Commit in text form.
	CommitState string `json:"commit"`

	// Head is the HEAD commit after the run, empty if it could not be read.
	Head string `json:"head,omitempty"`

	// Files is the number of files in the pack set after expansion.
	Files int `json:"files"`

	// Digest fingerprints the pack set after expansion.
	Digest string `json:"digest,omitempty"`
}

// Materialize expands the project's archive into its working directory and
// records the resulting tree in version control. A fresh directory gets
// initialized and committed with the initial message; an existing
// repository commits with message. Git outcomes are logged, not fatal, so
// repeated runs over an unchanged archive succeed.
func (e *Engine) Materialize(ctx context.Context, p *project.Project, message string) (*MaterializeResult, error) {
	defer profiling.Start("materialize").Stop()
	log := e.logger.WithFields(logrus.Fields{"project": p.Name, "archive": p.Archive})
	result := &MaterializeResult{}

	src := p.ArchivePath()
	if info, err := os.Stat(src); err != nil || info.IsDir() {
		return nil, errors.ArchiveMissing(src)
	}

	workDir := p.WorkDir()
	if !e.git.FolderExists(workDir) {
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create working directory").
				WithDetail("dir", workDir)
		}
		result.CreatedDir = true
		log.WithField("dir", workDir).Info("Created working directory")
	}

	copied := filepath.Join(workDir, p.Archive)
	if err := copyFile(src, copied); err != nil {
		return nil, errors.ExtractFailed(p.Archive, err)
	}
	extractErr := e.archiver.Extract(ctx, copied, workDir)
	// The copy never outlives the expansion, even a failed one
	if err := os.Remove(copied); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to remove archive copy from working directory")
	}
	if extractErr != nil {
		return nil, extractErr
	}

	if !e.git.IsRepository(workDir) {
		log.Info("No version control here yet, initializing")
		res, err := e.git.Init(ctx, workDir)
		if err != nil {
			return nil, err
		}
		e.diagnostic("init", res.Output, nil)
		result.Initialized = res.Success()
		message = e.opts.InitialMessage
	} else {
		log.Info("Folder is already under version control")
	}

	res, err := e.git.AddAll(ctx, workDir)
	if err != nil {
		return nil, err
	}
	e.diagnostic("add", res.Output, nil)

	outcome, res, err := e.git.CommitAll(ctx, workDir, message)
	if err != nil {
		return nil, err
	}
	e.diagnostic("commit", res.Output, logrus.Fields{"outcome": outcome.String()})
	result.Commit = outcome
	result.CommitState = outcome.String()
	switch outcome {
	case git.CommitNothingToCommit:
		log.Warn("Nothing to commit")
	case git.CommitFailed:
		log.WithField("exit", res.ExitCode).Warn("Commit failed")
	}

	if head, err := e.git.HeadCommit(ctx, workDir); err == nil {
		result.Head = head
	}
	if files, err := fileset.Enumerate(workDir, fileset.Options{Exclude: e.opts.Exclude}); err == nil {
		result.Files = len(files)
		if digest, err := fileset.Digest(workDir, files); err == nil {
			result.Digest = digest
		}
	}

	log.WithFields(logrus.Fields{
		"files":  result.Files,
		"digest": result.Digest,
		"head":   result.Head,
	}).Info("Materialized archive")
	return result, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}
