// Package engine keeps a song archive and its version-controlled working
// directory in step: it materializes archives into the repository, packs
// the repository back into archives and coordinates branch switches and
// merges around those two moves.
package engine

import (
	"strings"

	"github.com/grovetools/rnsgit/archive"
	"github.com/grovetools/rnsgit/config"
	"github.com/grovetools/rnsgit/git"
	"github.com/grovetools/rnsgit/logging"
	"github.com/sirupsen/logrus"
)

// Options tune the engine.
type Options struct {
	// InitialMessage is the commit message of a freshly initialized repository.
	InitialMessage string

	// Exclude holds extra pack exclusion patterns.
	Exclude []string
}

// OptionsFromConfig maps tool configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InitialMessage: cfg.Commit.InitialMessage,
		Exclude:        cfg.Pack.Exclude,
	}
}

// Engine drives the materialize/pack cycle through a git client and an archiver.
type Engine struct {
	git      git.Repository
	archiver archive.Archiver
	opts     Options
	logger   *logrus.Entry
}

// New creates an engine.
func New(repo git.Repository, archiver archive.Archiver, opts Options) *Engine {
	if opts.InitialMessage == "" {
		opts.InitialMessage = config.DefaultInitialMessage
	}
	return &Engine{
		git:      repo,
		archiver: archiver,
		opts:     opts,
		logger:   logging.NewLogger("rnsgit-engine"),
	}
}

// Git returns the version-control client.
func (e *Engine) Git() git.Repository {
	return e.git
}

// Archiver returns the archiver in use.
func (e *Engine) Archiver() archive.Archiver {
	return e.archiver
}

// diagnostic logs captured tool output without failing the run.
func (e *Engine) diagnostic(step, output string, fields logrus.Fields) {
	out := strings.TrimSpace(output)
	if out == "" {
		return
	}
	e.logger.WithFields(fields).WithField("step", step).WithField("output", out).Info("git output")
}
