package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/rnsgit/archive"
	"github.com/grovetools/rnsgit/cli"
	"github.com/grovetools/rnsgit/command"
	"github.com/grovetools/rnsgit/config"
	"github.com/grovetools/rnsgit/git"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/pkg/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type archiveKey struct{}

func withArchive(ctx context.Context, song string) context.Context {
	if song == "" {
		return ctx
	}
	return context.WithValue(ctx, archiveKey{}, song)
}

// ExitError carries the exit code of a passthrough git command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// app is what every song command needs, built from flags and config.
type app struct {
	session *engine.Session
	config  *config.Config
	baseDir string
	archive string
	json    bool
	pretty  *logging.PrettyLogger
	logger  *logrus.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	opts := cli.GetOptions(cmd)

	baseDir, err := baseDirOf(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := cli.LoadConfig(opts, baseDir)
	if err != nil {
		return nil, err
	}
	logging.Configure(cfg)
	logger := cli.GetLogger(cmd)
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	builder := command.NewSafeBuilder()
	builder.SetDefaultTimeout(timeout)
	runner := command.NewExecRunner(builder)

	archiver, err := archive.Select(cfg.Archiver.Kind, cfg.Archiver.Binary, runner)
	if err != nil {
		return nil, err
	}
	repo := git.NewCLIRepository(runner, cfg.Git.Binary)
	eng := engine.New(repo, archiver, engine.OptionsFromConfig(cfg))

	logger.WithFields(logrus.Fields{
		"base_dir": baseDir,
		"archiver": archiver.Name(),
		"timeout":  timeout,
	}).Debug("Session ready")

	song := opts.Archive
	if song == "" {
		song, _ = cmd.Context().Value(archiveKey{}).(string)
	}

	return &app{
		session: engine.NewSession(eng, baseDir),
		config:  cfg,
		baseDir: baseDir,
		archive: song,
		json:    opts.JSONOutput,
		pretty:  logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout()),
		logger:  logger,
	}, nil
}

func baseDirOf(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// emit prints v as JSON under --json, or calls pretty otherwise.
func (a *app) emit(v interface{}, pretty func()) error {
	if !a.json {
		pretty()
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.pretty.Writer(), string(data))
	return nil
}

// showOutput prints captured git output, returning an ExitError when git
// failed so the process exits with git's code.
func (a *app) showOutput(res command.Result) error {
	err := a.emit(res, func() { a.pretty.Code(res.Output) })
	if err != nil {
		return err
	}
	if !res.Success() {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

func (a *app) showMaterialize(res *engine.MaterializeResult) error {
	return a.emit(res, func() {
		if res.Initialized {
			a.pretty.Success("Initialized repository")
		}
		switch res.Commit {
		case git.CommitRecorded:
			a.pretty.Success("Committed " + res.Head)
		case git.CommitNothingToCommit:
			a.pretty.InfoPretty("Nothing to commit")
		default:
			a.pretty.WarnPretty("Commit failed, see the log above")
		}
		a.pretty.Field("Files", res.Files)
	})
}

func (a *app) showPack(res *engine.PackResult) error {
	return a.emit(res, func() {
		a.pretty.Success(fmt.Sprintf("Packed %d files", len(res.Files)))
		a.pretty.Path("Archive", res.Path)
	})
}
