package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grovetools/rnsgit/command"
	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// SevenZip drives an external 7z binary.
type SevenZip struct {
	runner  command.Runner
	binary  string
	builder *command.SafeBuilder
	logger  *logrus.Entry
}

// NewSevenZip creates an archiver over the 7z binary.
func NewSevenZip(runner command.Runner, binary string) *SevenZip {
	if runner == nil {
		runner = command.NewExecRunner(nil)
	}
	return &SevenZip{
		runner:  runner,
		binary:  binary,
		builder: command.NewSafeBuilder(),
		logger:  logging.NewLogger("rnsgit-archive"),
	}
}

func (s *SevenZip) Name() string { return "7z" }

// Extract runs `7z -y x <archive>` inside destDir.
func (s *SevenZip) Extract(ctx context.Context, archivePath, destDir string) error {
	defer profiling.Start("7z extract").Stop()
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return errors.ExtractFailed(archivePath, err)
	}
	res, err := s.runner.Run(ctx, destDir, s.binary, "-y", "x", abs)
	if err != nil {
		return errors.ExtractFailed(archivePath, err)
	}
	s.logTool("x", res)
	if !res.Success() {
		return errors.ExtractFailed(archivePath, fmt.Errorf("%s exited %d", s.binary, res.ExitCode)).
			WithDetail("output", res.Output)
	}
	return nil
}

// Create adds files to archiveName one invocation per file, so exclusion
// stays per file and progress shows in the debug log.
func (s *SevenZip) Create(ctx context.Context, dir, archiveName string, files []string) error {
	defer profiling.Start("7z create").Stop()
	for i, name := range files {
		if err := s.builder.Validate("fileName", name); err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidInput, "refusing to add file").
				WithDetail("archive", archiveName).
				WithDetail("file", name)
		}
		res, err := s.runner.Run(ctx, dir, s.binary, "a", "-tzip", "-y", "--", archiveName, filepath.FromSlash(name))
		if err != nil {
			return errors.PackFailed(archiveName, err).WithDetail("file", name)
		}
		if !res.Success() {
			return errors.PackFailed(archiveName, fmt.Errorf("%s exited %d", s.binary, res.ExitCode)).
				WithDetail("file", name).
				WithDetail("output", res.Output)
		}
		s.logger.WithFields(logrus.Fields{
			"archive": archiveName,
			"file":    name,
			"n":       i + 1,
			"total":   len(files),
		}).Debug("Added file")
	}
	return nil
}

// List reads the technical listing (`7z l -slt`).
func (s *SevenZip) List(ctx context.Context, archivePath string) ([]string, error) {
	defer profiling.Start("7z list").Stop()
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, err
	}
	res, err := s.runner.Run(ctx, filepath.Dir(abs), s.binary, "l", "-slt", "--", abs)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, errors.New(errors.ErrCodeCommandFailed, "failed to list archive").
			WithDetail("archive", archivePath).
			WithDetail("output", res.Output)
	}
	return parseTechnicalListing(res.Output), nil
}

func (s *SevenZip) logTool(op string, res command.Result) {
	s.logger.WithFields(logrus.Fields{
		"tool":   s.binary,
		"args":   op,
		"exit":   res.ExitCode,
		"output": strings.TrimSpace(res.Output),
	}).Info("7z finished")
}

// parseTechnicalListing extracts file paths from `7z l -slt` output. Entries
// follow the "----------" separator as blank-line separated blocks of
// "Key = Value" lines.
func parseTechnicalListing(output string) []string {
	var (
		names   []string
		inBody  bool
		path    string
		isEntry bool
		folder  bool
	)
	flush := func() {
		if isEntry && !folder && path != "" {
			names = append(names, filepath.ToSlash(path))
		}
		path, isEntry, folder = "", false, false
	}
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")
		if !inBody {
			if strings.HasPrefix(line, "----------") {
				inBody = true
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			continue
		}
		switch key {
		case "Path":
			path, isEntry = value, true
		case "Folder":
			folder = value == "+"
		case "Attributes":
			if strings.HasPrefix(value, "D") {
				folder = true
			}
		}
	}
	flush()
	return sorted(names)
}
