// Package archive expands and builds zip-format song archives, either
// through an external 7z binary or in process.
package archive

import (
	"context"
	"os/exec"
	"sort"

	"github.com/grovetools/rnsgit/command"
	"github.com/grovetools/rnsgit/config"
	"github.com/grovetools/rnsgit/errors"
)

// Extension is the fixed song archive extension.
const Extension = ".xrns"

// Archiver is the contract the engine relies on.
type Archiver interface {
	// Name identifies the implementation in logs.
	Name() string

	// Extract expands archivePath into destDir, overwriting existing files.
	Extract(ctx context.Context, archivePath, destDir string) error

	// Create builds archiveName inside dir by adding each of files (slash
	// paths relative to dir) one at a time.
	Create(ctx context.Context, dir, archiveName string, files []string) error

	// List returns the sorted file entries of archivePath, directories omitted.
	List(ctx context.Context, archivePath string) ([]string, error)
}

// Select returns the archiver for kind. Auto picks 7z when binary is on
// PATH and falls back to the in-process implementation otherwise.
func Select(kind, binary string, runner command.Runner) (Archiver, error) {
	if binary == "" {
		binary = config.DefaultArchiverBinary
	}
	switch kind {
	case config.ArchiverSevenZip:
		return NewSevenZip(runner, binary), nil
	case config.ArchiverZip:
		return NewZip(), nil
	case "", config.ArchiverAuto:
		if _, err := exec.LookPath(binary); err == nil {
			return NewSevenZip(runner, binary), nil
		}
		return NewZip(), nil
	default:
		return nil, errors.ConfigInvalid("unknown archiver kind: " + kind)
	}
}

func sorted(names []string) []string {
	sort.Strings(names)
	return names
}
