// Package project derives the on-disk layout of a song project from its
// archive name.
package project

import (
	"path/filepath"
	"strings"

	"github.com/grovetools/rnsgit/command"
	"github.com/grovetools/rnsgit/errors"
)

const (
	// Extension is the fixed archive extension.
	Extension = ".xrns"

	stashPrefix = "._stashed_"
	lockPrefix  = "._locked_"
)

var validator = command.NewSafeBuilder()

// Project names the archive and working directory of one song. The
// working directory is the archive base name without extension, inside
// BaseDir.
type Project struct {
	BaseDir string `json:"base_dir"`
	Name    string `json:"name"`
	Archive string `json:"archive"`
}

// FromArchive builds a project from an archive file name (or path; only
// the base name is kept) inside baseDir.
func FromArchive(baseDir, archive string) (*Project, error) {
	archive = filepath.Base(archive)
	if err := validator.Validate("archiveName", archive); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid archive name").
			WithDetail("archive", archive)
	}
	name := strings.TrimSuffix(archive, Extension)
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid base directory")
	}
	return &Project{BaseDir: abs, Name: name, Archive: archive}, nil
}

// ArchivePath is the archive in the base directory.
func (p *Project) ArchivePath() string {
	return filepath.Join(p.BaseDir, p.Archive)
}

// WorkDir is the repository folder.
func (p *Project) WorkDir() string {
	return filepath.Join(p.BaseDir, p.Name)
}

// StashName is the rename target holding the previous archive during a pack.
func StashName(archive string) string {
	return stashPrefix + archive
}

// StashPath is where archive is stashed in the base directory.
func (p *Project) StashPath(archive string) string {
	return filepath.Join(p.BaseDir, StashName(archive))
}

// LockPath is the advisory lock file of the project.
func (p *Project) LockPath() string {
	return filepath.Join(p.BaseDir, lockPrefix+p.Name)
}

// DeriveArchiveName returns <project><modifier>.xrns.
func (p *Project) DeriveArchiveName(modifier string) (string, error) {
	name := p.Name + modifier + Extension
	if err := validator.Validate("archiveName", name); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid archive suffix").
			WithDetail("suffix", modifier)
	}
	return name, nil
}
