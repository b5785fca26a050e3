package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/pkg/fileset"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/grovetools/rnsgit/pkg/project"
	"github.com/sirupsen/logrus"
)

// PackResult describes one archive build.
type PackResult struct {
	// Archive is the archive file name.
	Archive string `json:"archive"`

	// Path is where the finished archive now lives.
	Path string `json:"path"`

	// Files lists the packed entries.
	Files []string `json:"files"`

	// Digest fingerprints the packed file set.
	Digest string `json:"digest"`

	// Stashed is set when a previous archive was held aside during the build.
	Stashed bool `json:"stashed"`
}

// Pack builds archiveName from the working directory and moves it into the
// base directory. A previous archive of that name is renamed to its stash
// name first and removed only once the new archive is verified and in place;
// on any failure the stash stays behind for Recover.
func (e *Engine) Pack(ctx context.Context, p *project.Project, archiveName string) (*PackResult, error) {
	defer profiling.Start("pack").Stop()
	if archiveName == "" {
		archiveName = p.Archive
	}
	log := e.logger.WithFields(logrus.Fields{"project": p.Name, "archive": archiveName})

	workDir := p.WorkDir()
	if !e.git.FolderExists(workDir) {
		return nil, errors.FolderMissing(workDir)
	}

	target := filepath.Join(p.BaseDir, archiveName)
	stash := p.StashPath(archiveName)
	result := &PackResult{Archive: archiveName, Path: target}

	// Stashed
	if exists(target) {
		if err := os.Rename(target, stash); err != nil {
			return nil, errors.PackFailed(archiveName, fmt.Errorf("stash previous archive: %w", err))
		}
		result.Stashed = true
		log.WithField("stash", stash).Debug("Stashed previous archive")
	} else if exists(stash) {
		result.Stashed = true
		log.WithField("stash", stash).Warn("Keeping stash from an interrupted pack")
	}

	built := filepath.Join(workDir, archiveName)
	if exists(built) {
		log.WithField("path", built).Warn("Removing stale archive copy from working directory")
		if err := os.Remove(built); err != nil {
			return nil, errors.PackFailed(archiveName, err)
		}
	}

	files, err := fileset.Enumerate(workDir, fileset.Options{
		Exclude: e.opts.Exclude,
		Skip:    []string{archiveName},
	})
	if err != nil {
		return nil, errors.PackFailed(archiveName, err)
	}
	if len(files) == 0 {
		return nil, errors.PackFailed(archiveName, fmt.Errorf("no files to pack in %s", workDir))
	}
	result.Files = files

	// Packing
	if err := e.archiver.Create(ctx, workDir, archiveName, files); err != nil {
		return nil, err
	}
	if !exists(built) {
		return nil, errors.PackFailed(archiveName, fmt.Errorf("archive was not written to %s", built))
	}

	// Verified
	entries, err := e.archiver.List(ctx, built)
	if err != nil {
		return nil, errors.PackFailed(archiveName, err)
	}
	if missing, extra := fileset.Diff(files, entries); len(missing) > 0 || len(extra) > 0 {
		return nil, errors.PackFailed(archiveName, fmt.Errorf("archive entries differ from working directory")).
			WithDetail("missing", strings.Join(missing, ", ")).
			WithDetail("extra", strings.Join(extra, ", "))
	}

	if err := os.Rename(built, target); err != nil {
		return nil, errors.PackFailed(archiveName, fmt.Errorf("move archive into place: %w", err))
	}

	if err := os.Remove(stash); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Failed to remove stash")
		}
	}

	if digest, err := fileset.Digest(workDir, files); err == nil {
		result.Digest = digest
	}
	log.WithFields(logrus.Fields{
		"files":  len(files),
		"digest": result.Digest,
		"path":   target,
	}).Info("Packed archive")
	return result, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
