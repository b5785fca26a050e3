package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/pkg/project"
	"github.com/sirupsen/logrus"
)

// StashState is the pack phase an archive's artifacts on disk point to.
type StashState int

const (
	// StashClean means no stash exists.
	StashClean StashState = iota
	// StashStashed means the previous archive was renamed aside and no new
	// archive was started.
	StashStashed
	// StashPacking means a partial archive sits in the working directory.
	StashPacking
	// StashVerified means the new archive is in place but the stash was not
	// yet removed.
	StashVerified
	// StashRestored means the stash was renamed back over a missing archive.
	StashRestored
)

func (s StashState) String() string {
	switch s {
	case StashStashed:
		return "stashed"
	case StashPacking:
		return "packing"
	case StashVerified:
		return "verified"
	case StashRestored:
		return "restored"
	default:
		return "clean"
	}
}

// MarshalText renders the state name in JSON output.
func (s StashState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Recovery reports what Recover found and did.
type Recovery struct {
	Archive string     `json:"archive"`
	Found   StashState `json:"found"`
	Final   StashState `json:"final"`
	Action  string     `json:"action"`
}

// InspectStash infers the pack phase of archiveName from the files present.
func InspectStash(p *project.Project, archiveName string) StashState {
	if !exists(p.StashPath(archiveName)) {
		return StashClean
	}
	switch {
	case exists(filepath.Join(p.BaseDir, archiveName)):
		return StashVerified
	case exists(filepath.Join(p.WorkDir(), archiveName)):
		return StashPacking
	default:
		return StashStashed
	}
}

// Recover finishes or rolls back an interrupted pack. A verified archive
// is kept and the stash dropped; anything earlier is rolled back by
// discarding the partial archive and renaming the stash back.
func (e *Engine) Recover(p *project.Project, archiveName string) (*Recovery, error) {
	if archiveName == "" {
		archiveName = p.Archive
	}
	stash := p.StashPath(archiveName)
	target := filepath.Join(p.BaseDir, archiveName)
	partial := filepath.Join(p.WorkDir(), archiveName)

	rec := &Recovery{Archive: archiveName, Found: InspectStash(p, archiveName)}
	log := e.logger.WithFields(logrus.Fields{
		"project": p.Name,
		"archive": archiveName,
		"state":   rec.Found.String(),
	})

	switch rec.Found {
	case StashClean:
		rec.Final = StashClean
		rec.Action = "nothing to recover"
		return rec, nil

	case StashVerified:
		if err := os.Remove(stash); err != nil {
			return rec, errors.Wrap(err, errors.ErrCodeInternal, "failed to remove stash").
				WithDetail("stash", stash)
		}
		rec.Final = StashClean
		rec.Action = "kept new archive, removed stash"

	case StashPacking:
		if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
			return rec, errors.Wrap(err, errors.ErrCodeInternal, "failed to remove partial archive").
				WithDetail("path", partial)
		}
		fallthrough

	case StashStashed:
		if err := os.Rename(stash, target); err != nil {
			return rec, errors.Wrap(err, errors.ErrCodeInternal, "failed to restore stash").
				WithDetail("stash", stash)
		}
		rec.Final = StashRestored
		rec.Action = fmt.Sprintf("restored previous archive from %s", project.StashName(archiveName))
	}

	log.WithField("action", rec.Action).Info("Recovered interrupted pack")
	return rec, nil
}
