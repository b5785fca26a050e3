package engine

import (
	"context"
	"os"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/pkg/fileset"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/grovetools/rnsgit/pkg/project"
)

// VerifyResult compares an archive with its working directory.
type VerifyResult struct {
	Archive       string   `json:"archive"`
	Missing       []string `json:"missing,omitempty"`
	Extra         []string `json:"extra,omitempty"`
	ArchiveDigest string   `json:"archive_digest"`
	TreeDigest    string   `json:"tree_digest"`
}

// InSync reports whether archive and working directory hold the same files
// with the same content.
func (v *VerifyResult) InSync() bool {
	return len(v.Missing) == 0 && len(v.Extra) == 0 && v.ArchiveDigest == v.TreeDigest
}

// Verify checks the project's archive against the working directory's pack
// set. Missing lists files of the tree absent from the archive; Extra the
// reverse.
func (e *Engine) Verify(ctx context.Context, p *project.Project) (*VerifyResult, error) {
	defer profiling.Start("verify").Stop()
	if !e.git.FolderExists(p.WorkDir()) {
		return nil, errors.FolderMissing(p.WorkDir())
	}
	if !exists(p.ArchivePath()) {
		return nil, errors.ArchiveMissing(p.ArchivePath())
	}

	tree, err := fileset.Enumerate(p.WorkDir(), fileset.Options{
		Exclude: e.opts.Exclude,
		Skip:    []string{p.Archive},
	})
	if err != nil {
		return nil, err
	}
	treeDigest, err := fileset.Digest(p.WorkDir(), tree)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "rnsgit-verify-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create scratch directory")
	}
	defer os.RemoveAll(scratch)

	if err := e.archiver.Extract(ctx, p.ArchivePath(), scratch); err != nil {
		return nil, err
	}
	// Hidden entries never reach a packed archive, so they are ignored here too
	packed, err := fileset.Enumerate(scratch, fileset.Options{})
	if err != nil {
		return nil, err
	}
	archiveDigest, err := fileset.Digest(scratch, packed)
	if err != nil {
		return nil, err
	}

	missing, extra := fileset.Diff(tree, packed)
	return &VerifyResult{
		Archive:       p.Archive,
		Missing:       missing,
		Extra:         extra,
		ArchiveDigest: archiveDigest,
		TreeDigest:    treeDigest,
	}, nil
}
