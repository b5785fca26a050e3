package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// Zip reads and writes archives in process with archive/zip.
type Zip struct {
	logger *logrus.Entry
}

// NewZip creates the in-process archiver.
func NewZip() *Zip {
	return &Zip{logger: logging.NewLogger("rnsgit-archive")}
}

func (z *Zip) Name() string { return "zip" }

// Extract expands every entry of archivePath under destDir. Entries that
// would land outside destDir are rejected.
func (z *Zip) Extract(ctx context.Context, archivePath, destDir string) error {
	defer profiling.Start("zip extract").Stop()
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.ExtractFailed(archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return errors.ExtractFailed(archivePath, err)
		}
		if err := z.extractOne(f, destDir); err != nil {
			return errors.ExtractFailed(archivePath, err).WithDetail("entry", f.Name)
		}
	}
	z.logger.WithFields(logrus.Fields{
		"archive": archivePath,
		"entries": len(zr.File),
	}).Debug("Extracted archive")
	return nil
}

func (z *Zip) extractOne(f *zip.File, destDir string) error {
	name, err := entryPath(f.Name)
	if err != nil {
		return err
	}
	target := filepath.Join(destDir, filepath.FromSlash(name))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// A read-only file from an earlier extract cannot be truncated in place
	if info, err := os.Lstat(target); err == nil && !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// entryPath normalizes an entry name and refuses absolute or escaping paths.
func entryPath(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("unsafe entry path %q", name)
	}
	return clean, nil
}

// Create writes a fresh archiveName in dir holding files, in order.
func (z *Zip) Create(ctx context.Context, dir, archiveName string, files []string) error {
	defer profiling.Start("zip create").Stop()
	target := filepath.Join(dir, archiveName)
	out, err := os.Create(target)
	if err != nil {
		return errors.PackFailed(archiveName, err)
	}

	zw := zip.NewWriter(out)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			zw.Close()
			out.Close()
			return errors.PackFailed(archiveName, err)
		}
		if err := addFile(zw, dir, name); err != nil {
			zw.Close()
			out.Close()
			return errors.PackFailed(archiveName, err).WithDetail("file", name)
		}
		z.logger.WithFields(logrus.Fields{
			"archive": archiveName,
			"file":    name,
		}).Debug("Added file")
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return errors.PackFailed(archiveName, err)
	}
	if err := out.Close(); err != nil {
		return errors.PackFailed(archiveName, err)
	}
	return nil
}

func addFile(zw *zip.Writer, dir, name string) error {
	src := filepath.Join(dir, filepath.FromSlash(name))
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

// List returns the file entries of archivePath.
func (z *Zip) List(_ context.Context, archivePath string) ([]string, error) {
	defer profiling.Start("zip list").Stop()
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveMissing, "failed to open archive").
			WithDetail("archive", archivePath)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, strings.ReplaceAll(f.Name, "\\", "/"))
	}
	return sorted(names), nil
}
