// Package fileset enumerates the files that make up a song tree and
// fingerprints them.
package fileset

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/zeebo/xxh3"
)

// Options tune Enumerate.
type Options struct {
	// Exclude holds extra patternmatcher patterns, relative to the root.
	Exclude []string

	// Skip names root-level files never to return, such as a stale copy
	// of the archive being built.
	Skip []string
}

// IsHidden reports whether a single path element is dot-prefixed.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Enumerate returns the sorted slash-separated paths of every regular file
// under root that does not pass through a hidden directory, is not itself
// hidden and matches no exclude pattern.
func Enumerate(root string, opts Options) ([]string, error) {
	var pm *patternmatcher.PatternMatcher
	if len(opts.Exclude) > 0 {
		var err error
		pm, err = patternmatcher.New(opts.Exclude)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude patterns: %w", err)
		}
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skip[s] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if pm != nil {
			matched, err := pm.MatchesOrParentMatches(rel)
			if err != nil {
				return err
			}
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if skip[rel] {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Digest fingerprints files under root by path and content. The order of
// files does not matter.
func Digest(root string, files []string) (string, error) {
	paths := append([]string(nil), files...)
	sort.Strings(paths)

	h := xxh3.New()
	for _, p := range paths {
		if _, err := io.WriteString(h, p+"\x00"); err != nil {
			return "", err
		}
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
		if _, err := h.Write([]byte{0}); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", h.Sum128().Bytes()), nil
}

// Diff returns the names only in want (missing) and only in got (extra).
func Diff(want, got []string) (missing, extra []string) {
	gotSet := make(map[string]bool, len(got))
	for _, g := range got {
		gotSet[g] = true
	}
	wantSet := make(map[string]bool, len(want))
	for _, w := range want {
		wantSet[w] = true
		if !gotSet[w] {
			missing = append(missing, w)
		}
	}
	for _, g := range got {
		if !wantSet[g] {
			extra = append(extra, g)
		}
	}
	return missing, extra
}
