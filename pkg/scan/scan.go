package scan

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/treesync/treesync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// An ExclusionSet is a set of absolute, separator-normalized paths to omit
// entirely from a scan. Membership is exact string equality against the full
// path of a candidate entry.
type ExclusionSet map[string]struct{}

// Has returns whether path is excluded.
func (set ExclusionSet) Has(path string) bool {
	_, ok := set[path]
	return ok
}

// Scan walks the tree rooted at root and returns its index.
//
// Exclusions are only consulted when honorExclusions is set. Destination
// scans pass false so that leftovers from previously excluded paths still
// get cleaned up.
//
// Full paths are built by joining root with each discovered name, and
// relative paths are computed by stripping the root prefix. No
// canonicalization happens mid-walk, so root must be passed in a clean form:
// a trailing separator is rejected up front.
func Scan(root string, exclusions ExclusionSet, honorExclusions bool) (*Index, error) {
	if root != string(os.PathSeparator) && strings.HasSuffix(root, string(os.PathSeparator)) {
		return nil, errors.InvalidPathError{Path: root, Reason: "trailing separator"}
	}

	fi, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: root}
		}
		return nil, errors.WithContext(err, "stat root")
	}
	if !fi.IsDir() {
		return nil, errors.InvalidPathError{Path: root, Reason: "not a directory"}
	}

	index := newIndex()
	scanDir(index, root, root, exclusions, honorExclusions)
	return index, nil
}

func scanDir(index *Index, root, dir string, exclusions ExclusionSet, honorExclusions bool) {
	children, err := afero.ReadDir(fs, dir)
	if err != nil {
		// An unreadable directory degrades to "no children" rather than
		// failing the whole scan.
		log.WithError(err).WithField("path", dir).Debug("Failed to list directory")
		return
	}

	for _, child := range children {
		fullPath := filepath.Join(dir, child.Name())
		if honorExclusions && exclusions.Has(fullPath) {
			continue
		}

		// Symbolic links don't survive translation across platforms with
		// different link semantics, so they're never followed or indexed.
		if child.Mode()&os.ModeSymlink != 0 {
			continue
		}

		// Recurse before inserting the directory's own entry so that the
		// index ends up in post-order.
		if child.IsDir() {
			scanDir(index, root, fullPath, exclusions, honorExclusions)
		}

		index.add(Entry{
			RelPath: relativeTo(root, fullPath),
			AbsPath: fullPath,
			IsDir:   child.IsDir(),
			Size:    child.Size(),
			ModTime: child.ModTime(),
			Mode:    child.Mode(),
			Hidden:  strings.HasPrefix(child.Name(), "."),
		})
	}
}

func relativeTo(root, fullPath string) string {
	rel := strings.TrimPrefix(fullPath, root)
	return strings.TrimPrefix(rel, string(os.PathSeparator))
}
