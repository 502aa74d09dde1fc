package scan

import (
	"os"
	"time"
)

// An Entry is one file or directory discovered by a scan.
type Entry struct {
	// RelPath is the path relative to the scan root, using the host
	// platform's separator. It's the key the entry is diffed by, and it
	// never refers to the scan root itself.
	RelPath string

	// AbsPath is the full path used for I/O on the entry.
	AbsPath string

	// IsDir is whether the entry is a directory.
	IsDir bool

	// Size and ModTime are only meaningful for files. They're the only
	// attributes compared when deciding whether a file changed.
	Size    int64
	ModTime time.Time

	// Mode is preserved when the entry is copied.
	Mode os.FileMode

	// Hidden is informational only. It's never consulted when diffing trees.
	Hidden bool
}

// An Index is an ordered mapping from root-relative paths to entries.
//
// Entries are stored in post-order: every entry under a directory appears
// strictly before the directory's own entry. Iterating in stored order
// visits children before their parents, which is what the delete phase
// needs. Iterating in reverse visits parents before their children, which
// is what the create phase needs.
//
// An Index is built once per scan and never modified afterwards.
type Index struct {
	entries []Entry
	byPath  map[string]int
}

func newIndex() *Index {
	return &Index{byPath: map[string]int{}}
}

func (index *Index) add(entry Entry) {
	index.byPath[entry.RelPath] = len(index.entries)
	index.entries = append(index.entries, entry)
}

// Get returns the entry stored for relPath.
func (index *Index) Get(relPath string) (Entry, bool) {
	i, ok := index.byPath[relPath]
	if !ok {
		return Entry{}, false
	}
	return index.entries[i], true
}

// Has returns whether relPath is present in the index.
func (index *Index) Has(relPath string) bool {
	_, ok := index.byPath[relPath]
	return ok
}

// Entries returns the entries in stored (post-order) order. The returned
// slice is a copy, so callers can't modify an Index after its scan built it.
func (index *Index) Entries() []Entry {
	entries := make([]Entry, len(index.entries))
	copy(entries, index.entries)
	return entries
}

// Len returns the number of entries in the index.
func (index *Index) Len() int {
	return len(index.entries)
}
