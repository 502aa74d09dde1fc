package scan

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModTime = time.Date(2020, 3, 14, 10, 30, 0, 0, time.UTC)

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
	require.NoError(t, fs.Chtimes(path, testModTime, testModTime))
}

func relPaths(index *Index) (paths []string) {
	for _, entry := range index.Entries() {
		paths = append(paths, entry.RelPath)
	}
	return paths
}

func TestScan(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFile(t, "/src/b.txt", "contents-b")
	writeFile(t, "/src/a/x.txt", "0123456789")
	writeFile(t, "/src/.hidden", "h")

	index, err := Scan("/src", nil, false)
	require.NoError(t, err)

	// Children come before their parent directory, and the root itself is
	// never indexed.
	assert.Equal(t, []string{".hidden", "a/x.txt", "a", "b.txt"}, relPaths(index))
	assert.Equal(t, 4, index.Len())
	assert.False(t, index.Has("src"))
	assert.False(t, index.Has(""))

	xFile, ok := index.Get("a/x.txt")
	require.True(t, ok)
	assert.Equal(t, "/src/a/x.txt", xFile.AbsPath)
	assert.False(t, xFile.IsDir)
	assert.False(t, xFile.Hidden)
	assert.Equal(t, int64(10), xFile.Size)
	assert.True(t, testModTime.Equal(xFile.ModTime))

	aDir, ok := index.Get("a")
	require.True(t, ok)
	assert.True(t, aDir.IsDir)

	hidden, ok := index.Get(".hidden")
	require.True(t, ok)
	assert.True(t, hidden.Hidden)
}

func TestScanExclusions(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFile(t, "/src/keep.txt", "keep")
	writeFile(t, "/src/skip/inner.txt", "inner")
	writeFile(t, "/src/skip.txt", "skip")

	exclusions := ExclusionSet{
		"/src/skip":     {},
		"/src/skip.txt": {},
	}

	honored, err := Scan("/src", exclusions, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, relPaths(honored))

	// Destination scans pass honorExclusions=false so that previously
	// excluded leftovers are still indexed (and cleaned up).
	ignored, err := Scan("/src", exclusions, false)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"keep.txt", "skip/inner.txt", "skip", "skip.txt"},
		relPaths(ignored))
}

func TestScanErrors(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFile(t, "/src/file.txt", "contents")

	tests := []struct {
		name   string
		root   string
		expErr string
	}{
		{
			name:   "Missing",
			root:   "/nope",
			expErr: `"/nope" does not exist`,
		},
		{
			name:   "NotADirectory",
			root:   "/src/file.txt",
			expErr: `invalid path "/src/file.txt": not a directory`,
		},
		{
			name:   "TrailingSeparator",
			root:   "/src/",
			expErr: `invalid path "/src/": trailing separator`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Scan(test.root, nil, true)
			assert.EqualError(t, err, test.expErr)
		})
	}
}

// unreadableFs refuses to open one path, simulating a permission-denied
// directory listing.
type unreadableFs struct {
	afero.Fs
	path string
}

func (f unreadableFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

func TestScanUnreadableDirectory(t *testing.T) {
	base := afero.NewMemMapFs()
	fs = base
	writeFile(t, "/src/ok/file.txt", "ok")
	writeFile(t, "/src/locked/secret.txt", "secret")
	writeFile(t, "/src/z.txt", "z")

	fs = unreadableFs{Fs: base, path: "/src/locked"}

	// The unreadable directory degrades to "no children": the scan still
	// succeeds, the directory itself is indexed, and its contents aren't.
	index, err := Scan("/src", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok/file.txt", "ok", "locked", "z.txt"}, relPaths(index))
	assert.False(t, index.Has("locked/secret.txt"))
}

func TestEntriesReturnsCopy(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFile(t, "/src/a.txt", "a")

	index, err := Scan("/src", nil, false)
	require.NoError(t, err)

	entries := index.Entries()
	entries[0].RelPath = "mutated"

	assert.Equal(t, "a.txt", index.Entries()[0].RelPath)
	assert.True(t, index.Has("a.txt"))
	assert.False(t, index.Has("mutated"))
}

func TestPostOrderInvariant(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFile(t, "/src/a/b/c/deep.txt", "deep")
	writeFile(t, "/src/a/b/x.txt", "x")
	writeFile(t, "/src/a/top.txt", "top")
	writeFile(t, "/src/m/n.txt", "n")
	writeFile(t, "/src/z.txt", "z")

	index, err := Scan("/src", nil, false)
	require.NoError(t, err)

	position := map[string]int{}
	for i, entry := range index.Entries() {
		position[entry.RelPath] = i
	}

	// Every descendant of a directory must appear strictly before the
	// directory itself.
	for _, dir := range index.Entries() {
		if !dir.IsDir {
			continue
		}

		prefix := dir.RelPath + string(os.PathSeparator)
		for _, entry := range index.Entries() {
			if !strings.HasPrefix(entry.RelPath, prefix) {
				continue
			}
			assert.Less(t, position[entry.RelPath], position[dir.RelPath],
				"%q should precede %q", entry.RelPath, dir.RelPath)
		}
	}
}
