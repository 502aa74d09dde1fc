package config

import (
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/treesync/treesync/pkg/errors"
	"github.com/treesync/treesync/pkg/scan"
)

// ParseExclusions loads the exclusion list at path: one absolute path per
// line, with blank lines and `#`-prefixed comments skipped. Each line is
// normalized to the host platform's separator so membership tests against
// scanned paths are exact string comparisons.
//
// A missing file is not an error; it yields an empty set.
func ParseExclusions(path string) (scan.ExclusionSet, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return scan.ExclusionSet{}, nil
		}
		return nil, errors.WithContext(err, "read file")
	}

	set := scan.ExclusionSet{}
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern, err := homedir.Expand(line)
		if err != nil {
			return nil, errors.WithContext(err, "expand homedir")
		}

		set[filepath.Clean(filepath.FromSlash(pattern))] = struct{}{}
	}
	return set, nil
}
