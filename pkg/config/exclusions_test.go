package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treesync/treesync/pkg/scan"
)

func TestParseExclusions(t *testing.T) {
	fs = afero.NewMemMapFs()
	contents := "# paths that should never be synced\n" +
		"\n" +
		"/tmp/skip\n" +
		"  /tmp/other  \n" +
		"# trailing separators are normalized away\n" +
		"/tmp/dir/\n"
	require.NoError(t, afero.WriteFile(fs, "exclude.conf", []byte(contents), 0644))

	set, err := ParseExclusions("exclude.conf")
	require.NoError(t, err)
	assert.Equal(t, scan.ExclusionSet{
		"/tmp/skip":  {},
		"/tmp/other": {},
		"/tmp/dir":   {},
	}, set)

	assert.True(t, set.Has("/tmp/skip"))
	assert.False(t, set.Has("/tmp/skip/child"))
}

func TestParseExclusionsMissingFile(t *testing.T) {
	fs = afero.NewMemMapFs()

	set, err := ParseExclusions("missing.conf")
	require.NoError(t, err)
	assert.Empty(t, set)
}
