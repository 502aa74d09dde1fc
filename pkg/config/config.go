package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/treesync/treesync/pkg/errors"
)

// DefaultConfigPath is where the CLI looks for its configuration when
// --config isn't given. The file is optional.
const DefaultConfigPath = "treesync.yaml"

// DefaultExcludeFile is the exclusion list consulted when the config file
// doesn't name one. The file is optional as well.
const DefaultExcludeFile = "exclude.conf"

// DefaultDebounceSeconds is how long watch mode waits after a filesystem
// event before re-syncing, so that bursts of changes coalesce into one run.
const DefaultDebounceSeconds = 2

// InitialConfigVersion is the first version of the treesync config. Config
// files that do not specify a version will default to this version.
const InitialConfigVersion = "v1alpha1"

// SupportedConfigVersion is the supported version of the treesync config of
// the current treesync binary.
const SupportedConfigVersion = "v1alpha1"

// Config contains the optional settings parsed from treesync.yaml.
type Config struct {
	Version     string      `json:"version,omitempty"`
	ExcludeFile string      `json:"excludeFile,omitempty"`
	Watch       WatchConfig `json:"watch,omitempty"`
}

// WatchConfig contains the settings for watch mode.
type WatchConfig struct {
	DebounceSeconds int `json:"debounceSeconds,omitempty"`
}

func (c Config) getVersion() string {
	return c.Version
}

// Parse parses the treesync configuration at path. A missing file is not an
// error; the defaults are returned.
func Parse(path string) (Config, error) {
	config := Config{
		Version:     InitialConfigVersion,
		ExcludeFile: DefaultExcludeFile,
		Watch:       WatchConfig{DebounceSeconds: DefaultDebounceSeconds},
	}
	if err := parseConfig(path, &config, SupportedConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return config, nil
		}
		return Config{}, errors.WithContext(err, "parse")
	}

	// Expand ~'s so the exclusion list can live in the user's home directory.
	excludeFile, err := homedir.Expand(config.ExcludeFile)
	if err != nil {
		return Config{}, errors.WithContext(err, "expand homedir")
	}
	config.ExcludeFile = filepath.Clean(excludeFile)

	if config.Watch.DebounceSeconds <= 0 {
		config.Watch.DebounceSeconds = DefaultDebounceSeconds
	}
	return config, nil
}

// parseConfigErrTemplate is a template for when the CLI fails to parse yaml
// configuration files. This can happen for a multitude of reasons, including
// extraneous fields and incorrect field types. However, the yaml library
// constructs errors in a way that loses context, and so we can only pass the
// error message on.
const parseConfigErrTemplate = "Configuration file could not be parsed. " +
	"Please review %q.\n" +
	"Common pitfalls include:\n" +
	" - Using the wrong types for fields\n" +
	" - Having extra fields inside the config file\n\n" +
	"For reference, here is the error from the parser:\n" +
	"%s"

type configInterface interface {
	getVersion() string
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of treesync.\n"+
		"Expected version %q, but got %q.", err.path, err.exp, err.actual)
}

func parseConfig(path string, config configInterface, expVersion string) error {
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	err = yaml.Unmarshal(configBytes, config)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	if config.getVersion() != expVersion {
		return incompatibleVersionError{path, expVersion, config.getVersion()}
	}

	// Do a strict unmarshal to check for any extra fields. We do a non-strict
	// unmarshal first so that we can catch version errors before erroring on
	// extra fields.
	err = yaml.UnmarshalStrict(configBytes, config, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return nil
}

func isPathNotFoundError(err error) bool {
	return os.IsNotExist(err)
}
