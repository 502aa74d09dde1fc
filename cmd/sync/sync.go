package sync

import (
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/treesync/treesync/cmd/util"
	"github.com/treesync/treesync/pkg/config"
	"github.com/treesync/treesync/pkg/errors"
	"github.com/treesync/treesync/pkg/scan"
	"github.com/treesync/treesync/pkg/sync"
	"github.com/treesync/treesync/pkg/watch"
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var configPath string
	var excludeFile string
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "sync SOURCE DESTINATION",
		Short: "Make the destination directory tree match the source.",
		Long: "Make the destination directory tree match the source.\n\n" +
			"Destination entries that don't exist in the source are deleted,\n" +
			"and entries that are new or changed in the source are created or\n" +
			"copied over. Files are considered changed when their size or\n" +
			"modification time differs. Symbolic links are never followed,\n" +
			"copied, or deleted.",
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			cfg, err := config.Parse(configPath)
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "parse config"))
			}
			if excludeFile != "" {
				cfg.ExcludeFile = excludeFile
			}

			exclusions, err := config.ParseExclusions(cfg.ExcludeFile)
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "parse exclusions"))
			}

			srcRoot, dstRoot := args[0], args[1]
			if err := run(srcRoot, dstRoot, exclusions); err != nil {
				util.HandleFatalError(err)
			}

			if !watchMode {
				return
			}

			debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
			changes, err := watch.Watch(srcRoot, debounce, clockwork.NewRealClock())
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "watch source"))
			}

			log.WithField("path", srcRoot).Info("Watching for changes")
			for range changes {
				if err := run(srcRoot, dstRoot, exclusions); err != nil {
					// A scan failure here usually means the tree is mid-edit.
					// The next change notification retries from scratch.
					log.WithError(err).Error("Sync failed")
				}
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigPath,
		"path to the treesync configuration file")
	cmd.Flags().StringVar(&excludeFile, "exclude-file", "",
		"path to the exclusion list (overrides the configuration file)")
	cmd.Flags().BoolVar(&watchMode, "watch", false,
		"keep running, and re-sync whenever the source tree changes")
	return cmd
}

// run performs one scan of both trees followed by one reconciliation.
func run(srcRoot, dstRoot string, exclusions scan.ExclusionSet) error {
	log.WithField("path", srcRoot).Info("Scanning source")
	srcIndex, err := scan.Scan(srcRoot, exclusions, true)
	if err != nil {
		return errors.WithContext(err, "scan source")
	}

	// The destination scan ignores the exclusion list so that leftovers from
	// previously excluded paths still get cleaned up.
	log.WithField("path", dstRoot).Info("Scanning destination")
	dstIndex, err := scan.Scan(dstRoot, nil, false)
	if err != nil {
		return errors.WithContext(err, "scan destination")
	}

	report := sync.Reconcile(srcIndex, dstIndex, dstRoot)
	if failures := report.Failures(); len(failures) > 0 {
		log.Warnf("%d of %d operations failed", len(failures), len(report.Outcomes))
	}
	return nil
}
