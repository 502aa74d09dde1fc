package dump

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/treesync/treesync/cmd/util"
	"github.com/treesync/treesync/pkg/config"
	"github.com/treesync/treesync/pkg/errors"
	"github.com/treesync/treesync/pkg/scan"
)

// New creates a new `dump` command.
func New() *cobra.Command {
	var excludeFile string

	cmd := &cobra.Command{
		Use:   "dump PATH",
		Short: "Print the scanned index of a directory tree.",
		Long: "Print the scanned index of a directory tree, one entry per\n" +
			"line in stored order. Children are listed before their parent\n" +
			"directory, matching the order the sync engine processes them in.",
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			exclusions, err := config.ParseExclusions(excludeFile)
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "parse exclusions"))
			}

			index, err := scan.Scan(args[0], exclusions, true)
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "scan"))
			}

			for _, entry := range index.Entries() {
				fmt.Println(formatEntry(entry))
			}
		},
	}

	cmd.Flags().StringVar(&excludeFile, "exclude-file", config.DefaultExcludeFile,
		"path to the exclusion list")
	return cmd
}

func formatEntry(entry scan.Entry) string {
	kind := "file"
	if entry.IsDir {
		kind = "dir "
	}

	hidden := " "
	if entry.Hidden {
		hidden = "h"
	}

	return fmt.Sprintf("%s %s %10d  %s  %s", kind, hidden, entry.Size,
		entry.ModTime.Format(time.RFC3339), entry.RelPath)
}
