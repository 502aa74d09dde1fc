package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treesync/treesync/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of treesync.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("treesync version %s\n", version.Version)
		},
	}
}
