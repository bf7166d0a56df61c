package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peripherylabs/agentsync/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of agentsync.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("agentsync version %s\n", version.Version)
		},
	}
}
