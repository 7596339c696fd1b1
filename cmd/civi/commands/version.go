package commands

import (
	"github.com/spf13/cobra"

	"github.com/civigo-io/civigo/pkg/civi"
)

// NewVersionCommand creates the version command. Build metadata goes through
// the same rendering path as API results, so it honors the output flag.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display version, commit, and build date of the civi CLI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return renderResult(stdout, civi.Result{{
				"version": version,
				"commit":  commit,
				"built":   date,
			}})
		},
	}
}
