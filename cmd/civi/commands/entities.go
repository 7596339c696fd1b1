package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEntitiesCommand creates the entities command.
func NewEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities registered for the configured API version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := versionFromViper()
			if err != nil {
				return err
			}

			for _, entity := range version.Entities() {
				fmt.Fprintln(stdout, entity)
			}

			return nil
		},
	}
}

// NewActionsCommand creates the actions command.
func NewActionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the actions registered for the configured API version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := versionFromViper()
			if err != nil {
				return err
			}

			for _, action := range version.Actions() {
				fmt.Fprintln(stdout, action)
			}

			return nil
		},
	}
}
