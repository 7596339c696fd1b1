package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civigo-io/civigo/internal/constants"
)

// configKeys are the keys the config command manages.
var configKeys = []string{
	"url",
	"api_key",
	"site_key",
	"api_version",
	"transport",
	"cv",
	"cwd",
	"context_command",
	"output",
	"skip_ssl_validation",
}

// secretKeys are masked when displayed.
var secretKeys = map[string]bool{
	"api_key":  true,
	"site_key": true,
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigListCommand())

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, viper.GetString(args[0]))

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key == "" {
				return ErrConfigKeyRequired
			}

			viper.Set(key, args[1])

			return writeConfig()
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], "")

			return writeConfig()
		},
	}
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range configKeys {
				value := viper.GetString(key)
				if value == "" {
					continue
				}

				if secretKeys[key] {
					value = "***"
				}

				fmt.Fprintf(stdout, "%s: %s\n", key, value)
			}

			return nil
		},
	}
}

// writeConfig persists the current configuration to the active config file,
// creating ~/.civi/config.yml when none is in use yet.
func writeConfig() error {
	if file := viper.ConfigFileUsed(); file != "" {
		if err := viper.WriteConfig(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home directory: %w", err)
	}

	configDir := filepath.Join(home, ".civi")
	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, "config.yml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return os.Chmod(configFile, constants.ConfigFilePerm)
}
