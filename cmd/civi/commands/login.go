package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command. It collects the endpoint and
// credentials, verifies them with a lightweight call, and persists them to
// the config file.
func NewLoginCommand() *cobra.Command {
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store CiviCRM endpoint and credentials",
		Long: `Store the CiviCRM base URL and API credentials in the config file.

The API key (and for APIv3 the site key) is prompted without echo. Unless
--skip-verification is given, the credentials are checked with a Contact.get
call before they are saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			baseURL := viper.GetString("url")
			if baseURL == "" {
				fmt.Print("CiviCRM base URL: ")

				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read base URL: %w", err)
				}

				baseURL = strings.TrimSpace(line)
			}

			apiKey, err := promptSecret("API key")
			if err != nil {
				return err
			}

			viper.Set("url", baseURL)
			viper.Set("api_key", apiKey)

			if strings.TrimPrefix(viper.GetString("api_version"), "v") == "3" {
				siteKey, err := promptSecret("Site key")
				if err != nil {
					return err
				}

				viper.Set("site_key", siteKey)
			}

			if !skipVerify {
				client, err := clientFromViper()
				if err != nil {
					return err
				}

				if _, err := client.Invoke(context.Background(), "Contact", "get", nil); err != nil {
					return fmt.Errorf("credential check failed: %w", err)
				}
			}

			if err := writeConfig(); err != nil {
				return err
			}

			fmt.Fprintln(stdout, "Credentials saved")

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipVerify, "skip-verification", false, "save credentials without a test call")

	return cmd
}

// promptSecret reads a secret from the terminal without echo.
func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)

	secret, err := term.ReadPassword(int(syscall.Stdin))

	fmt.Println()

	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	return strings.TrimSpace(string(secret)), nil
}
