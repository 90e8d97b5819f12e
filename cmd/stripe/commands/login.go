package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Stripe API key",
		Long: `Verify a secret API key against the Stripe API and save it in the config file.

The key is taken from --api-key or STRIPE_API_KEY, or read from the terminal
without echo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := viper.GetString("api_key")

			if apiKey == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "API key: ")

				keyBytes, err := term.ReadPassword(int(os.Stdin.Fd())) // #nosec G115 -- file descriptors fit in int
				fmt.Fprintln(cmd.ErrOrStderr())

				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				apiKey = strings.TrimSpace(string(keyBytes))
			}

			if apiKey == "" {
				return constants.ErrEmptyAPIKey
			}

			viper.Set("api_key", apiKey)

			if !skipVerify {
				_, err := listItems(cmd, stripe.ListCustomers(&stripe.CustomerListParams{
					ListParams: stripe.ListParams{Limit: stripe.Int64(1)},
				}), 1, false)
				if err != nil {
					return fmt.Errorf("failed to verify API key: %w", err)
				}
			}

			config, err := loadConfigFile()
			if err != nil {
				return err
			}

			config.APIKey = apiKey

			if base := viper.GetString("api_base"); base != "" {
				config.APIBase = base
			}

			err = saveConfigFile(config)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved API key %s to %s\n", maskSecret(apiKey), configFilePath())

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "save the key without calling the API")

	return cmd
}
