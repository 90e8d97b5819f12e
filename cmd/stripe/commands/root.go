package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewRootCommand builds the stripe CLI with all subcommands attached and its
// persistent flags bound to viper.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stripe",
		Short: "Stripe API CLI",
		Long: `A command-line interface for the Stripe API.

Calls go through the typed client, so every mutating command can be retried
safely: --retries and --backoff reuse one idempotency key across attempts, and
--resume NAME persists that key so an interrupted call can be reissued later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.stripe-client/config.yml)")
	flags.String("api-key", "", "Stripe secret API key")
	flags.String("api-base", "", "API base URL (default https://api.stripe.com)")
	flags.String("account", "", "connected account id (acct_...) sent as Stripe-Account")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "log every HTTP attempt to stderr")
	flags.Int("retries", 0, "attempts for the call, reusing one idempotency key")
	flags.Bool("backoff", false, "wait with jittered exponential backoff between retries")
	flags.String("idempotency-key", "", "send this idempotency key (single attempt)")
	flags.String("resume", "", "persist the idempotency key under NAME and reuse it on rerun")
	flags.String("keystore", "bolt", "key store for --resume (bolt, nats, memory)")
	flags.String("keystore-path", "", "bolt key store file (default is $HOME/.stripe-client/keys.db)")
	flags.String("nats-url", "", "NATS server for the nats key store (default nats://127.0.0.1:4222)")

	for _, name := range []string{
		"config", "api-key", "api-base", "account", "output", "verbose",
		"keystore", "keystore-path", "nats-url",
	} {
		_ = viper.BindPFlag(flagKey(name), flags.Lookup(name))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewCustomersCommand())
	rootCmd.AddCommand(NewChargesCommand())
	rootCmd.AddCommand(NewPaymentIntentsCommand())

	return rootCmd
}

// flagKey maps a flag name to its viper and config file key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func initConfig() error {
	viper.SetConfigFile(configFilePath())
	viper.SetConfigType("yml")

	// STRIPE_API_KEY, STRIPE_API_BASE, ...
	viper.SetEnvPrefix("STRIPE")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	switch viper.GetString("output") {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, viper.GetString("output"))
	}
}

// setupLogger configures the zerolog logger used for per-attempt HTTP logs.
func setupLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// FormatError renders err for the terminal, adding the request log link and
// request id Stripe attached to API errors.
func FormatError(err error) string {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) || stripeErr.API == nil {
		return "Error: " + err.Error()
	}

	var builder strings.Builder

	builder.WriteString("Error: ")
	builder.WriteString(stripeErr.Message())

	fmt.Fprintf(&builder, "\n  type: %s", stripeErr.API.Category())

	if stripeErr.API.Code != "" {
		fmt.Fprintf(&builder, "\n  code: %s", stripeErr.API.Code)
	}

	if stripeErr.API.RequestID != "" {
		fmt.Fprintf(&builder, "\n  request: %s", stripeErr.API.RequestID)
	}

	if link := stripeErr.RequestLogURL(); link != "" {
		fmt.Fprintf(&builder, "\n  log: %s", link)
	}

	return builder.String()
}
