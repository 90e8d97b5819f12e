package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

const configDirName = ".stripe-client"

// Config represents the CLI configuration file.
type Config struct {
	APIKey       string `json:"api_key,omitempty"       yaml:"api_key,omitempty"`
	APIBase      string `json:"api_base,omitempty"      yaml:"api_base,omitempty"`
	Account      string `json:"account,omitempty"       yaml:"account,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`
	Keystore     string `json:"keystore,omitempty"      yaml:"keystore,omitempty"`
	KeystorePath string `json:"keystore_path,omitempty" yaml:"keystore_path,omitempty"`
	NATSURL      string `json:"nats_url,omitempty"      yaml:"nats_url,omitempty"`
}

// configFields maps configuration keys to their fields.
var configFields = map[string]func(*Config) *string{
	"api_key":       func(c *Config) *string { return &c.APIKey },
	"api_base":      func(c *Config) *string { return &c.APIBase },
	"account":       func(c *Config) *string { return &c.Account },
	"output":        func(c *Config) *string { return &c.Output },
	"keystore":      func(c *Config) *string { return &c.Keystore },
	"keystore_path": func(c *Config) *string { return &c.KeystorePath },
	"nats_url":      func(c *Config) *string { return &c.NATSURL },
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and edit the settings stored in the CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are merged",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := effectiveConfig()
			config.APIKey = maskSecret(config.APIKey)

			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				return writeJSON(out, config)
			case constants.FormatYAML:
				return writeYAML(out, config)
			default:
				return displayConfigTable(out, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value in the config file. Keys: " + configKeyList(),
		Args:  cobra.ExactArgs(2), //nolint:mnd // KEY and VALUE
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd.OutOrStdout(), "set", args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd.OutOrStdout(), "unset", args[0], "")
		},
	}
}

func updateConfigValue(out io.Writer, action, key, value string) error {
	field, ok := configFields[key]
	if !ok {
		return fmt.Errorf("%w: %q (valid keys: %s)", constants.ErrUnknownConfigKey, key, configKeyList())
	}

	config, err := loadConfigFile()
	if err != nil {
		return err
	}

	*field(config) = value

	err = saveConfigFile(config)
	if err != nil {
		return err
	}

	if key == "api_key" {
		value = maskSecret(value)
	}

	return outputConfigUpdateResult(out, action, key, value)
}

// effectiveConfig merges flags, STRIPE_* environment variables and the config file.
func effectiveConfig() *Config {
	return &Config{
		APIKey:       viper.GetString("api_key"),
		APIBase:      viper.GetString("api_base"),
		Account:      viper.GetString("account"),
		Output:       viper.GetString("output"),
		Keystore:     viper.GetString("keystore"),
		KeystorePath: viper.GetString("keystore_path"),
		NATSURL:      viper.GetString("nats_url"),
	}
}

func configFilePath() string {
	if path := viper.GetString("config"); path != "" {
		return path
	}

	return filepath.Join(configDir(), "config.yml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}

	return filepath.Join(home, configDirName)
}

// loadConfigFile reads only the config file, so that flag and environment
// overrides are never persisted.
func loadConfigFile() (*Config, error) {
	config := &Config{}

	// #nosec G304 -- the path comes from the user's own --config flag or home directory
	data, err := os.ReadFile(configFilePath())
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func saveConfigFile(config *Config) error {
	configFile := configFilePath()

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func configKeyList() string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return strings.Join(keys, ", ")
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= constants.SecretVisiblePrefix {
		return constants.MaskedSecret
	}

	return secret[:constants.SecretVisiblePrefix] + constants.MaskedSecret
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	rows := [][]string{
		{"API Key", formatConfigValue(config.APIKey)},
		{"API Base", formatConfigValue(config.APIBase)},
		{"Account", formatConfigValue(config.Account)},
		{"Output", formatConfigValue(config.Output)},
		{"Key Store", formatConfigValue(config.Keystore)},
		{"Key Store Path", formatConfigValue(config.KeystorePath)},
		{"NATS URL", formatConfigValue(config.NATSURL)},
		{"Config File", configFilePath()},
	}

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append config row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render config table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func outputConfigUpdateResult(out io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		return writeJSON(out, result)
	case constants.FormatYAML:
		return writeYAML(out, result)
	default:
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		_ = table.Append([]string{"Action", action})
		_ = table.Append([]string{"Key", key})

		if value != "" {
			_ = table.Append([]string{"Value", value})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render update results table: %w", err)
		}

		return nil
	}
}

func writeJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func writeYAML(out io.Writer, value interface{}) error {
	encoder := yaml.NewEncoder(out)

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}
