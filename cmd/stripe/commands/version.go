package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display the CLI build and the client library and Stripe API versions it uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version        string `json:"version"         yaml:"version"`
				Commit         string `json:"commit"          yaml:"commit"`
				Built          string `json:"built"           yaml:"built"`
				LibraryVersion string `json:"library_version" yaml:"library_version"`
				APIVersion     string `json:"api_version"     yaml:"api_version"`
			}

			versionInfo := VersionInfo{
				Version:        version,
				Commit:         commit,
				Built:          date,
				LibraryVersion: constants.LibraryName + "/" + constants.LibraryVersion,
				APIVersion:     constants.APIVersion,
			}

			return outputResult(cmd.OutOrStdout(), versionInfo, []string{"Property", "Value"}, [][]string{
				{"Version", versionInfo.Version},
				{"Commit", versionInfo.Commit},
				{"Built", versionInfo.Built},
				{"Library", versionInfo.LibraryVersion},
				{"Stripe API Version", versionInfo.APIVersion},
			})
		},
	}
}
