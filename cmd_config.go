package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Prints the configuration after defaults, the config file and CRED_*
environment variables have been applied. The audit encryption key is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Audit.EncryptionKey != "" {
			shown.Audit.EncryptionKey = "********"
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(shown); err != nil {
			return err
		}
		return enc.Close()
	},
}
