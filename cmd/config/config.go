// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage keep configuration",
		Long: `Manage keep configuration settings.

Settings live in ~/.config/keep/config.yaml, grouped in sections
(settings, keyring, app) on top of built-in defaults. Keys are given by
bare name (armor) or in full (keyring.armor). Every change rewrites the
whole file; settings unknown to this version are preserved.

KEEP_LOG_LEVEL and KEEP_USE_TUI override the file for a single run.`,
		Example: `  # Change a setting
  keep config set armor false

  # Show a setting
  keep config get path_store

  # Restore the default
  keep config unset armor

  # List all settings
  keep config list`,
	}

	// Add subcommands
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPathCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.Config()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Path())
			return nil
		},
	}
}
