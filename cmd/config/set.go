// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set configuration value",
		Long: `Set a configuration key to a value and save the file.

Boolean values support natural language:
  - true:  true, yes, on, enable, enabled
  - false: false, no, off, disable, disabled

List values are comma separated.`,
		Args: cobra.ExactArgs(2),
		Example: `  # Set boolean values (multiple formats supported)
  keep config set armor false
  keep config set use_tui no

  # Set string values
  keep config set log_level debug

  # Set list values
  keep config set disabled_keys 0123456789ABCDEF,FEDCBA9876543210`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]

			cfg, err := cmdutil.Config()
			if err != nil {
				return err
			}

			full := key
			if section, ok := cfg.Section(key); ok {
				full = section + "." + key
			}
			value, err := config.ParseValue(full, raw)
			if err != nil {
				return err
			}

			changed, err := cfg.Change(key, value)
			if err != nil {
				return err
			}

			theme := config.CurrentTheme
			if !changed {
				fmt.Println(theme.SubtleStyle().Render(fmt.Sprintf("%s is already %v", key, value)))
				return nil
			}
			fmt.Println(theme.SuccessMessage(fmt.Sprintf("Set %s = %v", key, value)))
			return nil
		},
	}

	return cmd
}
