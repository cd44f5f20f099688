// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newUnsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unset [key]",
		Aliases: []string{"reset"},
		Short:   "Restore the default value",
		Long:    `Restore a setting to its built-in default and save the file.`,
		Args:    cobra.ExactArgs(1),
		Example: `  keep config unset armor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			cfg, err := cmdutil.Config()
			if err != nil {
				return err
			}

			changed, err := cfg.Reset(key)
			if err != nil {
				return err
			}

			theme := config.CurrentTheme
			if !changed {
				fmt.Println(theme.SubtleStyle().Render(key + " already has its default value"))
				return nil
			}
			fmt.Println(theme.SuccessMessage("Restored default for " + key))
			return nil
		},
	}

	return cmd
}
