// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value",
		Long: `Get the effective value of a setting.

The key is a bare setting name (path_store) or section.name
(settings.path_store).`,
		Args: cobra.ExactArgs(1),
		Example: `  keep config get path_store
  keep config get keyring.armor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.Config()
			if err != nil {
				return err
			}

			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s = %v\n", args[0], value)
			return nil
		},
	}

	return cmd
}
