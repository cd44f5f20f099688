// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all configuration values",
		Long: `List all configuration values with their sources.

Output format: section.key = value (source), where source is "default"
when the value matches the built-in default and "user" otherwise.
Settings unknown to this version are listed last.`,
		Example: `  # List all configuration
  keep config list

  # Example output:
  # keyring.armor = true (default)
  # settings.path_store = /home/alice/secrets (user)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.Config()
			if err != nil {
				return err
			}

			for _, cv := range cfg.List() {
				fmt.Printf("%s.%s = %v (%s)\n", cv.Section, cv.Key, cv.Value, cv.Source)
			}

			extra := cfg.Extra()
			if len(extra) > 0 {
				fmt.Println()
				fmt.Println(config.CurrentTheme.SubtleStyle().Render("Unknown settings (preserved):"))
				for _, key := range slices.Sorted(maps.Keys(extra)) {
					fmt.Printf("%s = %v\n", key, extra[key])
				}
			}

			fmt.Println("\n" + config.CurrentTheme.SubtleStyle().Render("Configuration precedence: flags > ENV > "+cfg.Path()+" > defaults"))

			return nil
		},
	}

	return cmd
}
