// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newIgnoreCmd() *cobra.Command {
	var folder bool

	cmd := &cobra.Command{
		Use:   "ignore [path]",
		Short: "Hide a secret or folder from listings",
		Long: `Hide a secret, or with --folder a folder and its subtree, from the tree.
The entry is kept in the configuration until it is unignored or no longer
exists. Without a path the ignored entries are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				printIgnored(s.Ignored())
				return nil
			}

			changed, err := s.Ignore(args[0], folder)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println(config.CurrentTheme.SubtleStyle().Render(args[0] + " is already ignored"))
				return nil
			}

			cmdutil.PrintSuccess("Ignoring %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&folder, "folder", "r", false, "Ignore a folder")

	return cmd
}

func newUnignoreCmd() *cobra.Command {
	var folder bool

	cmd := &cobra.Command{
		Use:   "unignore <path>",
		Short: "Show an ignored secret or folder again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			changed, err := s.Unignore(args[0], folder)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println(config.CurrentTheme.SubtleStyle().Render(args[0] + " is not ignored"))
				return nil
			}

			cmdutil.PrintSuccess("No longer ignoring %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&folder, "folder", "r", false, "Unignore a folder")

	return cmd
}

func printIgnored(files, dirs []string) {
	theme := config.CurrentTheme
	if len(files)+len(dirs) == 0 {
		fmt.Println(theme.SubtleStyle().Render("Nothing is ignored"))
		return
	}
	for _, d := range dirs {
		fmt.Println(theme.FolderStyle().Render(d + "/"))
	}
	for _, f := range files {
		fmt.Println(theme.SecretStyle().Render(f))
	}
}
