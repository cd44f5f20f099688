// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	var (
		folder bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:     "rm <path>",
		Aliases: []string{"remove"},
		Short:   "Delete a secret or folder",
		Long: `Delete a secret, or with --folder a folder and everything below it.
A secret and a folder sharing a name are removed separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := storepath.Clean(args[0])
			if err != nil {
				return err
			}

			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			if !yes && cmdutil.IsInteractive() {
				ok, err := ui.ConfirmRemoval(rel, !folder, folder)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(config.CurrentTheme.SubtleStyle().Render("Cancelled"))
					return nil
				}
			}

			if folder {
				err = s.RemoveFolder(rel)
			} else {
				err = s.RemoveSecret(rel)
			}
			if err != nil {
				return err
			}

			cmdutil.PrintSuccess("Deleted %s", rel)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&folder, "folder", "r", false, "Delete a folder recursively")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
