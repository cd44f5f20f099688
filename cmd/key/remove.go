// SPDX-License-Identifier: Apache-2.0
package key

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:     "remove [key-id...]",
		Aliases: []string{"rm"},
		Short:   "Remove keys from the keyring",
		Long: `Remove keys from the local keyring. Secrets already encrypted to a
removed key keep working for the remaining recipients only.

Removing a private key is irreversible, so the key id has to be typed
to confirm unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("give key ids or --all")
			}

			theme := config.CurrentTheme

			keys, err := cmdutil.OpenKeyring()
			if err != nil {
				return err
			}

			ids := args
			if all {
				ids = keys.KeyIDs()
			}
			if len(ids) == 0 {
				fmt.Println(theme.SubtleStyle().Render("No keys to remove"))
				return nil
			}

			if !yes && cmdutil.IsInteractive() {
				ok, err := ui.ConfirmKeyRemoval(ids)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(theme.SubtleStyle().Render("Cancelled"))
					return nil
				}
			}

			removed, err := keys.Remove(ids...)
			if err != nil {
				return err
			}

			if err := keysChanged(keys); err != nil {
				return err
			}

			for _, id := range removed {
				cmdutil.PrintSuccess("Removed key %s", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every key")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
