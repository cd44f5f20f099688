// SPDX-License-Identifier: Apache-2.0
package key

import (
	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/spf13/cobra"
)

// NewKeyCmd creates the key command and its subcommands
func NewKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"keys"},
		Short:   "Manage OpenPGP keys",
		Long: `Create, import, export and remove the OpenPGP keys secrets are encrypted to.

Every enabled key in the keyring is a recipient of every secret written.
Disabled keys stay in the keyring but receive nothing new.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newEnableCmd())
	cmd.AddCommand(newDisableCmd())

	return cmd
}

// keysChanged refreshes the recipients manifest after the keyring changed
func keysChanged(keys *keyring.Keyring) error {
	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}
	s, err := store.Open(cfg, keys)
	if err != nil {
		return err
	}
	return s.KeysChanged()
}
