// SPDX-License-Identifier: Apache-2.0
package key

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <key-id>",
		Short: "Make a key a recipient again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			changed, err := s.EnableKey(args[0])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println(config.CurrentTheme.SubtleStyle().Render("Key is already enabled"))
				return nil
			}

			cmdutil.PrintSuccess("Enabled key %s", args[0])
			return nil
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <key-id>",
		Short: "Stop encrypting new secrets to a key",
		Long: `Keep a key in the keyring but leave it out of the recipient set.
Existing secrets are not re-encrypted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			changed, err := s.DisableKey(args[0])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println(config.CurrentTheme.SubtleStyle().Render("Key is already disabled"))
				return nil
			}

			cmdutil.PrintSuccess("Disabled key %s", args[0])
			if len(s.Recipients()) == 0 {
				fmt.Println(config.CurrentTheme.WarningMessage("No enabled keys remain: new secrets cannot be written"))
			}
			return nil
		},
	}
}
