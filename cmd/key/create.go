// SPDX-License-Identifier: Apache-2.0
package key

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		keyName   string
		keyEmail  string
		keyExpiry string
	)

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"generate"},
		Short:   "Generate a new key pair",
		Long: `Generate a new OpenPGP key pair and add it to the keyring.

The private key is protected with a passphrase when one is supplied:
  - Interactive prompt (asked twice)
  - Environment variable: KEEP_PASSPHRASE
  - Stdin (for scripts)

An empty passphrase leaves the private key unprotected.`,
		Example: `  keep key create --name "Alice" --email alice@example.com
  KEEP_PASSPHRASE=secret keep key create --email ci@example.com --expiry 1y`,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := config.CurrentTheme
			subtleStyle := theme.SubtleStyle()

			resolver, err := cmdutil.Resolver(cmd, "")
			if err != nil {
				return err
			}
			pass, err := resolver.New("Passphrase for the new key (empty for none)")
			if err != nil {
				return err
			}

			keys, err := cmdutil.OpenKeyring()
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println(subtleStyle.Render("Generating key pair..."))
			cmdutil.PrintField("Name:", keyName)
			cmdutil.PrintField("Email:", keyEmail)
			cmdutil.PrintField("Expiry:", keyExpiry)
			fmt.Println()

			info, err := keys.Create(keyring.CreateOptions{
				Name:       keyName,
				Email:      keyEmail,
				Passphrase: pass,
				Expiry:     keyExpiry,
			})
			if err != nil {
				return err
			}

			if err := keysChanged(keys); err != nil {
				return err
			}

			cmdutil.PrintSuccess("Key generated successfully!")
			fmt.Println()
			cmdutil.PrintField("Key ID:", info.KeyID)
			cmdutil.PrintField("Fingerprint:", info.Fingerprint)
			cmdutil.PrintField("Protected:", fmt.Sprint(info.Locked))
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&keyName, "name", "", "Key owner name")
	cmd.Flags().StringVar(&keyEmail, "email", "", "Key email")
	cmd.Flags().StringVar(&keyExpiry, "expiry", "0", "Key expiration (0=never, <n>=days, <n>w=weeks, <n>m=months, <n>y=years)")

	return cmd
}
