// SPDX-License-Identifier: Apache-2.0
package key

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a public or private key",
		Long: `Import a key from an armored or binary file into the keyring.

A private key is stored as supplied. With --check the passphrase is
asked for and must unlock the key before it is imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyPath := args[0]

			keys, err := cmdutil.OpenKeyring()
			if err != nil {
				return err
			}

			pass := ""
			if check {
				resolver, err := cmdutil.Resolver(cmd, "")
				if err != nil {
					return err
				}
				pass, err = resolver.Get(keys.Dir(), "Passphrase of the imported key")
				if err != nil {
					return err
				}
			}

			fmt.Println()
			fmt.Println(config.CurrentTheme.SubtleStyle().Render("Importing key..."))
			cmdutil.PrintField("File:", keyPath)
			fmt.Println()

			id, err := keys.Import(keyPath, pass)
			if err != nil {
				return err
			}
			info, err := keys.Info(id)
			if err != nil {
				return err
			}

			if err := keysChanged(keys); err != nil {
				return err
			}

			cmdutil.PrintSuccess("Key imported successfully!")
			fmt.Println()
			cmdutil.PrintField("Key ID:", info.KeyID)
			cmdutil.PrintField("Name:", info.Name)
			cmdutil.PrintField("Email:", info.Email)
			cmdutil.PrintField("Trust:", info.Trust.String())
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Verify the passphrase unlocks an imported private key")
	cmdutil.AddPassphraseFlags(cmd)

	return cmd
}
