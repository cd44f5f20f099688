// SPDX-License-Identifier: Apache-2.0
package key

import (
	"fmt"
	"os"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		binary bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "export <key-id> <output-path>",
		Short: "Export a key to a file",
		Long: `Export a key to a file.

An owned key is exported with its private half when it can be unlocked:
a protected key asks for its passphrase first. Without a usable
passphrase only the public half is written.

Existing files are not overwritten unless --force is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyID, outputPath := args[0], args[1]

			if _, err := os.Stat(outputPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outputPath)
			}

			keys, err := cmdutil.OpenKeyring()
			if err != nil {
				return err
			}
			info, err := keys.Info(keyID)
			if err != nil {
				return err
			}

			pass := ""
			if info.Owned() && info.Locked {
				resolver, err := cmdutil.Resolver(cmd, "")
				if err != nil {
					return err
				}
				pass, err = resolver.Get(keys.Dir(), "Passphrase of key "+info.KeyID)
				if err != nil {
					log.Debugf("No passphrase for %s, exporting public half: %v", info.KeyID, err)
				}
			}

			format := keyring.KeyFormatArmored
			if binary {
				format = keyring.KeyFormatBinary
			}

			fmt.Println()
			fmt.Println(config.CurrentTheme.SubtleStyle().Render("Exporting key..."))
			cmdutil.PrintField("Key ID:", info.KeyID)
			cmdutil.PrintField("Output:", outputPath)
			fmt.Println()

			private, err := keys.Export(outputPath, info.KeyID, pass, format)
			if err != nil {
				return err
			}

			if private {
				cmdutil.PrintSuccess("Exported public and private key")
			} else {
				cmdutil.PrintSuccess("Exported public key")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&binary, "binary", false, "Write binary instead of ASCII-armored output")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmdutil.AddPassphraseFlags(cmd)

	return cmd
}
