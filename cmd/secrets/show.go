// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var (
		reveal   bool
		markdown bool
		field    string
	)

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Decrypt and display a secret",
		Long: `Decrypt a secret and display its fields.

The password is masked unless --reveal is given. With --field only the
raw value of that field is printed, which suits scripts.`,
		Example: `  keep show bank
  keep show work/vpn --reveal
  keep show bank --field password`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, keys, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			var secret *store.Secret
			err = cmdutil.WithPassphrase(cmd, keys, func(pass string) error {
				var err error
				secret, err = s.ReadSecret(args[0], pass)
				return err
			})
			if err != nil {
				return err
			}

			theme := config.CurrentTheme
			for _, m := range secret.Malformed {
				fmt.Println(theme.WarningMessage(m.Error()))
			}

			if field != "" {
				value, ok := secret.Record.Get(fieldName(field))
				if !ok {
					return fmt.Errorf("secret %s has no field %q", secret.Path, field)
				}
				fmt.Println(value)
				return nil
			}

			if markdown {
				rendered, err := cmdutil.RenderMarkdown(ui.RecordMarkdown(secret.Path, secret.Record, reveal))
				if err == nil {
					fmt.Print(rendered)
					return nil
				}
			}

			fmt.Println(ui.RenderRecord(secret.Path, secret.Record, reveal))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show the password in clear text")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the secret as a markdown table")
	cmd.Flags().StringVar(&field, "field", "", "Print only the raw value of this field")
	cmdutil.AddPassphraseFlags(cmd)

	return cmd
}
