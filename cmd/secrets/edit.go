// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"fmt"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

func newEditCmd() *cobra.Command {
	var (
		set      []string
		add      []string
		unset    []string
		password bool
	)

	cmd := &cobra.Command{
		Use:   "edit <path>",
		Short: "Change the fields of a secret",
		Long: `Decrypt a secret, change its fields and encrypt it again.

--set replaces a field or appends it when missing. --add always appends,
renaming the field to key_1, key_2, ... when the name is taken. --unset
removes a field; the password field cannot be removed. --password prompts
for a new password.`,
		Example: `  keep edit bank --set user=bob --unset pin
  keep edit work/vpn --add otp=123456
  keep edit bank --password`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(set)+len(add)+len(unset) == 0 && !password {
				return fmt.Errorf("nothing to change: use --set, --add, --unset or --password")
			}

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

			rec := secret.Record
			for _, f := range set {
				key, value, err := parseAssignment(f)
				if err != nil {
					return err
				}
				rec.Set(key, value)
			}
			for _, f := range add {
				key, value, err := parseAssignment(f)
				if err != nil {
					return err
				}
				if name := rec.AddUnique(key, value); name != key {
					fmt.Println(config.CurrentTheme.InfoMessage(fmt.Sprintf("Field %s exists, added as %s", key, name)))
				}
			}
			for _, key := range unset {
				key = fieldName(key)
				if key == record.PasswordField {
					return fmt.Errorf("the password field cannot be removed")
				}
				rec.Delete(key)
			}
			if password {
				value, err := ui.FieldInput("New password", "", true)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				rec.Set(record.PasswordField, value)
			}

			if err := s.WriteSecret(secret.Path, rec); err != nil {
				return err
			}

			cmdutil.PrintSuccess("Updated %s", secret.Path)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Set a field (key=value, repeatable)")
	cmd.Flags().StringArrayVar(&add, "add", nil, "Append a field under a free name (key=value, repeatable)")
	cmd.Flags().StringArrayVar(&unset, "unset", nil, "Remove a field (repeatable)")
	cmd.Flags().BoolVar(&password, "password", false, "Prompt for a new password")
	cmdutil.AddPassphraseFlags(cmd)

	return cmd
}
