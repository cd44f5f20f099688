// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

func newInsertCmd() *cobra.Command {
	var (
		fields []string
		force  bool
		unique bool
	)

	cmd := &cobra.Command{
		Use:     "insert <path>",
		Aliases: []string{"add"},
		Short:   "Create a secret",
		Long: `Create a secret encrypted to every enabled key.

When stdin is piped its content is read as a record: the first line is
the password, each following line is "key: value". Otherwise the
password is prompted for. Extra fields come from --field key=value.

Parent folders are created as needed. An existing secret is only
replaced with --force; --unique picks a free name instead (name_1, ...).`,
		Example: `  # Prompt for the password
  keep insert bank --field user=alice

  # Read a whole record from stdin
  printf 's3cret\nuser: alice\n' | keep insert work/vpn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := storepath.Clean(args[0])
			if err != nil {
				return err
			}
			if rel == "" {
				return fmt.Errorf("%w: a secret needs a name", storepath.ErrInvalidPath)
			}

			rec, err := readRecord(cmd.InOrStdin())
			if err != nil {
				return err
			}
			for _, f := range fields {
				key, value, err := parseAssignment(f)
				if err != nil {
					return err
				}
				rec.Set(key, value)
			}

			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			if unique {
				parent, base := storepath.Parent(rel)
				dir, err := s.Paths().Abs(parent)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(dir, 0700); err != nil {
					return fmt.Errorf("%w: failed to create folder %s: %w", store.ErrFilesystem, parent, err)
				}
				rel, err = s.CreateSecret(parent, base, rec)
				if err != nil {
					return err
				}
			} else {
				if err := s.InsertSecret(rel, rec, force); err != nil {
					if errors.Is(err, store.ErrConflict) && !force {
						return fmt.Errorf("%w (use --force to replace a secret or --unique to pick a free name)", err)
					}
					return err
				}
			}

			cmdutil.PrintSuccess("Saved %s", rel)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Add a field (key=value, repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing secret")
	cmd.Flags().BoolVar(&unique, "unique", false, "Pick a free name when the path is taken")
	cmd.MarkFlagsMutuallyExclusive("force", "unique")

	return cmd
}

// readRecord decodes piped stdin, or prompts for the password on a terminal
func readRecord(in io.Reader) (*record.Record, error) {
	if !ui.IsTerminal() {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		rec, malformed := record.Decode(string(data))
		for _, m := range malformed {
			fmt.Fprintln(os.Stderr, "warning:", m.Error())
		}
		return rec, nil
	}

	password, err := ui.FieldInput("Password", "", true)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return record.FromPairs(record.PasswordField, password), nil
}
