// SPDX-License-Identifier: Apache-2.0
package crypt

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/Work-Fort/Keep/pkg/util"
	"github.com/spf13/cobra"
)

// NewEncryptCmd creates the encrypt command
func NewEncryptCmd() *cobra.Command {
	var (
		replace bool
		bundle  bool
	)

	cmd := &cobra.Command{
		Use:   "encrypt <file-or-directory>",
		Short: "Encrypt a file or directory to the enabled keys",
		Long: `Encrypt arbitrary files with the same recipients as the secrets.

A file is written next to itself with a .bgpg suffix. A directory has
every file below it encrypted in place; files already ending in .bgpg
are skipped. With --bundle the directory is archived into a single
<dir>.tar.xz.bgpg instead.

With --replace the plaintext is removed once its encrypted copy exists.
A failure on one file does not stop the others.`,
		Example: `  keep encrypt notes.txt
  keep encrypt ~/documents/tax --bundle --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			abs, info, err := target(args[0])
			if err != nil {
				return err
			}

			if !info.IsDir() {
				if bundle {
					return fmt.Errorf("--bundle needs a directory")
				}
				dst, err := s.EncryptFile(abs, replace)
				if err != nil {
					return err
				}
				cmdutil.PrintSuccess("Encrypted %s", dst)
				return nil
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			result, err := s.EncryptDirectory(ctx, abs, replace, bundle)
			printResult("Encrypted", result)
			return err
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Remove the plaintext after encrypting")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Archive a directory into one encrypted file")

	return cmd
}

// NewDecryptCmd creates the decrypt command
func NewDecryptCmd() *cobra.Command {
	var (
		replace bool
		bundle  bool
	)

	cmd := &cobra.Command{
		Use:   "decrypt <file-or-directory>",
		Short: "Decrypt files encrypted with keep encrypt",
		Long: `Decrypt .bgpg files with the owned keys.

A file is written next to itself without the .bgpg suffix. A directory
has every .bgpg file below it decrypted. A bundle (*.tar.xz.bgpg, or any
file with --bundle) is extracted next to itself; nothing is extracted
when an entry would overwrite an existing path.

With --replace the encrypted file is removed after decryption.`,
		Example: `  keep decrypt notes.txt.bgpg
  keep decrypt tax.tar.xz.bgpg --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, keys, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			abs, info, err := target(args[0])
			if err != nil {
				return err
			}
			isBundle := bundle || strings.HasSuffix(abs, util.ArchiveExt+store.BlobSuffix)

			ctx, stop := signalContext(cmd)
			defer stop()

			return cmdutil.WithPassphrase(cmd, keys, func(pass string) error {
				if !info.IsDir() && !isBundle {
					dst, err := s.DecryptFile(abs, pass, replace)
					if err != nil {
						return err
					}
					cmdutil.PrintSuccess("Decrypted %s", dst)
					return nil
				}

				result, err := s.DecryptDirectory(ctx, abs, pass, replace, isBundle)
				printResult("Decrypted", result)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Remove the encrypted file after decrypting")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Treat the file as a directory bundle")
	cmdutil.AddPassphraseFlags(cmd)

	return cmd
}

func target(arg string) (string, os.FileInfo, error) {
	abs, err := cmdutil.ExpandPath(arg)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	return abs, info, nil
}

// signalContext cancels the remaining files of a bulk operation on Ctrl+C
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printResult(verb string, result *store.BulkResult) {
	if result == nil {
		return
	}
	theme := config.CurrentTheme

	for _, path := range result.Succeeded {
		fmt.Printf("%s %s\n", theme.SuccessStyle().Render("✓"), path)
	}
	for _, path := range slices.Sorted(maps.Keys(result.Failed)) {
		fmt.Printf("%s %s: %v\n", theme.ErrorStyle().Render("✗"), path, result.Failed[path])
	}

	fmt.Println()
	summary := fmt.Sprintf("%s %d file(s), %d failed, %d skipped",
		verb, len(result.Succeeded), len(result.Failed), len(result.Skipped))
	if result.OK() {
		fmt.Println(theme.SuccessMessage(summary))
	} else {
		fmt.Println(theme.WarningMessage(summary))
	}
}
