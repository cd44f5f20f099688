// SPDX-License-Identifier: Apache-2.0
package init

import (
	"fmt"
	"os"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/Work-Fort/Keep/pkg/passphrase"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// InitSettings holds what init sets up
type InitSettings struct {
	StorePath  string
	KeyName    string
	KeyEmail   string
	KeyExpiry  string
	Passphrase string
}

// InitResult reports what init did
type InitResult struct {
	Root        string
	RootChanged bool
	Key         *keyring.KeyInfo // nil when no key was created
	Recipients  []string
}

// package-level flag variables bound to cobra flags
var (
	flagKeyName   string
	flagKeyEmail  string
	flagKeyExpiry string
)

// NewInitCmd returns the cobra command for the init subcommand
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [store-path]",
		Short: "Set up the password store",
		Long: `Sets up the password store and, when the keyring has no private key,
a first key pair to encrypt secrets to.

The store directory is created when missing and saved as path_store.
Without a path the configured store is used.

Interactive mode (default when stdin is a terminal and use-tui is true):
  Asks for the store location and the key owner in a form.

Non-interactive mode:
  A key is created only when --key-name or --key-email is given. Its
  passphrase is read from the KEEP_PASSPHRASE environment variable or
  from stdin (piped input); without either the key is unprotected.`,
		Example: `  # Interactive
  keep init

  # Non-interactive (passphrase via environment variable)
  KEEP_PASSPHRASE="secret" keep init ~/secrets \
    --key-name "Alice" \
    --key-email "alice@example.com"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}

	cmd.Flags().StringVar(&flagKeyName, "key-name", "", "Key owner name")
	cmd.Flags().StringVar(&flagKeyEmail, "key-email", "", "Key owner email")
	cmd.Flags().StringVar(&flagKeyExpiry, "key-expiry", "0", "Key expiry (0=never, <n>=days, <n>w=weeks, <n>m=months, <n>y=years)")

	return cmd
}

// runInit is the cobra RunE handler
func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}

	settings := InitSettings{
		StorePath: cfg.Settings().Store.PathStore,
		KeyName:   flagKeyName,
		KeyEmail:  flagKeyEmail,
		KeyExpiry: flagKeyExpiry,
	}
	if len(args) == 1 {
		settings.StorePath = args[0]
	}

	keys, err := cmdutil.OpenKeyring()
	if err != nil {
		return err
	}
	needsKey := len(keys.OwnedKeyIDs()) == 0

	interactive := cmdutil.IsInteractive()
	if interactive {
		if err := askSettings(&settings, needsKey); err != nil {
			return err
		}
	}

	if needsKey && wantsKey(settings) {
		resolver, err := cmdutil.Resolver(cmd, "")
		if err != nil {
			return err
		}
		settings.Passphrase, err = resolver.New("Passphrase for the new key (empty for none)")
		if err != nil {
			return fmt.Errorf("key passphrase required: use %s env var or pipe via stdin: %w",
				passphrase.EnvPassphrase, err)
		}
	}

	result, err := initialize(cfg, keys, settings)
	if err != nil {
		return err
	}

	printResult(result, needsKey)
	return nil
}

// askSettings fills settings from an interactive form
func askSettings(settings *InitSettings, needsKey bool) error {
	fields := []huh.Field{
		huh.NewInput().
			Title("Store location").
			Description("Directory holding the encrypted secrets").
			Value(&settings.StorePath).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("a store location is required")
				}
				return nil
			}),
	}

	if needsKey {
		fields = append(fields,
			huh.NewInput().
				Title("Key owner name").
				Value(&settings.KeyName),
			huh.NewInput().
				Title("Key owner email").
				Value(&settings.KeyEmail),
			huh.NewSelect[string]().
				Title("Key expiry").
				Options(
					huh.NewOption("Never", "0"),
					huh.NewOption("1 year", "1y"),
					huh.NewOption("2 years", "2y"),
					huh.NewOption("5 years", "5y"),
				).
				Value(&settings.KeyExpiry),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func wantsKey(settings InitSettings) bool {
	return settings.KeyName != "" || settings.KeyEmail != ""
}

// initialize creates the store root, points the configuration at it and
// creates a first key when the keyring owns none and an identity is given
func initialize(cfg *config.Config, keys *keyring.Keyring, settings InitSettings) (*InitResult, error) {
	root, err := cmdutil.ExpandPath(settings.StorePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("%w: failed to create store root: %w", store.ErrFilesystem, err)
	}

	s, err := store.Open(cfg, keys)
	if err != nil {
		return nil, err
	}
	changed, err := s.ChangeRoot(root)
	if err != nil {
		return nil, err
	}

	result := &InitResult{Root: s.Root(), RootChanged: changed}

	if len(keys.OwnedKeyIDs()) == 0 && wantsKey(settings) {
		info, err := keys.Create(keyring.CreateOptions{
			Name:       settings.KeyName,
			Email:      settings.KeyEmail,
			Passphrase: settings.Passphrase,
			Expiry:     settings.KeyExpiry,
		})
		if err != nil {
			return nil, err
		}
		result.Key = info

		if err := s.KeysChanged(); err != nil {
			return nil, err
		}
	}

	result.Recipients = s.Recipients()
	return result, nil
}

func printResult(result *InitResult, neededKey bool) {
	theme := config.CurrentTheme

	fmt.Println(theme.SuccessMessage("Password store ready"))
	fmt.Println()
	cmdutil.PrintField("Store:", result.Root)
	if result.Key != nil {
		cmdutil.PrintField("Key ID:", result.Key.KeyID)
		cmdutil.PrintField("Protected:", fmt.Sprint(result.Key.Locked))
	}
	cmdutil.PrintField("Recipients:", fmt.Sprint(len(result.Recipients)))
	fmt.Println()

	fmt.Println("Next steps:")
	if neededKey && result.Key == nil {
		fmt.Println("  1. Create a key: keep key create --name <name> --email <email>")
		fmt.Println("  2. Add a secret: keep insert <path>")
		return
	}
	fmt.Println("  1. Add a secret: keep insert <path>")
	fmt.Println("  2. Browse the store: keep browse")
}
