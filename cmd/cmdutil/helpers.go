// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/Work-Fort/Keep/pkg/passphrase"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PassphraseSourceFlag selects where locked keys get their passphrase from
const PassphraseSourceFlag = "passphrase-source"

var current *config.Config

// SetConfig records the configuration loaded by the root command
func SetConfig(cfg *config.Config) {
	current = cfg
}

// Config returns the configuration loaded by the root command
func Config() (*config.Config, error) {
	if current == nil {
		cfg, err := config.Load(config.DefaultConfigPath())
		if err != nil {
			return nil, err
		}
		current = cfg
	}
	return current, nil
}

// IsInteractive checks if stdin is connected to a terminal AND the user wants TUI mode
func IsInteractive() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	cfg, err := Config()
	if err != nil {
		return false
	}
	return cfg.UseTUI()
}

// OpenKeyring opens the configured keyring directory
func OpenKeyring() (*keyring.Keyring, error) {
	cfg, err := Config()
	if err != nil {
		return nil, err
	}
	dir, err := ExpandPath(cfg.Settings().Keyring.Location)
	if err != nil {
		return nil, err
	}
	return keyring.Open(dir)
}

// OpenStore opens the keyring and the store built on it
func OpenStore() (*store.Store, *keyring.Keyring, error) {
	cfg, err := Config()
	if err != nil {
		return nil, nil, err
	}
	keys, err := OpenKeyring()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(cfg, keys)
	if err != nil {
		return nil, nil, err
	}
	return s, keys, nil
}

// ExpandPath expands a leading ~ and makes path absolute
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// AddPassphraseFlags registers the passphrase source flag on cmd
func AddPassphraseFlags(cmd *cobra.Command) {
	cmd.Flags().String(PassphraseSourceFlag, "auto",
		"Passphrase source: auto, env ("+passphrase.EnvPassphrase+"), stdin or tui")
}

// Resolver builds a passphrase resolver from the command's flags and the
// configuration. flag is an explicit passphrase, usually empty.
func Resolver(cmd *cobra.Command, flag string) (*passphrase.Resolver, error) {
	cfg, err := Config()
	if err != nil {
		return nil, err
	}

	sourceName := "auto"
	if f := cmd.Flags().Lookup(PassphraseSourceFlag); f != nil {
		sourceName = f.Value.String()
	}
	source, err := passphrase.ParseSource(sourceName)
	if err != nil {
		return nil, err
	}

	var cache passphrase.Cache
	if cfg.Settings().App.RememberPassphrase {
		cache = passphrase.NewOSCache()
	}

	return passphrase.NewResolver(source, flag, IsInteractive(), cache, ui.PassphraseInput), nil
}

// NeedsPassphrase reports whether any owned key is locked
func NeedsPassphrase(keys *keyring.Keyring) bool {
	for _, info := range keys.List() {
		if info.Owned() && info.Locked {
			return true
		}
	}
	return false
}

// WithPassphrase runs fn with the passphrase for the keyring's locked keys,
// or with "" when no owned key is locked. A passphrase that worked is
// cached when remember_passphrase is on; one that was rejected is dropped.
func WithPassphrase(cmd *cobra.Command, keys *keyring.Keyring, fn func(pass string) error) error {
	if !NeedsPassphrase(keys) {
		return fn("")
	}

	resolver, err := Resolver(cmd, "")
	if err != nil {
		return err
	}

	pass, err := resolver.Get(keys.Dir(), "Enter key passphrase")
	if err != nil {
		return fmt.Errorf("passphrase required: use %s or pipe it via stdin: %w", passphrase.EnvPassphrase, err)
	}

	err = fn(pass)
	switch {
	case err == nil:
		resolver.Remember(keys.Dir(), pass)
	case errors.Is(err, keyring.ErrBadPassphrase), errors.Is(err, keyring.ErrDecryptionFailed):
		log.Debugf("Dropping cached passphrase for %s", keys.Dir())
		resolver.Forget(keys.Dir())
	}
	return err
}

// PrintSuccess prints a check-marked message
func PrintSuccess(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", config.CurrentTheme.SuccessStyle().Render("✓"), fmt.Sprintf(format, args...))
}

// PrintField prints an indented label/value line
func PrintField(label, value string) {
	theme := config.CurrentTheme
	fmt.Printf("  %s %s\n", theme.SubtleStyle().Render(label), theme.InfoStyle().Render(value))
}
