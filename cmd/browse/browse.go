// SPDX-License-Identifier: Apache-2.0
package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/Work-Fort/Keep/pkg/store"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ui"},
		Short:   "Browse the store in a terminal UI",
		Long: `Open a full-screen browser over the store.

The Secrets tab walks the folder tree: open folders and secrets, copy or
delete entries. The Keys tab enables and disables recipients. A protected
key's passphrase is asked for once before the browser starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.IsTerminal() {
				return fmt.Errorf("browse needs an interactive terminal")
			}

			s, keys, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			pass := ""
			if cmdutil.NeedsPassphrase(keys) {
				resolver, err := cmdutil.Resolver(cmd, "")
				if err != nil {
					return err
				}
				pass, err = resolver.Get(keys.Dir(), "Enter key passphrase")
				if err != nil {
					return err
				}
			}

			return ui.RunBrowser(&storeActions{store: s, keys: keys, passphrase: pass})
		},
	}

	cmdutil.AddPassphraseFlags(cmd)

	return cmd
}

// storeActions carries out browser requests against the store
type storeActions struct {
	store      *store.Store
	keys       *keyring.Keyring
	passphrase string
}

func (a *storeActions) Tree() (storepath.Tree, error) {
	return a.store.Tree()
}

func (a *storeActions) Show(rel string) (string, error) {
	secret, err := a.store.ReadSecret(rel, a.passphrase)
	if err != nil {
		return "", err
	}
	return ui.RenderRecord(secret.Path, secret.Record, true), nil
}

// Remove deletes every part stored under rel
func (a *storeActions) Remove(rel string) error {
	kind := a.store.Kind(rel)
	if kind.HasFolder() {
		if err := a.store.RemoveFolder(rel); err != nil {
			return err
		}
	}
	if kind.HasSecret() {
		return a.store.RemoveSecret(rel)
	}
	if kind == storepath.KindNone {
		return fmt.Errorf("%w: %s", store.ErrNotFound, rel)
	}
	return nil
}

func (a *storeActions) Duplicate(rel string) (string, error) {
	return a.store.Duplicate(rel)
}

func (a *storeActions) Keys() ([]ui.KeyEntry, error) {
	disabled := a.store.DisabledKeys()

	var entries []ui.KeyEntry
	for _, info := range a.keys.List() {
		entries = append(entries, ui.KeyEntry{
			ID:      info.KeyID,
			Label:   keyLabel(info),
			Owned:   info.Owned(),
			Enabled: !slices.Contains(disabled, info.KeyID),
		})
	}
	return entries, nil
}

func (a *storeActions) ToggleKey(id string) error {
	if slices.Contains(a.store.DisabledKeys(), strings.ToUpper(id)) {
		_, err := a.store.EnableKey(id)
		return err
	}
	_, err := a.store.DisableKey(id)
	return err
}

func keyLabel(info keyring.KeyInfo) string {
	switch {
	case info.Name != "" && info.Email != "":
		return fmt.Sprintf("%s <%s>", info.Name, info.Email)
	case info.Email != "":
		return "<" + info.Email + ">"
	}
	return info.Name
}
