// SPDX-License-Identifier: Apache-2.0
package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/charmbracelet/log"
)

const disabledKeysKey = "disabled_keys"

// Recipients returns the effective recipient key ids: every key in the
// keyring except the disabled ones
func (s *Store) Recipients() []string {
	return s.keys.RecipientIDs(s.cfg.Settings().Store.DisabledKeys)
}

// DisabledKeys returns the ids excluded from the recipient set
func (s *Store) DisabledKeys() []string {
	return slices.Clone(s.cfg.Settings().Store.DisabledKeys)
}

// DisableKey excludes a key from encryption of new writes. Existing secrets
// are not re-encrypted. It reports false when the key was already disabled.
func (s *Store) DisableKey(id string) (bool, error) {
	id = strings.ToUpper(id)
	if !s.keys.Has(id) {
		return false, fmt.Errorf("%w: %s", keyring.ErrKeyNotFound, id)
	}

	disabled := s.DisabledKeys()
	if slices.Contains(disabled, id) {
		return false, nil
	}
	return s.saveDisabled(append(disabled, id))
}

// EnableKey returns a disabled key to the recipient set. It reports false
// when the key was not disabled.
func (s *Store) EnableKey(id string) (bool, error) {
	id = strings.ToUpper(id)
	disabled := s.DisabledKeys()
	if !slices.Contains(disabled, id) {
		return false, nil
	}
	return s.saveDisabled(slices.DeleteFunc(disabled, func(d string) bool { return d == id }))
}

// KeysChanged drops disabled ids that left the keyring and refreshes the
// recipients manifest after keys were added or removed
func (s *Store) KeysChanged() error {
	disabled := s.DisabledKeys()
	kept := slices.DeleteFunc(slices.Clone(disabled), func(id string) bool { return !s.keys.Has(id) })
	if len(kept) != len(disabled) {
		log.Infof("Forgetting %d disabled key(s) no longer in the keyring", len(disabled)-len(kept))
		if _, err := s.saveList(disabledKeysKey, kept); err != nil {
			return err
		}
	}
	return s.writeGPGID()
}

func (s *Store) saveDisabled(disabled []string) (bool, error) {
	changed, err := s.saveList(disabledKeysKey, disabled)
	if err != nil || !changed {
		return changed, err
	}
	return true, s.writeGPGID()
}
