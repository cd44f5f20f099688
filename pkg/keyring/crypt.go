// SPDX-License-Identifier: Apache-2.0
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/charmbracelet/log"
)

// RecipientIDs returns the effective recipient set: every known key whose
// id is not listed in disabled
func (k *Keyring) RecipientIDs(disabled []string) []string {
	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		skip[normalizeID(id)] = true
	}

	var ids []string
	for _, id := range k.KeyIDs() {
		if !skip[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Recipients returns the public keys of the effective recipient set.
// An empty set is ErrNoRecipients.
func (k *Keyring) Recipients(disabled []string) ([]*crypto.Key, error) {
	ids := k.RecipientIDs(disabled)
	if len(ids) == 0 {
		return nil, ErrNoRecipients
	}

	keys := make([]*crypto.Key, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, k.public[id])
	}
	return keys, nil
}

// Encrypt produces a message readable by every recipient, armored unless binary is set
func (k *Keyring) Encrypt(plaintext []byte, recipients []*crypto.Key, binary bool) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	kr, err := crypto.NewKeyRing(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient keyring: %w", err)
	}
	for _, key := range recipients {
		if err := kr.AddKey(key); err != nil {
			return nil, fmt.Errorf("failed to add recipient %s: %w", keyID(key), err)
		}
	}

	encHandle, err := k.pgp.Encryption().Recipients(kr).New()
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	message, err := encHandle.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}

	if binary {
		return message.Bytes(), nil
	}
	armored, err := message.Armor()
	if err != nil {
		return nil, fmt.Errorf("failed to armor message: %w", err)
	}
	return []byte(armored), nil
}

// EncryptFile encrypts src into dst
func (k *Keyring) EncryptFile(src, dst string, recipients []*crypto.Key, binary bool) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	ciphertext, err := k.Encrypt(plaintext, recipients, binary)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// Decrypt tries every owned key in turn and returns the first successful
// plaintext. Locked keys are skipped when no passphrase is given. On failure
// the error wraps ErrDecryptionFailed and every per-key reason.
func (k *Keyring) Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	ids := k.OwnedKeyIDs()
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no private keys in keyring", ErrDecryptionFailed)
	}

	var reasons []error
	for _, id := range ids {
		plaintext, err := k.decryptWith(id, ciphertext, passphrase)
		if err == nil {
			log.Debugf("Decrypted with key %s", id)
			return plaintext, nil
		}
		reasons = append(reasons, fmt.Errorf("key %s: %w", id, err))
	}

	return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, errors.Join(reasons...))
}

// DecryptWithKey decrypts using only the named owned key
func (k *Keyring) DecryptWithKey(ciphertext []byte, id, passphrase string) ([]byte, error) {
	id = normalizeID(id)
	if _, ok := k.private[id]; !ok {
		return nil, fmt.Errorf("%w: no private key %s", ErrKeyNotFound, id)
	}

	plaintext, err := k.decryptWith(id, ciphertext, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %w", ErrDecryptionFailed, id, err)
	}
	return plaintext, nil
}

func (k *Keyring) decryptWith(id string, ciphertext []byte, passphrase string) ([]byte, error) {
	stored := k.private[id]

	locked, err := stored.IsLocked()
	if err != nil {
		return nil, fmt.Errorf("failed to inspect key: %w", err)
	}

	// The decryption handle wipes its keys when cleared, so it always gets a copy
	var key *crypto.Key
	if locked {
		if passphrase == "" {
			return nil, errors.New("skipped, passphrase required")
		}
		key, err = stored.Unlock([]byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPassphrase, err)
		}
	} else {
		key, err = stored.Copy()
		if err != nil {
			return nil, fmt.Errorf("failed to copy key: %w", err)
		}
	}

	decHandle, err := k.pgp.Decryption().DecryptionKey(key).New()
	if err != nil {
		key.ClearPrivateParams()
		return nil, fmt.Errorf("failed to create decryptor: %w", err)
	}
	defer decHandle.ClearPrivateParams()

	result, err := decHandle.Decrypt(ciphertext, crypto.Auto)
	if err != nil {
		return nil, err
	}
	return result.Bytes(), nil
}

// DecryptFile decrypts src into dst
func (k *Keyring) DecryptFile(src, dst, passphrase string) error {
	ciphertext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	plaintext, err := k.Decrypt(ciphertext, passphrase)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, plaintext, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// IsArmored reports whether data looks like an ASCII-armored OpenPGP block
func IsArmored(data []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(data)), "-----BEGIN PGP")
}
