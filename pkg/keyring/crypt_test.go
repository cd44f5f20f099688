// SPDX-License-Identifier: Apache-2.0
package keyring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	k := openTestKeyring(t, "")
	createKey(t, k, "alice", "")

	recipients, err := k.Recipients(nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		binary bool
	}{
		{name: "armored", binary: false},
		{name: "binary", binary: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := k.Encrypt([]byte("s3cret\nuser: alice\n"), recipients, tt.binary)
			require.NoError(t, err)
			assert.Equal(t, !tt.binary, IsArmored(ciphertext))

			plaintext, err := k.Decrypt(ciphertext, "")
			require.NoError(t, err)
			assert.Equal(t, "s3cret\nuser: alice\n", string(plaintext))
		})
	}
}

func TestEncryptWithoutRecipients(t *testing.T) {
	k := openTestKeyring(t, "")

	_, err := k.Recipients(nil)
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = k.Encrypt([]byte("data"), nil, false)
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestRecipientsHonourDisabled(t *testing.T) {
	k := openTestKeyring(t, "")
	a := createKey(t, k, "a", "")
	b := createKey(t, k, "b", "")

	assert.ElementsMatch(t, []string{a, b}, k.RecipientIDs(nil))
	assert.Equal(t, []string{b}, k.RecipientIDs([]string{a}))

	_, err := k.Recipients([]string{a, b})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestDecryptPassphraseHandling(t *testing.T) {
	k := openTestKeyring(t, "")
	id := createKey(t, k, "carol", "pw")

	recipients, err := k.Recipients(nil)
	require.NoError(t, err)
	ciphertext, err := k.Encrypt([]byte("payload"), recipients, false)
	require.NoError(t, err)

	_, err = k.Decrypt(ciphertext, "")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.Contains(t, err.Error(), id)

	_, err = k.Decrypt(ciphertext, "nope")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.ErrorIs(t, err, ErrBadPassphrase)

	plaintext, err := k.Decrypt(ciphertext, "pw")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plaintext))

	// The stored key stays locked after a successful decrypt
	info, err := k.Info(id)
	require.NoError(t, err)
	assert.True(t, info.Locked)
}

func TestDecryptSkipsLockedKeysAndTriesTheRest(t *testing.T) {
	k := openTestKeyring(t, "")
	locked := createKey(t, k, "locked", "pw")
	open := createKey(t, k, "open", "")

	recipients, err := k.Recipients([]string{locked})
	require.NoError(t, err)
	ciphertext, err := k.Encrypt([]byte("only for open"), recipients, true)
	require.NoError(t, err)

	plaintext, err := k.Decrypt(ciphertext, "")
	require.NoError(t, err)
	assert.Equal(t, "only for open", string(plaintext))

	_, err = k.DecryptWithKey(ciphertext, locked, "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	plaintext, err = k.DecryptWithKey(ciphertext, open, "")
	require.NoError(t, err)
	assert.Equal(t, "only for open", string(plaintext))
}

func TestEncryptDecryptFile(t *testing.T) {
	k := openTestKeyring(t, "")
	createKey(t, k, "dave", "")
	recipients, err := k.Recipients(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	src := filepath.Join(dir, "blob.bin")
	data := []byte{0x00, 0xff, 0x10, '\n', 0x7f}
	require.NoError(t, os.WriteFile(src, data, 0644))

	enc := src + ".bgpg"
	require.NoError(t, k.EncryptFile(src, enc, recipients, true))

	out := filepath.Join(dir, "blob.out")
	require.NoError(t, k.DecryptFile(enc, out, ""))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
