// SPDX-License-Identifier: Apache-2.0
package keyring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/charmbracelet/log"
)

// CreateOptions holds options for generating a key pair
type CreateOptions struct {
	Name       string
	Email      string
	Passphrase string // Locks the private key when set
	Expiry     string // Format: 0=never, <n>=days, <n>w=weeks, <n>m=months, <n>y=years
}

// parseExpiry converts an expiry string to a key lifetime in seconds.
// Format: "" or "0" = never, <n> or <n>d = days, <n>w = weeks, <n>m = months, <n>y = years.
func parseExpiry(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	var numStr string
	var multiplier int64

	switch {
	case strings.HasSuffix(s, "y"):
		numStr, multiplier = s[:len(s)-1], 365*24*3600
	case strings.HasSuffix(s, "m"):
		numStr, multiplier = s[:len(s)-1], 30*24*3600
	case strings.HasSuffix(s, "w"):
		numStr, multiplier = s[:len(s)-1], 7*24*3600
	case strings.HasSuffix(s, "d"):
		numStr, multiplier = s[:len(s)-1], 24*3600
	default:
		numStr, multiplier = s, 24*3600 // bare number = days
	}

	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid expiry %q: expected a positive integer with optional suffix (d/w/m/y)", s)
	}
	if n > math.MaxInt32/multiplier {
		return 0, fmt.Errorf("invalid expiry %q: longer than the maximum key lifetime of 68 years", s)
	}
	return uint32(n * multiplier), nil
}

// Create generates a key pair bound to name and email and registers both halves
func (k *Keyring) Create(opts CreateOptions) (*KeyInfo, error) {
	if strings.TrimSpace(opts.Name) == "" && strings.TrimSpace(opts.Email) == "" {
		return nil, fmt.Errorf("a name or an email is required")
	}

	lifetimeSecs, err := parseExpiry(opts.Expiry)
	if err != nil {
		return nil, err
	}

	keyGen := k.pgp.KeyGeneration().AddUserId(opts.Name, opts.Email)
	if lifetimeSecs > 0 {
		keyGen = keyGen.Lifetime(int32(lifetimeSecs))
	}

	key, err := keyGen.New().GenerateKeyWithSecurity(k.security)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	if opts.Passphrase != "" {
		locked, err := k.pgp.LockKey(key, []byte(opts.Passphrase))
		key.ClearPrivateParams()
		if err != nil {
			return nil, fmt.Errorf("failed to lock private key: %w", err)
		}
		key = locked
	}

	id, err := k.register(key)
	if err != nil {
		return nil, err
	}

	log.Debugf("Created key %s for %s <%s>", id, opts.Name, opts.Email)
	return k.Info(id)
}

// Import reads key material from path (armored or binary). Private keys
// register both halves; a supplied passphrase must unlock a locked key.
func (k *Keyring) Import(path, passphrase string) (string, error) {
	key, err := loadKey(path)
	if err != nil {
		return "", err
	}

	if key.IsPrivate() && passphrase != "" {
		if err := checkUnlock(key, passphrase); err != nil {
			return "", err
		}
	}

	id, err := k.register(key)
	if err != nil {
		return "", err
	}

	log.Debugf("Imported key %s from %s (private: %t)", id, path, key.IsPrivate())
	return id, nil
}

// Export writes a key to path. Owned keys that can be unlocked (unprotected,
// or protected with a matching passphrase) are exported with their private
// half in its stored form; otherwise only the public half is written.
// It reports whether private material was exported.
func (k *Keyring) Export(path, id, passphrase string, format KeyFormat) (bool, error) {
	id = normalizeID(id)
	pub, ok := k.public[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}

	if priv, ok := k.private[id]; ok && checkUnlock(priv, passphrase) == nil {
		if err := saveKey(priv, path, format, 0600); err != nil {
			return false, fmt.Errorf("failed to export private key: %w", err)
		}
		return true, nil
	}

	if err := saveKey(pub, path, format, 0644); err != nil {
		return false, fmt.Errorf("failed to export public key: %w", err)
	}
	return false, nil
}

// checkUnlock verifies that key is usable with passphrase without keeping the unlocked copy
func checkUnlock(key *crypto.Key, passphrase string) error {
	locked, err := key.IsLocked()
	if err != nil {
		return fmt.Errorf("failed to inspect key: %w", err)
	}
	if !locked {
		return nil
	}
	if passphrase == "" {
		return fmt.Errorf("%w: passphrase required", ErrBadPassphrase)
	}

	unlocked, err := key.Unlock([]byte(passphrase))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadPassphrase, err)
	}
	unlocked.ClearPrivateParams()
	return nil
}
