// SPDX-License-Identifier: Apache-2.0
package passphrase

import (
	"errors"
	"fmt"

	keyringlib "github.com/zalando/go-keyring"
)

// ServiceName is the OS keyring service passphrases are stored under
const ServiceName = "keep"

// ErrNotCached is returned by Cache.Get when nothing is stored for the account
var ErrNotCached = errors.New("passphrase not cached")

// Cache stores passphrases between runs
type Cache interface {
	Get(account string) (string, error)
	Set(account, passphrase string) error
	// Delete does not fail when nothing is stored
	Delete(account string) error
}

// OSCache keeps passphrases in the operating system keyring
type OSCache struct{}

// NewOSCache returns a cache backed by the OS keyring
func NewOSCache() *OSCache {
	return &OSCache{}
}

// Get implements Cache
func (c *OSCache) Get(account string) (string, error) {
	secret, err := keyringlib.Get(ServiceName, account)
	if err != nil {
		if errors.Is(err, keyringlib.ErrNotFound) {
			return "", ErrNotCached
		}
		return "", fmt.Errorf("failed to get passphrase from OS keyring: %w", err)
	}
	return secret, nil
}

// Set implements Cache
func (c *OSCache) Set(account, passphrase string) error {
	if err := keyringlib.Set(ServiceName, account, passphrase); err != nil {
		return fmt.Errorf("failed to store passphrase in OS keyring: %w", err)
	}
	return nil
}

// Delete implements Cache
func (c *OSCache) Delete(account string) error {
	err := keyringlib.Delete(ServiceName, account)
	if err != nil && !errors.Is(err, keyringlib.ErrNotFound) {
		return fmt.Errorf("failed to delete passphrase from OS keyring: %w", err)
	}
	return nil
}

var _ Cache = (*OSCache)(nil)
