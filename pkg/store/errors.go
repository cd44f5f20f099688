// SPDX-License-Identifier: Apache-2.0
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a secret or folder does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a destination already exists
	ErrConflict = errors.New("already exists")
	// ErrFilesystem wraps permission, I/O and cross-device failures
	ErrFilesystem = errors.New("filesystem error")
)

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func conflict(what string) error {
	return fmt.Errorf("%w: %s", ErrConflict, what)
}

func fsError(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrFilesystem, action, err)
}
