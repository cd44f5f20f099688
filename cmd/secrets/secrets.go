// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"fmt"
	"strings"

	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/spf13/cobra"
)

// Commands returns the top-level commands that work on secrets and folders
func Commands() []*cobra.Command {
	return []*cobra.Command{
		newListCmd(),
		newShowCmd(),
		newInsertCmd(),
		newEditCmd(),
		newMkdirCmd(),
		newMoveCmd(),
		newRenameCmd(),
		newDuplicateCmd(),
		newRemoveCmd(),
		newIgnoreCmd(),
		newUnignoreCmd(),
	}
}

// parseAssignment splits a key=value flag argument
func parseAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid field %q: expected key=value", arg)
	}
	return fieldName(key), value, nil
}

// fieldName maps any spelling of "password" onto the reserved field
func fieldName(key string) string {
	if strings.EqualFold(key, record.PasswordField) {
		return record.PasswordField
	}
	return key
}
