// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// RemovalPrompt words the question asked before deleting path. A node can be
// a secret, a folder or both.
func RemovalPrompt(path string, secret, folder bool) (title, description string) {
	title = fmt.Sprintf("Remove %s?", path)
	switch {
	case secret && folder:
		description = "The secret and the folder of the same name, with everything in it, are deleted."
	case folder:
		description = "The folder and everything in it is deleted."
	default:
		description = "The secret file is deleted."
	}
	return title, description
}

// ConfirmRemoval asks before deleting the secret and/or folder at path
func ConfirmRemoval(path string, secret, folder bool) (bool, error) {
	title, description := RemovalPrompt(path, secret, folder)

	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Remove").
				Negative("Keep").
				Value(&confirmed),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// KeyRemovalPhrase is what must be typed to remove ids: the key id itself,
// or "remove all" for several keys
func KeyRemovalPhrase(ids []string) string {
	if len(ids) == 1 {
		return strings.ToUpper(ids[0])
	}
	return "remove all"
}

// ConfirmKeyRemoval makes the user type KeyRemovalPhrase before keys are
// deleted. Secrets encrypted only to a removed private key are lost.
func ConfirmKeyRemoval(ids []string) (bool, error) {
	expected := KeyRemovalPhrase(ids)
	var input string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Remove %d key(s): %s", len(ids), strings.Join(ids, ", "))).
				Description("Secrets encrypted only to these keys can no longer be read.").
				Placeholder(expected).
				Value(&input).
				Validate(func(s string) error {
					if s != expected {
						return fmt.Errorf("type %q to confirm", expected)
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return input == expected, nil
}
