// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// IsTerminal reports whether stdin is a terminal (interactive) rather than a pipe
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PassphraseInput prompts for a passphrase with masked input. With confirm
// the passphrase is asked twice and both entries must match.
func PassphraseInput(title string, confirm bool) (string, error) {
	var passphrase string
	var again string

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("Enter passphrase").
				EchoMode(huh.EchoModePassword).
				Value(&passphrase),
		),
	}
	if confirm {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Confirm passphrase").
				Placeholder("Re-enter passphrase").
				EchoMode(huh.EchoModePassword).
				Value(&again).
				Validate(func(s string) error {
					if s != passphrase {
						return fmt.Errorf("passphrases do not match")
					}
					return nil
				}),
		))
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		return "", err
	}

	if confirm && passphrase != again {
		return "", fmt.Errorf("passphrases do not match")
	}
	return passphrase, nil
}

// FieldInput asks for a field value, masked when secret is set
func FieldInput(title, current string, secret bool) (string, error) {
	value := current
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", err
	}
	return value, nil
}
