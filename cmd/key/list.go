// SPDX-License-Identifier: Apache-2.0
package key

import (
	"fmt"
	"slices"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all keys",
		Long:    `List every key in the keyring with its recipient status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := config.CurrentTheme
			titleStyle := theme.InfoStyle().Bold(true)
			labelStyle := theme.SubtleStyle()
			valueStyle := theme.InfoStyle()
			subtleStyle := theme.SubtleStyle()

			cfg, err := cmdutil.Config()
			if err != nil {
				return err
			}
			keys, err := cmdutil.OpenKeyring()
			if err != nil {
				return err
			}
			disabled := cfg.Settings().Store.DisabledKeys

			infos := keys.List()

			fmt.Println()
			fmt.Println(titleStyle.Render("Keys in " + keys.Dir()))
			fmt.Println()

			if len(infos) == 0 {
				fmt.Println(subtleStyle.Render("  No keys found"))
				fmt.Println()
				fmt.Println(subtleStyle.Render("Create a key with:"))
				fmt.Println(subtleStyle.Render("  keep key create"))
				return nil
			}

			for _, key := range infos {
				status := theme.SuccessStyle().Render(theme.ActiveIndicator() + " enabled")
				if slices.Contains(disabled, key.KeyID) {
					status = subtleStyle.Render(theme.InactiveIndicator() + " disabled")
				}

				fmt.Printf("  %s %s  %s\n", labelStyle.Render("Key ID:"), valueStyle.Render(key.KeyID), status)
				fmt.Printf("  %s %s\n", labelStyle.Render("Name:"), valueStyle.Render(key.Name))
				fmt.Printf("  %s %s\n", labelStyle.Render("Email:"), valueStyle.Render(key.Email))
				fmt.Printf("  %s %s\n", labelStyle.Render("Fingerprint:"), valueStyle.Render(key.Fingerprint))
				fmt.Printf("  %s %s\n", labelStyle.Render("Algorithm:"), valueStyle.Render(key.Algorithm))
				fmt.Printf("  %s %s\n", labelStyle.Render("Trust:"), valueStyle.Render(key.Trust.String()))
				if key.Owned() {
					fmt.Printf("  %s %s\n", labelStyle.Render("Protected:"), valueStyle.Render(fmt.Sprint(key.Locked)))
				}
				fmt.Printf("  %s %s\n", labelStyle.Render("Created:"), valueStyle.Render(key.Created.Format("2006-01-02")))
				if !key.Expires.IsZero() {
					fmt.Printf("  %s %s\n", labelStyle.Render("Expires:"), valueStyle.Render(key.Expires.Format("2006-01-02")))
				} else {
					fmt.Printf("  %s %s\n", labelStyle.Render("Expires:"), valueStyle.Render("Never"))
				}
				fmt.Println()
			}

			return nil
		},
	}
}
