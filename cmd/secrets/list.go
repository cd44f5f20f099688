// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"fmt"
	"path/filepath"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/ui"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:     "ls [folder]",
		Aliases: []string{"list"},
		Short:   "List secrets as a tree",
		Long: `List the secrets and folders of the store as a tree.

Ignored secrets and folders are hidden. A name that is both a secret and
a folder is shown once as a folder marked with "*".`,
		Example: `  # Whole store
  keep ls

  # One folder, one path per line
  keep ls work --flat`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			tree, err := s.Tree()
			if err != nil {
				return err
			}

			rootName := filepath.Base(s.Root())
			if len(args) == 1 {
				rel, err := storepath.Clean(args[0])
				if err != nil {
					return err
				}
				if rel != "" {
					node := tree.Lookup(rel)
					if node == nil || !node.IsFolder() {
						return fmt.Errorf("no such folder: %s", rel)
					}
					tree = node.Children
					rootName = rel
				}
			}

			if flat {
				for _, path := range tree.Secrets() {
					fmt.Println(path)
				}
				return nil
			}

			if len(tree) == 0 {
				fmt.Println(config.CurrentTheme.SubtleStyle().Render("No secrets found"))
				return nil
			}
			fmt.Println(ui.RenderTree(rootName, tree))
			return nil
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Print secret paths one per line")

	return cmd
}
