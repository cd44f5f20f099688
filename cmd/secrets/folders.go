// SPDX-License-Identifier: Apache-2.0
package secrets

import (
	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/spf13/cobra"
)

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder",
		Long: `Create a folder inside an existing folder. When the name is taken the
folder is created as name_1, name_2, ... instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := storepath.Clean(args[0])
			if err != nil {
				return err
			}

			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			parent, base := storepath.Parent(rel)
			created, err := s.CreateFolder(parent, base)
			if err != nil {
				return err
			}

			cmdutil.PrintSuccess("Created folder %s", created)
			return nil
		},
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <folder>",
		Short: "Move a secret or folder into another folder",
		Long: `Move a secret, a folder, or a secret and folder sharing one name into
another folder. Use "" or "/" for the store root. Nothing is overwritten.`,
		Example: `  keep mv bank archive
  keep mv archive/bank /`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			moved, err := s.Move(args[0], args[1])
			if err != nil {
				return err
			}

			cmdutil.PrintSuccess("Moved %s to %s", args[0], moved)
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a secret or folder in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			renamed, err := s.Rename(args[0], args[1])
			if err != nil {
				return err
			}

			cmdutil.PrintSuccess("Renamed %s to %s", args[0], renamed)
			return nil
		},
	}
}

func newDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "duplicate <path>",
		Aliases: []string{"cp"},
		Short:   "Copy a secret or folder next to itself",
		Long: `Copy a secret or folder into the same folder under the next free copy
name: name_1, then name_2, ... A copy of name_1 becomes name_2.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := cmdutil.OpenStore()
			if err != nil {
				return err
			}

			copied, err := s.Duplicate(args[0])
			if err != nil {
				return err
			}

			cmdutil.PrintSuccess("Copied %s to %s", args[0], copied)
			return nil
		},
	}
}
