// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newHelpFixture() *cobra.Command {
	parent := &cobra.Command{Use: "keep", Short: "store"}
	parent.PersistentFlags().String("log-level", "info", "Log level")
	child := &cobra.Command{
		Use:     "duplicate <path>",
		Aliases: []string{"cp"},
		Short:   "Copy a secret",
		Run:     func(cmd *cobra.Command, args []string) {},
	}
	child.Flags().Bool("yes", false, "Skip confirmation")
	parent.AddCommand(child)
	return parent
}

func TestHelpMarkdown(t *testing.T) {
	parent := newHelpFixture()

	md := helpMarkdown(parent)
	for _, want := range []string{"# keep", "## Commands", "- **duplicate** - Copy a secret", "Use `keep [command] --help`"} {
		if !strings.Contains(md, want) {
			t.Errorf("parent help missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Usage") {
		t.Errorf("non-runnable command should have no usage line:\n%s", md)
	}

	child, _, err := parent.Find([]string{"duplicate"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	md = helpMarkdown(child)
	for _, want := range []string{"**Aliases:** `cp`", "## Usage", "keep duplicate <path>", "## Flags", "--yes", "## Global Flags", "--log-level"} {
		if !strings.Contains(md, want) {
			t.Errorf("child help missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[command] --help") {
		t.Errorf("leaf command should not point at subcommands:\n%s", md)
	}
}

func TestUsageMarkdown(t *testing.T) {
	parent := newHelpFixture()
	child, _, err := parent.Find([]string{"duplicate"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	md := usageMarkdown(child)
	if !strings.HasPrefix(md, "### Usage") {
		t.Errorf("usage should start with the usage line:\n%s", md)
	}
	if strings.Contains(md, "# duplicate") {
		t.Errorf("usage should not repeat the title:\n%s", md)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	for _, name := range []string{"ls", "show", "insert", "key", "encrypt", "decrypt", "config", "browse", "init", "version", "completion"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("root command missing %q", name)
		}
	}
}
