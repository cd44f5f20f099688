// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"strings"

	"github.com/Work-Fort/Keep/cmd/cmdutil"
	"github.com/spf13/cobra"
)

// styledHelpFunc renders help output as markdown through glamour
func styledHelpFunc(cmd *cobra.Command, args []string) {
	printMarkdown(helpMarkdown(cmd))
}

// styledUsageFunc renders usage output as markdown through glamour
func styledUsageFunc(cmd *cobra.Command) error {
	printMarkdown(usageMarkdown(cmd))
	return nil
}

// helpMarkdown documents cmd: description, usage, aliases, subcommands and flags
func helpMarkdown(cmd *cobra.Command) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", cmd.Name())
	if desc := cmd.Long; desc != "" {
		fmt.Fprintf(&md, "%s\n\n", desc)
	} else if cmd.Short != "" {
		fmt.Fprintf(&md, "%s\n\n", cmd.Short)
	}

	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&md, "**Aliases:** `%s`\n\n", strings.Join(cmd.Aliases, "`, `"))
	}

	writeUsage(&md, cmd, "##")

	var topics []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.IsAdditionalHelpTopicCommand() {
			topics = append(topics, sub)
		}
	}
	if len(topics) > 0 {
		md.WriteString("## Additional Help Topics\n\n")
		for _, sub := range topics {
			fmt.Fprintf(&md, "- **%s** - %s\n", sub.CommandPath(), sub.Short)
		}
		md.WriteString("\n")
	}

	if hasSubCommands(cmd) {
		fmt.Fprintf(&md, "Use `%s [command] --help` for more information about a command.\n", cmd.CommandPath())
	}
	return md.String()
}

// usageMarkdown is the short form printed after a usage error
func usageMarkdown(cmd *cobra.Command) string {
	var md strings.Builder
	writeUsage(&md, cmd, "###")
	return md.String()
}

// writeUsage writes the usage line, subcommands and flags under heading level h
func writeUsage(md *strings.Builder, cmd *cobra.Command, h string) {
	if cmd.Runnable() {
		fmt.Fprintf(md, "%s Usage\n\n```\n%s\n```\n\n", h, cmd.UseLine())
	}

	if hasSubCommands(cmd) {
		fmt.Fprintf(md, "%s Commands\n\n", h)
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() && !sub.IsAdditionalHelpTopicCommand() {
				fmt.Fprintf(md, "- **%s** - %s\n", sub.Name(), sub.Short)
			}
		}
		md.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(md, "%s Flags\n\n```\n%s\n```\n\n", h, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(md, "%s Global Flags\n\n```\n%s\n```\n\n", h, cmd.InheritedFlags().FlagUsages())
	}
}

func hasSubCommands(cmd *cobra.Command) bool {
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() && !sub.IsAdditionalHelpTopicCommand() {
			return true
		}
	}
	return false
}

// printMarkdown prints rendered markdown, or the raw text if glamour fails
func printMarkdown(markdown string) {
	rendered, err := cmdutil.RenderMarkdown(markdown)
	if err != nil {
		fmt.Println(markdown)
		return
	}
	fmt.Println(strings.TrimRight(rendered, " \n"))
}
