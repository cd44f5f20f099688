// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"strings"

	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RenderTree draws the store tree below a root label. Folders sort before
// secrets; a name that is both is drawn once as a folder marked with "*".
func RenderTree(rootName string, t storepath.Tree) string {
	theme := config.CurrentTheme

	root := tree.Root(theme.FolderStyle().Render(rootName)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(theme.SubtleStyle())
	addChildren(root, t)
	return root.String()
}

func addChildren(parent *tree.Tree, t storepath.Tree) {
	theme := config.CurrentTheme

	for _, node := range sortedNodes(t) {
		if !node.IsFolder() {
			parent.Child(theme.SecretStyle().Render(node.Name))
			continue
		}

		label := theme.FolderStyle().Render(node.Name + "/")
		if node.Secret {
			label += theme.SecretStyle().Render(" *")
		}
		child := tree.Root(label)
		addChildren(child, node.Children)
		parent.Child(child)
	}
}

// sortedNodes orders folders first, then secrets, each by name
func sortedNodes(t storepath.Tree) []*storepath.Node {
	var folders, secrets []*storepath.Node
	for _, name := range t.Names() {
		node := t[name]
		if node.IsFolder() {
			folders = append(folders, node)
		} else {
			secrets = append(secrets, node)
		}
	}
	return append(folders, secrets...)
}

// FieldLabel turns a field name such as "login_url" or "PASSWORD" into "Login Url" or "Password"
func FieldLabel(name string) string {
	caser := cases.Title(language.Und)
	return caser.String(strings.ReplaceAll(name, "_", " "))
}

// RenderRecord lists the fields of a secret, password first. The password is
// masked unless reveal is set.
func RenderRecord(path string, rec *record.Record, reveal bool) string {
	theme := config.CurrentTheme

	keys := rec.Keys()
	width := 0
	for _, key := range keys {
		width = max(width, lipgloss.Width(FieldLabel(key)))
	}

	lines := []string{theme.SecretStyle().Bold(true).Render(path)}
	lines = append(lines, recordLine(width, record.PasswordField, maskPassword(rec.Password(), reveal)))
	for _, key := range keys {
		if key == record.PasswordField {
			continue
		}
		value, _ := rec.Get(key)
		lines = append(lines, recordLine(width, key, value))
	}
	return strings.Join(lines, "\n")
}

func recordLine(width int, key, value string) string {
	theme := config.CurrentTheme
	label := theme.LabelStyle().Width(width).Render(FieldLabel(key))
	return "  " + label + "  " + value
}

func maskPassword(password string, reveal bool) string {
	if reveal || password == "" {
		return password
	}
	return strings.Repeat("•", 8)
}

// RecordMarkdown renders a secret as a markdown table for glamour
func RecordMarkdown(path string, rec *record.Record, reveal bool) string {
	var b strings.Builder
	b.WriteString("# " + path + "\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	b.WriteString("| " + FieldLabel(record.PasswordField) + " | `" + maskPassword(rec.Password(), reveal) + "` |\n")
	for _, key := range rec.Keys() {
		if key == record.PasswordField {
			continue
		}
		value, _ := rec.Get(key)
		b.WriteString("| " + FieldLabel(key) + " | " + escapeCell(value) + " |\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
