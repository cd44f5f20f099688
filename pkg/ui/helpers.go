// SPDX-License-Identifier: Apache-2.0
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Rows the browser always draws around its list: header, tabs (3), footer,
// status, content border (2), content padding (2) and the pane help (2).
const browserChromeRows = 12

const minListRows = 5

// browserLayout is how the browser spends the terminal height
type browserLayout struct {
	listRows         int
	showInstructions bool
	blankLines       int // 0 to 3 spacer rows
}

// layoutFor drops spacer rows first, then the instructions line, so the
// list keeps at least minListRows
func layoutFor(height int) browserLayout {
	free := height - browserChromeRows
	switch {
	case free >= minListRows+1+3:
		return browserLayout{listRows: free - 4, showInstructions: true, blankLines: 3}
	case free >= minListRows+1+1:
		return browserLayout{listRows: free - 2, showInstructions: true, blankLines: 1}
	case free >= minListRows:
		return browserLayout{listRows: free}
	default:
		return browserLayout{listRows: minListRows}
	}
}

// renderModal draws content in a bordered box centered in the terminal
func renderModal(content string, width, height int, borderColor lipgloss.Color, modalWidth int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(modalWidth).
		Render(content)
	return centered(box, width, height)
}

func centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")))
}

// removalForm is the in-browser removal question. y and n answer directly,
// esc cancels.
type removalForm struct {
	form *huh.Form
}

const removalKey = "remove"

func newRemovalForm(item EntryItem) *removalForm {
	title, description := RemovalPrompt(item.Path, item.Secret, item.Folder)
	return &removalForm{form: huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key(removalKey).
				Title(title).
				Description(description).
				Affirmative("Remove").
				Negative("Keep"),
		),
	)}
}

func (f *removalForm) Init() tea.Cmd {
	return f.form.Init()
}

// Update reports whether the user answered and, if so, whether to remove
func (f *removalForm) Update(msg tea.Msg) (remove, answered bool, cmd tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y", "Y":
			return true, true, nil
		case "n", "N":
			return false, true, nil
		case "esc":
			return false, false, nil
		}
	}

	form, cmd := f.form.Update(msg)
	f.form = form.(*huh.Form)
	if f.form.State == huh.StateCompleted {
		return f.form.GetBool(removalKey), true, cmd
	}
	return false, false, cmd
}

func (f *removalForm) View() string {
	return lipgloss.NewStyle().MaxWidth(60).Render(f.form.View())
}
