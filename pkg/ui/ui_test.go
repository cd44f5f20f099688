// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/Work-Fort/Keep/pkg/storepath"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() storepath.Tree {
	return storepath.Tree{
		"work": {Name: "work", Path: "work", Secret: true, Children: storepath.Tree{
			"vpn": {Name: "vpn", Path: "work/vpn", Secret: true},
		}},
		"bank":  {Name: "bank", Path: "bank", Secret: true},
		"empty": {Name: "empty", Path: "empty", Children: storepath.Tree{}},
	}
}

func TestRenderTree(t *testing.T) {
	out := ansi.Strip(RenderTree("store", sampleTree()))

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "store", lines[0])
	assert.Contains(t, lines[1], "empty/")
	assert.Contains(t, lines[2], "work/ *")
	assert.Contains(t, lines[3], "vpn")
	assert.Contains(t, lines[4], "bank")
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Login Url", FieldLabel("login_url"))
	assert.Equal(t, "Password", FieldLabel(record.PasswordField))
}

func TestRenderRecordMasksPassword(t *testing.T) {
	rec := record.FromPairs("user", "alice", record.PasswordField, "hunter2")

	masked := ansi.Strip(RenderRecord("site", rec, false))
	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, "alice")

	revealed := ansi.Strip(RenderRecord("site", rec, true))
	assert.Contains(t, revealed, "hunter2")
	// password is listed before the other fields
	assert.Less(t, strings.Index(revealed, "hunter2"), strings.Index(revealed, "alice"))

	md := RecordMarkdown("site", record.FromPairs(record.PasswordField, "p", "note", "a|b"), true)
	assert.Contains(t, md, "| Note | a\\|b |")
}

type fakeActions struct {
	tree    storepath.Tree
	keys    []KeyEntry
	removed []string
	toggled []string
	showErr error
}

func (f *fakeActions) Tree() (storepath.Tree, error) { return f.tree, nil }
func (f *fakeActions) Show(rel string) (string, error) {
	if f.showErr != nil {
		return "", f.showErr
	}
	return "shown " + rel, nil
}
func (f *fakeActions) Remove(rel string) error {
	f.removed = append(f.removed, rel)
	return nil
}
func (f *fakeActions) Duplicate(rel string) (string, error) { return rel + "_1", nil }
func (f *fakeActions) Keys() ([]KeyEntry, error)            { return f.keys, nil }
func (f *fakeActions) ToggleKey(id string) error {
	f.toggled = append(f.toggled, id)
	return nil
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and feeds our own result messages back, the way the
// program loop would. Commands of the confirmation form only drive the huh
// widget and are not run.
func send(t *testing.T, m BrowserModel, msg tea.Msg) BrowserModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(BrowserModel)
	if m.currentState == stateConfirmingDelete {
		return m
	}
	return drain(m, cmd)
}

func drain(m BrowserModel, cmd tea.Cmd) BrowserModel {
	if cmd == nil {
		return m
	}
	switch result := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range result {
			m = drain(m, c)
		}
	case actionCompleteMsg, secretLoadedMsg:
		next, _ := m.Update(result)
		m = next.(BrowserModel)
	}
	return m
}

func newTestBrowser(actions *fakeActions) BrowserModel {
	m := NewBrowser(actions)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(BrowserModel)
}

func selectedEntry(t *testing.T, m BrowserModel) EntryItem {
	t.Helper()
	item, ok := m.secrets.SelectedItem().(EntryItem)
	require.True(t, ok)
	return item
}

func TestBrowserNavigation(t *testing.T) {
	actions := &fakeActions{tree: sampleTree()}
	m := newTestBrowser(actions)

	// folders first
	assert.Equal(t, "empty", selectedEntry(t, m).Name)
	m.secrets.Select(1)
	assert.Equal(t, "work", selectedEntry(t, m).Name)

	m = send(t, m, keyPress("enter"))
	assert.Equal(t, "work", m.folder)
	assert.Equal(t, "vpn", selectedEntry(t, m).Name)

	m = send(t, m, keyPress("enter"))
	assert.Equal(t, stateViewing, m.currentState)
	assert.Equal(t, "shown work/vpn", m.detail)
	assert.NotEmpty(t, m.View())

	m = send(t, m, keyPress("x"))
	assert.Equal(t, stateBrowsing, m.currentState)

	m = send(t, m, keyPress("backspace"))
	assert.Equal(t, "", m.folder)
}

func TestBrowserRemoveAfterConfirm(t *testing.T) {
	actions := &fakeActions{tree: sampleTree()}
	m := newTestBrowser(actions)
	m.secrets.Select(2)
	require.Equal(t, "bank", selectedEntry(t, m).Name)

	m = send(t, m, keyPress("d"))
	assert.Equal(t, stateConfirmingDelete, m.currentState)

	m = send(t, m, keyPress("n"))
	assert.Equal(t, stateBrowsing, m.currentState)
	assert.Empty(t, actions.removed)

	m = send(t, m, keyPress("d"))
	m = send(t, m, keyPress("y"))
	assert.Equal(t, stateBrowsing, m.currentState)
	assert.Equal(t, []string{"bank"}, actions.removed)
	assert.Equal(t, "Removed bank", m.statusMessage)
}

func TestBrowserShowError(t *testing.T) {
	actions := &fakeActions{tree: sampleTree(), showErr: errors.New("decryption failed")}
	m := newTestBrowser(actions)
	m.secrets.Select(2)

	m = send(t, m, keyPress("v"))
	assert.Equal(t, stateBrowsing, m.currentState)
	assert.True(t, m.statusErr)
	assert.Equal(t, "decryption failed", m.statusMessage)
}

func TestBrowserToggleKey(t *testing.T) {
	actions := &fakeActions{
		tree: storepath.Tree{},
		keys: []KeyEntry{{ID: "ABCDEF0123456789", Label: "alice", Owned: true, Enabled: true}},
	}
	m := newTestBrowser(actions)

	m = send(t, m, keyPress("tab"))
	assert.Equal(t, tabKeys, m.activeTabIndex)

	m = send(t, m, keyPress("enter"))
	assert.Equal(t, []string{"ABCDEF0123456789"}, actions.toggled)
	assert.Equal(t, "Disabled key ABCDEF0123456789", m.statusMessage)
	assert.NotEmpty(t, m.View())
}

func TestRemovalPrompt(t *testing.T) {
	title, desc := RemovalPrompt("bank", true, false)
	assert.Equal(t, "Remove bank?", title)
	assert.Equal(t, "The secret file is deleted.", desc)

	_, desc = RemovalPrompt("work", false, true)
	assert.Contains(t, desc, "folder and everything in it")

	_, desc = RemovalPrompt("work", true, true)
	assert.Contains(t, desc, "secret and the folder")
}

func TestKeyRemovalPhrase(t *testing.T) {
	assert.Equal(t, "ABCDEF0123456789", KeyRemovalPhrase([]string{"abcdef0123456789"}))
	assert.Equal(t, "remove all", KeyRemovalPhrase([]string{"A", "B"}))
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		height int
		want   browserLayout
	}{
		{height: 40, want: browserLayout{listRows: 24, showInstructions: true, blankLines: 3}},
		{height: 21, want: browserLayout{listRows: 5, showInstructions: true, blankLines: 3}},
		{height: 20, want: browserLayout{listRows: 6, showInstructions: true, blankLines: 1}},
		{height: 19, want: browserLayout{listRows: 5, showInstructions: true, blankLines: 1}},
		{height: 18, want: browserLayout{listRows: 6}},
		{height: 17, want: browserLayout{listRows: 5}},
		{height: 10, want: browserLayout{listRows: minListRows}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, layoutFor(tt.height), "height %d", tt.height)
	}
}
