// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"io"

	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type browserState int

const (
	stateBrowsing browserState = iota
	stateConfirmingDelete
	stateViewing
	stateWorking
)

const (
	tabSecrets = iota
	tabKeys
)

// KeyEntry is one key as shown on the Keys tab
type KeyEntry struct {
	ID      string
	Label   string // name and email
	Owned   bool
	Enabled bool
}

// BrowserActions is what the browser may do to the store and keyring.
// Calls run off the UI goroutine and must not prompt.
type BrowserActions interface {
	Tree() (storepath.Tree, error)
	Show(rel string) (string, error)
	Remove(rel string) error
	Duplicate(rel string) (string, error)
	Keys() ([]KeyEntry, error)
	ToggleKey(id string) error
}

// EntryItem is a folder and/or secret in the current folder
type EntryItem struct {
	Name   string
	Path   string
	Folder bool
	Secret bool
}

func (e EntryItem) FilterValue() string { return e.Name }
func (e EntryItem) Title() string {
	theme := config.CurrentTheme
	switch {
	case e.Folder && e.Secret:
		return theme.FolderStyle().Render(e.Name+"/") + theme.SecretStyle().Render(" *")
	case e.Folder:
		return theme.FolderStyle().Render(e.Name + "/")
	default:
		return theme.SecretStyle().Render(e.Name)
	}
}
func (e EntryItem) Description() string { return e.Path }

// KeyItem wraps a KeyEntry for the keys list
type KeyItem struct {
	KeyEntry
}

func (k KeyItem) FilterValue() string { return k.ID + " " + k.Label }
func (k KeyItem) Title() string {
	theme := config.CurrentTheme
	marker := theme.InactiveIndicator()
	if k.Enabled {
		marker = theme.ActiveIndicator()
	}
	owned := ""
	if k.Owned {
		owned = theme.SubtleStyle().Render(" (private)")
	}
	return marker + " " + k.ID + "  " + k.Label + owned
}
func (k KeyItem) Description() string { return "" }

// itemDelegate renders single-line items with the selected line in the accent color
type itemDelegate struct {
	accentColor lipgloss.Color
}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	titled, ok := item.(interface{ Title() string })
	if !ok {
		return
	}

	prefix := "  "
	if index == m.Index() {
		prefix = lipgloss.NewStyle().Foreground(d.accentColor).Render("▸ ")
	}
	fmt.Fprint(w, prefix+titled.Title())
}

// actionCompleteMsg reloads both lists after a mutation
type actionCompleteMsg struct {
	status string
	err    error
}

type secretLoadedMsg struct {
	text string
	err  error
}

// BrowserModel is the full-screen store browser
type BrowserModel struct {
	actions BrowserActions

	folder  string // store path of the folder being listed
	secrets list.Model
	keys    list.Model

	tabs           []Tab
	activeTabIndex int
	currentState   browserState
	width          int
	height         int
	quitting       bool

	selected      EntryItem
	confirmForm   *removalForm
	detail        string
	statusMessage string
	statusErr     bool

	globalKeys  KeyBindingSet
	secretsKeys KeyBindingSet
	keysKeys    KeyBindingSet

	// Layout state for graceful degradation
	showInstructions bool
	blankLineCount   int
}

func newList(accent lipgloss.Color) list.Model {
	l := list.New(nil, itemDelegate{accentColor: accent}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.FilterCursor = lipgloss.NewStyle()
	return l
}

// NewBrowser builds the browser and loads the root folder
func NewBrowser(actions BrowserActions) BrowserModel {
	theme := config.CurrentTheme

	m := BrowserModel{
		actions:          actions,
		secrets:          newList(theme.GetPrimaryColor()),
		keys:             newList(theme.GetSecondaryColor()),
		tabs:             []Tab{{Title: "Secrets"}, {Title: "Keys"}},
		activeTabIndex:   tabSecrets,
		currentState:     stateBrowsing,
		globalKeys:       GlobalKeyBindings(),
		secretsKeys:      SecretsKeyBindings(),
		keysKeys:         KeysKeyBindings(),
		showInstructions: true,
		blankLineCount:   3,
	}
	m.reload()
	return m
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// reload refreshes both lists, falling back to the root if the current
// folder disappeared
func (m *BrowserModel) reload() {
	tree, err := m.actions.Tree()
	if err != nil {
		m.setStatus(fmt.Sprintf("Failed to list store: %v", err), true)
		return
	}

	children := tree
	if m.folder != "" {
		node := tree.Lookup(m.folder)
		if node == nil || !node.IsFolder() {
			log.Debugf("Folder %s is gone, returning to root", m.folder)
			m.folder = ""
		} else {
			children = node.Children
		}
	}

	var items []list.Item
	for _, node := range sortedNodes(children) {
		items = append(items, EntryItem{
			Name:   node.Name,
			Path:   node.Path,
			Folder: node.IsFolder(),
			Secret: node.Secret,
		})
	}
	m.secrets.SetItems(items)

	keys, err := m.actions.Keys()
	if err != nil {
		m.setStatus(fmt.Sprintf("Failed to list keys: %v", err), true)
		return
	}
	keyItems := make([]list.Item, len(keys))
	for i, k := range keys {
		keyItems[i] = KeyItem{KeyEntry: k}
	}
	m.keys.SetItems(keyItems)
}

func (m *BrowserModel) setStatus(status string, isErr bool) {
	m.statusMessage = status
	m.statusErr = isErr
}

func (m BrowserModel) performRemove() tea.Cmd {
	entry := m.selected
	actions := m.actions
	return func() tea.Msg {
		if err := actions.Remove(entry.Path); err != nil {
			return actionCompleteMsg{err: err}
		}
		return actionCompleteMsg{status: "Removed " + entry.Path}
	}
}

func (m BrowserModel) performDuplicate(entry EntryItem) tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		copyPath, err := actions.Duplicate(entry.Path)
		if err != nil {
			return actionCompleteMsg{err: err}
		}
		return actionCompleteMsg{status: "Duplicated as " + copyPath}
	}
}

func (m BrowserModel) performToggle(key KeyItem) tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		if err := actions.ToggleKey(key.ID); err != nil {
			return actionCompleteMsg{err: err}
		}
		verb := "Disabled"
		if !key.Enabled {
			verb = "Enabled"
		}
		return actionCompleteMsg{status: verb + " key " + key.ID}
	}
}

func (m BrowserModel) loadSecret(entry EntryItem) tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		text, err := actions.Show(entry.Path)
		return secretLoadedMsg{text: text, err: err}
	}
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionCompleteMsg:
		m.reload()
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(msg.status, false)
		}
		m.currentState = stateBrowsing
		return m, nil

	case secretLoadedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			m.currentState = stateBrowsing
			return m, nil
		}
		m.detail = msg.text
		m.currentState = stateViewing
		return m, nil
	}

	// Handle confirmation form if active
	if m.currentState == stateConfirmingDelete && m.confirmForm != nil {
		remove, answered, cmd := m.confirmForm.Update(msg)

		if answered {
			if remove {
				m.currentState = stateWorking
				return m, tea.Batch(cmd, m.performRemove())
			}
			m.currentState = stateBrowsing
			return m, cmd
		} else if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.currentState = stateBrowsing
			return m, nil
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Content pane border is 2 chars wide (top border connects to tabs)
		const borderWidth = 2
		contentWidth := m.width - borderWidth

		layout := layoutFor(m.height)
		m.showInstructions = layout.showInstructions
		m.blankLineCount = layout.blankLines

		log.Debugf("WindowSizeMsg: terminal=%dx%d, list=%dx%d", m.width, m.height, contentWidth, layout.listRows)
		m.secrets.SetSize(contentWidth, layout.listRows)
		m.keys.SetSize(contentWidth, layout.listRows)
		return m, nil

	case tea.KeyMsg:
		switch m.currentState {
		case stateViewing:
			m.detail = ""
			m.currentState = stateBrowsing
			return m, nil

		case stateWorking:
			return m, nil

		case stateBrowsing:
			if binding := m.globalKeys.Contains(msg.String()); binding != nil {
				switch binding.Key {
				case "ESC":
					m.quitting = true
					return m, tea.Quit
				case "TAB":
					m.activeTabIndex = (m.activeTabIndex + 1) % len(m.tabs)
				}
				return m, nil
			}

			if m.activeTabIndex == tabSecrets {
				if binding := m.secretsKeys.Contains(msg.String()); binding != nil {
					return m.handleSecretsKey(binding.Key)
				}
			} else if binding := m.keysKeys.Contains(msg.String()); binding != nil {
				if item, ok := m.keys.SelectedItem().(KeyItem); ok {
					m.currentState = stateWorking
					return m, m.performToggle(item)
				}
				return m, nil
			}
		}
	}

	if m.currentState == stateBrowsing {
		var cmd tea.Cmd
		if m.activeTabIndex == tabSecrets {
			m.secrets, cmd = m.secrets.Update(msg)
		} else {
			m.keys, cmd = m.keys.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m BrowserModel) handleSecretsKey(key string) (tea.Model, tea.Cmd) {
	if key == "BACK" {
		if m.folder != "" {
			m.folder, _ = storepath.Parent(m.folder)
			m.reload()
			m.secrets.Select(0)
		}
		return m, nil
	}

	item, ok := m.secrets.SelectedItem().(EntryItem)
	if !ok {
		return m, nil
	}

	switch key {
	case "ENTER":
		if item.Folder {
			m.folder = item.Path
			m.setStatus("", false)
			m.reload()
			m.secrets.Select(0)
			return m, nil
		}
		m.currentState = stateWorking
		return m, m.loadSecret(item)

	case "VIEW":
		if item.Secret {
			m.currentState = stateWorking
			return m, m.loadSecret(item)
		}

	case "COPY":
		m.currentState = stateWorking
		return m, m.performDuplicate(item)

	case "DEL":
		m.selected = item
		m.confirmForm = newRemovalForm(item)
		m.currentState = stateConfirmingDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	// View() may be called before WindowSizeMsg arrives
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	theme := config.CurrentTheme

	location := "/"
	if m.folder != "" {
		location = m.folder + "/"
	}
	header := theme.RenderHeader(m.width, "BROWSER", location)

	tabsRow := RenderTabs(m.tabs, TabsConfig{
		ActiveIndex: m.activeTabIndex,
		Width:       m.width,
	})

	var tabContent string
	var tabKeys KeyBindingSet
	if m.activeTabIndex == tabSecrets {
		tabContent = m.secrets.View()
		if len(m.secrets.Items()) == 0 {
			tabContent = theme.SubtleStyle().Render("(empty folder)")
		}
		tabKeys = m.secretsKeys
	} else {
		tabContent = m.keys.View()
		if len(m.keys.Items()) == 0 {
			tabContent = theme.SubtleStyle().Render("(no keys)")
		}
		tabKeys = m.keysKeys
	}

	helpStyle := lipgloss.NewStyle().Foreground(theme.GetMutedColor())
	contentWithHelp := lipgloss.JoinVertical(lipgloss.Left, tabContent, "", tabKeys.RenderInline(helpStyle))
	contentPane := RenderTabContent(contentWithHelp, m.width-2, 0)

	status := ""
	if m.statusMessage != "" {
		if m.statusErr {
			status = theme.ErrorMessage(m.statusMessage)
		} else {
			status = theme.SuccessMessage(m.statusMessage)
		}
	}

	footer := theme.RenderFooter(m.width, m.globalKeys.Render(lipgloss.NewStyle()))

	layoutParts := []string{header}
	if m.blankLineCount >= 1 {
		layoutParts = append(layoutParts, "")
	}
	if m.showInstructions {
		instructions := lipgloss.NewStyle().
			Foreground(theme.GetMutedColor()).
			Width(m.width).
			Align(lipgloss.Center).
			Render("Browse folders and secrets. Disabled keys are left out when secrets are written.")
		layoutParts = append(layoutParts, instructions)
	}
	if m.blankLineCount >= 2 {
		layoutParts = append(layoutParts, "")
	}
	layoutParts = append(layoutParts, tabsRow, contentPane, status)
	if m.blankLineCount >= 3 {
		layoutParts = append(layoutParts, "")
	}
	layoutParts = append(layoutParts, footer)

	baseView := lipgloss.JoinVertical(lipgloss.Left, layoutParts...)

	switch m.currentState {
	case stateConfirmingDelete:
		return centered(m.confirmForm.View(), m.width, m.height)

	case stateViewing:
		content := lipgloss.JoinVertical(lipgloss.Left, m.detail, "", theme.SubtleStyle().Render("Press any key to close"))
		return renderModal(content, m.width, m.height, theme.GetSecondaryColor(), min(70, m.width-4))

	case stateWorking:
		return renderModal(theme.SubtleStyle().Render("Working..."), m.width, m.height, theme.GetPrimaryColor(), 30)
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, baseView)
}

// RunBrowser runs the browser until the user exits
func RunBrowser(actions BrowserActions) error {
	p := tea.NewProgram(NewBrowser(actions), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
