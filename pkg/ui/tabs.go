// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"strings"

	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/charmbracelet/lipgloss"
)

// Tab is a single tab header
type Tab struct {
	Title string
}

// TabsConfig holds configuration for tab rendering
type TabsConfig struct {
	ActiveIndex int
	Width       int // Total width available for all tabs
}

// RenderTabs renders a row of tabs that opens into the content pane below
func RenderTabs(tabs []Tab, cfg TabsConfig) string {
	theme := config.CurrentTheme

	// Tab border style with bottom connection
	tabBorder := tabBorderWithBottom("┴", "─", "┴")

	activeTabStyle := lipgloss.NewStyle().
		Border(tabBorder, true).
		BorderForeground(theme.GetSecondaryColor()).
		Padding(0, 1)

	inactiveTabStyle := lipgloss.NewStyle().
		Border(tabBorder, true).
		BorderForeground(theme.GetMutedColor()).
		Padding(0, 1)

	var renderedTabs []string

	for i, tab := range tabs {
		isFirst := i == 0
		isLast := i == len(tabs)-1
		isActive := i == cfg.ActiveIndex

		style := inactiveTabStyle
		titleText := theme.InactiveIndicator() + " " + tab.Title
		if isActive {
			style = activeTabStyle
			titleText = theme.ActiveIndicator() + " " + tab.Title
		}

		// Adjust borders based on viewing state and position
		border, _, _, _, _ := style.GetBorder()

		if isActive {
			// Tab being viewed - remove bottom border
			border.BottomLeft = "┘"
			border.Bottom = " "
			border.BottomRight = "└"

			if isFirst {
				border.BottomLeft = "│"
			}
		} else if isFirst {
			border.BottomLeft = "├"
		}

		// Last tab connects to extension line
		if isLast && !isActive {
			border.BottomRight = "┴"
		}

		style = style.Border(border)

		renderedTabs = append(renderedTabs, style.Render(titleText))
	}

	tabsRow := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)

	// Measure tabs width and add horizontal line to fill remaining width
	tabsWidth := lipgloss.Width(tabsRow)

	if cfg.Width > tabsWidth {
		remainingWidth := cfg.Width - tabsWidth

		// The bottom line ends with ┐ above the content pane's right border
		topLine := strings.Repeat(" ", remainingWidth)
		middleLine := strings.Repeat(" ", remainingWidth)
		bottomLine := lipgloss.NewStyle().
			Foreground(theme.GetPrimaryColor()).
			Render(strings.Repeat("─", remainingWidth-1) + "┐")

		extension := lipgloss.JoinVertical(lipgloss.Left, topLine, middleLine, bottomLine)
		return lipgloss.JoinHorizontal(lipgloss.Top, tabsRow, extension)
	}

	return tabsRow
}

// RenderTabContent renders the content pane for the active tab
func RenderTabContent(content string, width, height int) string {
	theme := config.CurrentTheme

	windowStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.GetPrimaryColor()).
		BorderTop(false). // No top border - connects to tabs
		Width(width).
		Height(height).
		Padding(1, 2)

	return windowStyle.Render(content)
}

// tabBorderWithBottom creates a custom border with specified bottom characters
func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}
