// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the application color scheme
type Theme struct {
	Primary   string // Folder names and headings
	Secondary string // Secret names
	Muted     string // Paths, hints, field labels
	Success   string
	Info      string
	Warning   string
	Error     string
}

// CurrentTheme is the active theme used throughout the application
var CurrentTheme = Theme{
	Primary:   "#82FB9C",
	Secondary: "#7cf8f7",
	Muted:     "#6a6e95",
	Success:   "#82FB9C",
	Info:      "#7cf8f7",
	Warning:   "#FFD700",
	Error:     "#FF6B6B",
}

func (t Theme) GetPrimaryColor() lipgloss.Color {
	return lipgloss.Color(t.Primary)
}

func (t Theme) GetSecondaryColor() lipgloss.Color {
	return lipgloss.Color(t.Secondary)
}

func (t Theme) GetMutedColor() lipgloss.Color {
	return lipgloss.Color(t.Muted)
}

func (t Theme) GetSuccessColor() lipgloss.Color {
	return lipgloss.Color(t.Success)
}

func (t Theme) GetErrorColor() lipgloss.Color {
	return lipgloss.Color(t.Error)
}

// Common style builders for consistent UI

func (t Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true)
}

func (t Theme) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info))
}

func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error))
}

func (t Theme) SubtleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetMutedColor())
}

// FolderStyle renders folder names in trees and lists
func (t Theme) FolderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetPrimaryColor()).Bold(true)
}

// SecretStyle renders secret names in trees and lists
func (t Theme) SecretStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetSecondaryColor())
}

// LabelStyle renders record field names
func (t Theme) LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetMutedColor()).Bold(true)
}

// Message formatters with theme-appropriate icons

func (t Theme) SuccessMessage(text string) string {
	return t.SuccessStyle().Render("✓ " + text)
}

func (t Theme) InfoMessage(text string) string {
	return t.InfoStyle().Render("ℹ " + text)
}

func (t Theme) WarningMessage(text string) string {
	return t.WarningStyle().Render("⚠ " + text)
}

func (t Theme) ErrorMessage(text string) string {
	return t.ErrorStyle().Render("✗ " + text)
}

// ActiveIndicator returns a solid dot for the selected tab or an enabled key
func (t Theme) ActiveIndicator() string {
	return t.SuccessStyle().Render("●")
}

// InactiveIndicator returns an empty circle for unselected tabs or disabled keys
func (t Theme) InactiveIndicator() string {
	return t.SubtleStyle().Render("○")
}

// RenderHeader renders the banner shown at the top of full-screen views
// Format: "  KEEP  ▸  SECTION  ▸  [CONTEXT]  "
func (t Theme) RenderHeader(width int, section, context string) string {
	headerText := fmt.Sprintf("  KEEP  ▸  %s  ▸  [%s]  ", section, context)
	return lipgloss.NewStyle().
		Foreground(t.GetSecondaryColor()).
		Bold(true).
		Width(width).
		Align(lipgloss.Center).
		Render(headerText)
}

// RenderFooter renders a footer with box characters
// Format: "╰─ [content] ─╯"
func (t Theme) RenderFooter(width int, content string) string {
	footerText := "╰─ " + content + " ─╯"
	return lipgloss.NewStyle().
		Foreground(t.GetMutedColor()).
		Width(width).
		Align(lipgloss.Center).
		Render(footerText)
}
