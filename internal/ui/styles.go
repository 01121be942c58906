package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One amber accent over grays, readable on dark and light
// terminals.
const (
	colorAmber    = "214" // primary accent
	colorAmberDim = "172" // borders, inactive accent
	colorWhite    = "255"
	colorGray     = "245"
	colorDarkGray = "238"
	colorRed      = "196"
)

// Styles holds the lipgloss styles for the interactive search view.
type Styles struct {
	Header    lipgloss.Style
	Prompt    lipgloss.Style
	HitNumber lipgloss.Style
	HitPath   lipgloss.Style
	HitPage   lipgloss.Style
	Preview   lipgloss.Style
	Match     lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Status    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAmber)),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorAmber)),
		HitNumber: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAmber)),
		HitPath:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite)),
		HitPage:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Preview:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Match:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAmber)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorAmberDim)),
	}
}

// NoColorStyles returns bare styles for NO_COLOR terminals.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header: plain, Prompt: plain, HitNumber: plain, HitPath: plain,
		HitPage: plain, Preview: plain, Match: plain, Error: plain,
		Help: plain, Status: plain,
	}
}

// HighlightFunc returns the preview decorator matching these styles.
func (s Styles) HighlightFunc() func(string) string {
	return func(word string) string { return s.Match.Render(word) }
}
