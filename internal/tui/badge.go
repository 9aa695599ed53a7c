package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/agents/internal/appconfig"
)

// providerBadge renders the chat provider name as a colored header badge.
func providerBadge(provider string) string {
	style := lipgloss.NewStyle().
		Padding(0, 1).
		MarginLeft(1).
		Bold(true)

	switch provider {
	case appconfig.ProviderGemini:
		style = style.Background(lipgloss.Color("33")).Foreground(lipgloss.Color("231"))
	case appconfig.ProviderOllama:
		style = style.Background(lipgloss.Color("35")).Foreground(lipgloss.Color("231"))
	default:
		style = style.Background(lipgloss.Color("240")).Foreground(lipgloss.Color("231"))
	}

	return style.Render("Provider: " + strings.ToUpper(provider))
}
