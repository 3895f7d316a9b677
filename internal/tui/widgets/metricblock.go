// ABOUTME: Compact metric block widget for dashboard stat rows
// ABOUTME: Renders an icon title in the border with a value and subtitle beneath

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/cabdesk/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth-1)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	// "┌─ " + title + " " + fill + "┐" spans config.Width
	fill := max(0, config.Width-5-lipgloss.Width(titleStr))
	topBorder := borderStyle.Render("┌─ ") + titleStyle.Render(titleStr) + borderStyle.Render(" "+strings.Repeat("─", fill)+"┐")

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return strings.Join([]string{
		topBorder,
		boxLine(valueStyle.Render(truncate(value, innerWidth-1)), innerWidth, borderStyle),
		boxLine(subtitleStyle.Render(truncate(subtitle, innerWidth-1)), innerWidth, borderStyle),
		borderStyle.Render("└" + strings.Repeat("─", config.Width-2) + "┘"),
	}, "\n")
}

// CountBlock renders a simple count metric
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

// StatRow lays blocks out side by side with a one-column gap
func StatRow(blocks ...string) string {
	spaced := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		if i > 0 {
			spaced = append(spaced, " ")
		}
		spaced = append(spaced, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}

// boxLine renders "│  " + content padded to innerWidth + "│"
func boxLine(content string, innerWidth int, border lipgloss.Style) string {
	pad := max(0, innerWidth-lipgloss.Width(content))
	return border.Render("│  ") + content + strings.Repeat(" ", pad) + border.Render("│")
}

// truncate shortens a string to maxLen with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}
