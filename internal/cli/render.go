package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/klokku/dailybudget/pkg/budget_engine"
)

var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	budgetStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			Width(72)
)

// RiskColor picks green, orange or red for a risk score.
func RiskColor(risk float64) lipgloss.Color {
	switch {
	case risk >= 0.6:
		return ColorRed
	case risk >= 0.3:
		return ColorOrange
	}
	return ColorGreen
}

// RenderResult renders a calculation as a bordered summary box.
func RenderResult(result budget_engine.CalculationResult) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("DAILY BUDGET"))
	sb.WriteString("\n\n")
	row(&sb, "Budget", budgetStyle.Render(fmt.Sprintf("%.2f", result.DailyBudget)))
	row(&sb, "Confidence", valueStyle.Render(fmt.Sprintf("%.0f%%", result.Confidence*100)))
	row(&sb, "Risk", lipgloss.NewStyle().Foreground(RiskColor(result.RiskScore)).Render(fmt.Sprintf("%.2f", result.RiskScore)))
	if result.Metadata.IncomeTier != "" {
		row(&sb, "Income tier", valueStyle.Render(result.Metadata.IncomeTier))
	}
	row(&sb, "Data quality", valueStyle.Render(string(result.Metadata.DataQuality)))
	row(&sb, "Target date", valueStyle.Render(result.Metadata.TargetDate.Format("2006-01-02 (Mon)")))
	if result.Metadata.Fallback {
		sb.WriteString(warnStyle.Render("Basic estimate: " + result.Metadata.FallbackReason))
		sb.WriteString("\n")
	}

	if len(result.Adjustments) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("Adjustments"))
		sb.WriteString("\n")
		for _, a := range result.Adjustments {
			reason := a.Reason
			if reason == "" {
				reason = a.Stage
			}
			sb.WriteString(fmt.Sprintf("  x%.3f  %s\n", a.Multiplier, reason))
		}
	}

	if len(result.Insights) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("Insights"))
		sb.WriteString("\n")
		for _, insight := range result.Insights {
			sb.WriteString("  - " + insight + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(valueStyle.Render(result.Explanation))

	return boxStyle.Render(sb.String())
}

func row(sb *strings.Builder, label string, value string) {
	sb.WriteString(labelStyle.Render(label))
	sb.WriteString(value)
	sb.WriteString("\n")
}
