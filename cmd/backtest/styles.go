package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/rxtech-lab/argo-backtest/internal/datasource"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// FormatPercent formats a percentage, colored by sign.
func FormatPercent(value float64) string {
	text := fmt.Sprintf("%.2f%%", value)

	switch {
	case value > 0:
		return gainStyle.Render(text)
	case value < 0:
		return lossStyle.Render(text)
	default:
		return text
	}
}

func renderSummary(summary backtest.Summary) string {
	metrics := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Value").
		Row("Total return", FormatPercent(summary.TotalReturn)).
		Row("Buy & hold return", FormatPercent(summary.BuyAndHoldReturn)).
		Row("Max drawdown", FormatPercent(summary.MaxDrawdown)).
		Row("Sharpe ratio", fmt.Sprintf("%.4f", summary.SharpeRatio))

	title := TitleStyle.Render(fmt.Sprintf("%s %s/%s", summary.Symbol, summary.Period, summary.Interval))
	details := HelpStyle.Render(fmt.Sprintf("%d bars from %s to %s, strategies: %v",
		summary.Bars,
		summary.Start.Format("2006-01-02 15:04"),
		summary.End.Format("2006-01-02 15:04"),
		summary.Strategies,
	))

	return lipgloss.JoinVertical(lipgloss.Left, title, details, metrics.Render())
}

func renderProvider(info datasource.ProviderInfo) string {
	auth := ""
	if info.RequiresAuth {
		auth = HelpStyle.Render(" (requires API key)")
	}

	return TitleStyle.Render(info.Name) + auth + "\n  " + info.Description
}
