// Package home renders the market overview: a multi-series chart of the top
// assets over the last day, the prices at a chosen hour and a sortable table.
package home

import (
	"fmt"
	"strings"

	"charm-dapp-wallet/market"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/styles"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Nav returns the navigation bar for the market page
func Nav(width int, key market.SortKey, desc bool) string {
	order := "asc"
	if desc {
		order = "desc"
	}
	return styles.Nav(width,
		"←/→", "hour",
		"↑/↓", "row",
		"o", "sort: "+key.String(),
		"O", order,
		"r", "refresh",
		"1-7", "pages",
		"l", "debug log",
		"q", "quit",
	)
}

// Rows builds the table rows for assets with the price at hour
func Rows(assets []market.Asset, hour int) []table.Row {
	return lo.Map(assets, func(a market.Asset, _ int) table.Row {
		at := "-"
		if p, ok := market.PriceAt(a, hour); ok {
			at = formatUSD(p)
		}
		return table.Row{
			fmt.Sprint(a.MarketCapRank),
			a.Name,
			strings.ToUpper(a.Symbol),
			formatUSD(a.CurrentPrice),
			fmt.Sprintf("%+.2f%%", a.PriceChange24h),
			at,
		}
	})
}

// Render draws the chart and the hour panel above the table
func Render(width int, v panel.View[market.Asset], hour int, tableView, spin string) string {
	h := styles.TitleStyle.Render("Market") + styles.Muted("  top assets, last 24h")

	switch {
	case v.Loading && len(v.Items) == 0:
		return h + "\n\n" + spin + " fetching market data…"
	case v.Err != nil && len(v.Items) == 0:
		return h + "\n\n" + styles.WarnStyle.Render("⚠ "+v.Err.Error())
	case len(v.Items) == 0:
		return h + "\n\n" + styles.Muted("No market data.")
	}

	side := hourPanel(v.Items, hour)
	chartWidth := max(10, width-lipgloss.Width(side)-16)
	chart := market.Plot(v.Items, chartWidth, 10, fmt.Sprintf("%% change since hour 0, cursor at hour %d", hour))
	top := lipgloss.JoinHorizontal(lipgloss.Top, chart, "   ", side)

	status := ""
	if v.Loading {
		status = "  " + spin + " refreshing…"
	} else if v.Err != nil {
		status = "  " + styles.WarnStyle.Render("⚠ "+v.Err.Error())
	}

	return h + status + "\n\n" + top + "\n\n" + tableView
}

func hourPanel(assets []market.Asset, hour int) string {
	lines := []string{styles.TitleStyle.Render(fmt.Sprintf("Hour %d", hour))}
	for i, a := range assets {
		p, ok := market.PriceAt(a, hour)
		if !ok {
			continue
		}
		dot := market.Swatch(i, "●")
		lines = append(lines, fmt.Sprintf("%s %-5s %s", dot, strings.ToUpper(a.Symbol), styles.ValueStyle.Render(formatUSD(p))))
	}
	return strings.Join(lines, "\n")
}

func formatUSD(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("$%.0f", p)
	case p >= 1:
		return fmt.Sprintf("$%.2f", p)
	default:
		return fmt.Sprintf("$%.4f", p)
	}
}
