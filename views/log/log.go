package log

import (
	"fmt"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Height is the number of log lines shown for a terminal of the given height
func Height(termHeight int) int {
	// header, nav, title and borders
	reserved := 10
	available := helpers.Max(5, termHeight-reserved)
	return helpers.Min(available, helpers.Min(termHeight/3, 15))
}

// Render renders the log panel. vp.Height must already be set with Height.
func Render(width int, logReady bool, logSpinnerView string, vp viewport.Model) string {
	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Render("Log")

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(vp.Height + 2)

	if !logReady {
		return border.Render(title + "\n\n" + "initializing...\n" + logSpinnerView)
	}

	if vp.TotalLineCount() > vp.Height {
		title += styles.Muted(fmt.Sprintf(" [%d%%]  pgup/pgdn scroll", int(vp.ScrollPercent()*100)))
	}
	return border.Render(title + "\n\n" + vp.View())
}
