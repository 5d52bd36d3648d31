package wallets

import (
	"fmt"
	"strings"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/session"
	"charm-dapp-wallet/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

// ClickableArea represents a clickable region for mouse support
type ClickableArea struct {
	X, Y          int
	Width, Height int
	Index         int // account position in the session's list
}

// Nav returns the navigation bar for the wallet page
func Nav(width int, st session.State) string {
	if !st.HasAccount() {
		return styles.Nav(width,
			"c", "connect",
			"z", "clear",
			"1-7", "pages",
			"l", "debug log",
			"q", "quit",
		)
	}
	return styles.Nav(width,
		"↑/↓", "move",
		"Space", "activate",
		"y", "copy",
		"v", "receive QR",
		"r", "refresh",
		"Tab", "focus",
		"m", "more",
		"t/n", "reload txs/NFTs",
		"x", "disconnect",
		"z", "clear",
	)
}

// Render draws the session header and the authorized accounts
func Render(st session.State, selectedIdx int, connecting bool, authErr string, spin string) (string, []ClickableArea) {
	header := styles.TitleStyle.Render("Wallet")
	var sub string
	switch {
	case connecting:
		sub = spin + " waiting for the signer to authorize…"
	case st.Connected:
		sub = styles.Muted("Connected via " + st.Authority)
	default:
		sub = styles.Muted("Not connected. Press ") + styles.Key("c") + styles.Muted(" to connect.")
	}

	lines := []string{header, sub, ""}
	if authErr != "" {
		lines = append(lines, styles.WarnStyle.Render("⚠ "+authErr), "")
	}
	if st.Err != nil {
		lines = append(lines, styles.WarnStyle.Render("⚠ "+st.Err.Error()), "")
	}

	// area rows are relative to the first line of the returned content
	var areas []ClickableArea
	y := len(lines)
	if len(st.Accounts) == 0 {
		lines = append(lines, styles.Muted("No accounts authorized."))
		return strings.Join(lines, "\n"), areas
	}

	for i, addr := range st.Accounts {
		hex := addr.Hex()
		var marker, label string
		if i == selectedIdx {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("▶ ")
			label = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render(hex)
		} else {
			marker = "  "
			label = helpers.FadeString(hex, "#7D5AFC", "#FF87D7")
		}
		if addr == st.Account {
			label += styles.OkStyle.Render("  ✓ active")
		}
		lines = append(lines, marker+label)
		areas = append(areas, ClickableArea{X: 0, Y: y + i, Width: len(hex) + 2, Height: 1, Index: i})
	}

	lines = append(lines, "", styles.Muted(fmt.Sprintf("%d accounts", len(st.Accounts))))
	return strings.Join(lines, "\n"), areas
}

// QR renders the receive code for addr
func QR(addr string) string {
	var b strings.Builder
	qrterminal.GenerateHalfBlock(addr, qrterminal.L, &b)
	return b.String()
}
