package details

import (
	"fmt"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/rpc"
	"charm-dapp-wallet/session"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/views/section"

	"github.com/charmbracelet/lipgloss"
)

// Render renders the account balance and the watched token balances
func Render(st session.State, tokens panel.View[rpc.TokenBalance], focused bool, flash, spin string) string {
	h := styles.TitleStyle.Render("Account Details")
	if !st.HasAccount() {
		return h + "\n" + styles.Muted("Connect a wallet to see balances.")
	}

	info, _ := network.Lookup(st.Network)
	symbol := info.Symbol
	if symbol == "" {
		symbol = "ETH"
	}

	// Make address clickable with underline hint and hyperlink to the explorer
	addrStyle := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true)
	sub := styles.Link(info.AddressURL(st.Account.Hex()), addrStyle.Render(st.Account.Hex()))
	if flash != "" {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(flash)
	}

	var balance string
	switch {
	case st.Network == "":
		balance = styles.Muted("Select a network in Settings.")
	case st.NativeBalance == nil:
		balance = spin + " fetching balance…"
	default:
		balance = fmt.Sprintf("%s  %s",
			lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render(symbol),
			styles.ValueStyle.Render(helpers.FormatNative(st.NativeBalance, symbol)),
		)
	}

	list := section.Render(section.Options{
		Title:   "Tokens (watchlist)",
		Empty:   "No watched token balances found (non-zero).",
		Focused: focused,
		Spinner: spin,
	}, tokens, func(t rpc.TokenBalance) string {
		return fmt.Sprintf("%-6s  %s",
			lipgloss.NewStyle().Foreground(styles.CAccent).Render(t.Symbol),
			styles.ValueStyle.Render(helpers.FormatToken(t.Balance, t.Decimals, t.Symbol)),
		)
	})

	return h + "\n" + sub + "\n\n" + balance + "\n\n" + list
}
