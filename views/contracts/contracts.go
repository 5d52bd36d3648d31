// Package contracts lists the contracts the account deployed, as reported by
// the block explorer.
package contracts

import (
	"fmt"

	"charm-dapp-wallet/explorer"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/session"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/views/section"
)

func Nav(width int) string {
	return styles.Nav(width,
		"r", "reload",
		"m", "more",
		"1-7", "pages",
		"l", "debug log",
		"q", "quit",
	)
}

func Render(st session.State, v panel.View[explorer.Transaction], hasKey bool, spin string) string {
	if !st.Ready() {
		return styles.TitleStyle.Render("Deployed Contracts") + "\n" + styles.Muted("Connect a wallet and select a network.")
	}
	info, _ := network.Lookup(st.Network)
	out := section.Render(section.Options{
		Title:   "Deployed Contracts",
		Empty:   "No contracts deployed from this account.",
		Spinner: spin,
	}, v, func(t explorer.Transaction) string {
		status := styles.OkStyle.Render("✓")
		if !t.Success {
			status = styles.ErrorStyle.Render("✗")
		}
		return fmt.Sprintf("%s %s  %s  %s",
			status,
			styles.Link(info.AddressURL(t.ContractAddress), styles.ValueStyle.Render(t.ContractAddress)),
			styles.Muted("block "+fmt.Sprint(t.BlockNumber)),
			styles.Muted(t.Timestamp.Format("2006-01-02 15:04")),
		)
	})
	if !hasKey {
		out += "\n\n" + styles.Muted("Set an Etherscan API key in Settings (") + styles.Key("K") + styles.Muted(") to list contracts.")
	}
	return out
}
