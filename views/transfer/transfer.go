// Package transfer renders the token actions page: the send form and the
// outcome of the last submission.
package transfer

import (
	"fmt"
	"strings"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/session"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/txn"
)

// State is what the page shows.
type State struct {
	Session   session.State
	Form      string // rendered form, empty when closed
	Sending   bool
	Result    *txn.Result
	Error     string
	QuickSend string
	Flash     string
	Spinner   string
}

func Nav(width int, formOpen bool) string {
	if formOpen {
		return styles.Nav(width, "Tab", "next field", "Enter", "next/submit", "Esc", "cancel")
	}
	return styles.Nav(width,
		"Enter", "send",
		"f", "quick send",
		"y", "copy hash",
		"Esc", "clear",
		"1-7", "pages",
		"l", "debug log",
		"q", "quit",
	)
}

func Render(s State) string {
	h := styles.TitleStyle.Render("Token Actions")
	if s.Form != "" {
		return h + "\n\n" + s.Form
	}

	info, _ := network.Lookup(s.Session.Network)
	lines := []string{h}
	if s.Session.Ready() {
		lines = append(lines, styles.Muted(fmt.Sprintf("From %s on %s", s.Session.Account.Hex(), s.Session.NetworkName)))
		if s.Session.NativeBalance != nil {
			lines = append(lines, styles.Muted("Balance ")+styles.ValueStyle.Render(helpers.FormatNative(s.Session.NativeBalance, info.Symbol)))
		}
	} else {
		lines = append(lines, styles.WarnStyle.Render("Connect a wallet and select a network to send."))
	}
	lines = append(lines, "",
		styles.Key("Enter")+styles.Muted(" send the native coin or an ERC20 token"),
		styles.Key("f")+styles.Muted(fmt.Sprintf(" quick send %s %s", s.QuickSend, info.Symbol)),
		"",
	)

	switch {
	case s.Sending:
		lines = append(lines, s.Spinner+" waiting for signature and confirmation…")
	case s.Error != "":
		lines = append(lines, styles.ErrorStyle.Render(s.Error))
	case s.Result != nil:
		hash := s.Result.Hash.Hex()
		lines = append(lines,
			styles.OkStyle.Render("✓ Transaction confirmed"),
			styles.Muted("Hash ")+styles.Link(info.TxURL(hash), hash),
		)
		if r := s.Result.Receipt; r != nil {
			lines = append(lines, styles.Muted(fmt.Sprintf("Block %s, gas used %d of %d", r.BlockNumber, r.GasUsed, s.Result.GasLimit)))
		}
	}
	if s.Flash != "" {
		lines = append(lines, "", styles.OkStyle.Render(s.Flash))
	}
	return strings.Join(lines, "\n")
}
