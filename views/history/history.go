// Package history renders the account's recent transactions.
package history

import (
	"fmt"
	"strings"

	"charm-dapp-wallet/explorer"
	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/views/section"

	"github.com/ethereum/go-ethereum/common"
)

// Render draws the transaction panel. Hashes link to the explorer.
func Render(v panel.View[explorer.Transaction], info network.Info, account common.Address, focused bool, spin string) string {
	return section.Render(section.Options{
		Title:   "Recent Transactions",
		Empty:   "No transactions yet.",
		Focused: focused,
		Spinner: spin,
	}, v, func(t explorer.Transaction) string {
		return Line(t, info, account)
	})
}

// Line is one transaction row: direction, value, counterparty and age
func Line(t explorer.Transaction, info network.Info, account common.Address) string {
	dir, other := "→", t.To
	switch {
	case t.IsCreation():
		dir, other = "✦", t.ContractAddress
	case strings.EqualFold(t.To, account.Hex()):
		dir, other = "←", t.From
	}

	status := styles.OkStyle.Render("✓")
	if !t.Success {
		status = styles.ErrorStyle.Render("✗")
	}

	symbol := info.Symbol
	if symbol == "" {
		symbol = "ETH"
	}
	hash := styles.Link(info.TxURL(t.Hash), helpers.ShortenAddr(t.Hash))
	return fmt.Sprintf("%s %s %s  %s %s  %s",
		status, hash, dir,
		styles.ValueStyle.Render(helpers.FormatNative(t.ValueWei, symbol)),
		styles.Muted(helpers.ShortenAddr(other)),
		styles.Muted(t.Timestamp.Format("2006-01-02 15:04")),
	)
}
