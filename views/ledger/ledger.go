// Package ledger renders the chain served by the demo proof-of-work backend.
package ledger

import (
	"fmt"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/ledger"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/views/section"
)

func Nav(width int) string {
	return styles.Nav(width,
		"m", "mine",
		"r", "reload",
		"Space", "more",
		"1-7", "pages",
		"l", "debug log",
		"q", "quit",
	)
}

func Render(url string, v panel.View[ledger.Block], mining bool, lastMined, spin string) string {
	body := section.Render(section.Options{
		Title:   "Ledger",
		Empty:   "The chain is empty.",
		Spinner: spin,
		Key:     "Space",
	}, v, func(b ledger.Block) string {
		return fmt.Sprintf("#%-4d %s  proof %-8d prev %s",
			b.Index,
			styles.Muted(b.Timestamp),
			b.Proof,
			styles.ValueStyle.Render(helpers.ShortenAddr(b.PreviousHash)),
		)
	})

	out := body + "\n\n" + styles.Muted("Backend "+url)
	switch {
	case mining:
		out += "\n" + spin + " mining…"
	case lastMined != "":
		out += "\n" + styles.OkStyle.Render("✓ "+lastMined)
	}
	return out
}
