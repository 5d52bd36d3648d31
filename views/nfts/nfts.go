// Package nfts renders the tokens held by the account.
package nfts

import (
	"charm-dapp-wallet/nft"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/views/section"

	"github.com/charmbracelet/lipgloss"
)

func Render(v panel.View[nft.NFT], focused bool, spin string) string {
	return section.Render(section.Options{
		Title:   "NFTs",
		Empty:   "No NFTs on this network.",
		Focused: focused,
		Spinner: spin,
	}, v, func(n nft.NFT) string {
		title := lipgloss.NewStyle().Foreground(styles.CAccent2).Render(n.Title())
		return "◆ " + styles.Link(n.ImageURL, title) + "  " + styles.Muted(n.Collection)
	})
}
