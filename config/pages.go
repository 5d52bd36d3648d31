package config

// Page identifies a top-level view
type Page int

const (
	PageMarket Page = iota
	PageWallet
	PageTransfer
	PageDeploy
	PageContracts
	PageLedger
	PageSettings
)

var pageTitles = map[Page]string{
	PageMarket:    "Market",
	PageWallet:    "Wallet",
	PageTransfer:  "Token Actions",
	PageDeploy:    "Deploy",
	PageContracts: "Deployed Contracts",
	PageLedger:    "Ledger",
	PageSettings:  "Settings",
}

// Title returns the tab label for p
func (p Page) Title() string {
	if t, ok := pageTitles[p]; ok {
		return t
	}
	return "?"
}

// Pages lists the pages in tab order
func Pages() []Page {
	return []Page{PageMarket, PageWallet, PageTransfer, PageDeploy, PageContracts, PageLedger, PageSettings}
}
