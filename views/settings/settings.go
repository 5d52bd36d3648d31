package settings

import (
	"strings"

	"charm-dapp-wallet/config"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for settings view
func Nav(width int, settingsMode string) string {
	if settingsMode != "list" {
		return styles.Nav(width,
			"Tab", "next field",
			"Enter", "save",
			"Esc", "cancel",
		)
	}
	return styles.Nav(width,
		"↑/↓", "select",
		"Enter", "use network",
		"Space", "cycle RPC",
		"a", "add RPC",
		"e", "edit",
		"d", "delete",
		"K", "API keys",
		"l", "debug log",
		"q", "quit",
	)
}

// State is what the settings page shows.
type State struct {
	Networks    []network.Info
	Selected    int
	Current     network.ID // session network
	RPCURLs     []config.RPCUrl
	Endpoint    func(network.ID) string
	EtherscanOK bool
	OpenSeaOK   bool
}

// Render renders the network list with each network's endpoints
func Render(s State) string {
	h := styles.TitleStyle.Render("Settings")
	lines := []string{h, "", styles.Muted("Networks:"), ""}

	for i, n := range s.Networks {
		var marker string
		if n.ID == s.Current {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
		} else {
			marker = styles.Muted("○ ")
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
		urlStyle := lipgloss.NewStyle().Foreground(styles.CMuted)
		if i == s.Selected {
			nameStyle = nameStyle.Background(styles.CPanel).Foreground(styles.CAccent2).Bold(true)
			urlStyle = urlStyle.Background(styles.CPanel)
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Render("▶ ")
		}

		name := n.Name
		if n.Testnet {
			name += styles.Muted("  testnet")
		}
		lines = append(lines, marker+nameStyle.Render(name))
		lines = append(lines, "  "+urlStyle.Render(s.Endpoint(n.ID)))

		if i == s.Selected {
			for _, r := range s.RPCURLs {
				if network.ID(r.Network) != n.ID {
					continue
				}
				dot := "○"
				if r.Active {
					dot = styles.OkStyle.Render("●")
				}
				lines = append(lines, "    "+dot+" "+r.Name+"  "+styles.Muted(r.URL))
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		styles.Muted("Etherscan key: ")+keyState(s.EtherscanOK)+
			styles.Muted("   OpenSea key: ")+keyState(s.OpenSeaOK),
	)
	return strings.Join(lines, "\n")
}

func keyState(ok bool) string {
	if ok {
		return styles.OkStyle.Render("set")
	}
	return styles.WarnStyle.Render("missing")
}
