// Package deploy renders the contract deployment page.
package deploy

import (
	"fmt"
	"strings"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/txn"
)

// State is what the page shows.
type State struct {
	Network     network.ID
	ABI         string
	Bytecode    string
	Value       string
	Form        string
	Deploying   bool
	Result      *txn.DeploymentResult
	Error       string
	Deployments []txn.DeploymentResult
	Spinner     string
}

func Nav(width int, formOpen bool) string {
	if formOpen {
		return styles.Nav(width, "Tab", "next field", "Enter", "save", "Esc", "cancel")
	}
	return styles.Nav(width,
		"a", "Lock ABI",
		"b", "Lock bytecode",
		"e", "edit",
		"Enter", "deploy",
		"r", "reset",
		"y", "copy address",
		"1-7", "pages",
		"q", "quit",
	)
}

func Render(s State) string {
	h := styles.TitleStyle.Render("Deploy")
	if s.Form != "" {
		return h + "\n\n" + s.Form
	}

	info, _ := network.Lookup(s.Network)
	lines := []string{h, styles.Muted("Target network: " + s.Network.Name()), ""}
	lines = append(lines,
		field("ABI", s.ABI),
		field("Bytecode", s.Bytecode),
		field("Value", s.Value),
		"",
	)

	switch {
	case s.Deploying:
		lines = append(lines, s.Spinner+" deploying, waiting for the receipt…")
	case s.Error != "":
		lines = append(lines, styles.ErrorStyle.Render(s.Error))
	case s.Result != nil:
		addr := s.Result.ContractAddress.Hex()
		lines = append(lines,
			styles.OkStyle.Render("✓ Contract deployed"),
			styles.Muted("Address ")+styles.Link(info.AddressURL(addr), addr),
			styles.Muted("Tx      ")+styles.Link(info.TxURL(s.Result.TransactionHash.Hex()), s.Result.TransactionHash.Hex()),
			"",
			styles.Key("r")+styles.Muted(" deploy another"),
		)
	}

	if len(s.Deployments) > 0 {
		lines = append(lines, "", styles.TitleStyle.Render("This session"))
		for _, d := range s.Deployments {
			lines = append(lines, fmt.Sprintf("%s  %s  %s",
				styles.Muted(d.DeployedAt.Format("15:04:05")),
				styles.ValueStyle.Render(helpers.ShortenAddr(d.ContractAddress.Hex())),
				styles.Muted(d.Network.Name()),
			))
		}
	}
	return strings.Join(lines, "\n")
}

func field(name, v string) string {
	label := styles.Muted(fmt.Sprintf("%-9s", name))
	if v == "" {
		return label + styles.WarnStyle.Render("not set")
	}
	preview := v
	if len(preview) > 48 {
		preview = preview[:45] + "..."
	}
	preview = strings.ReplaceAll(preview, "\n", " ")
	return label + styles.ValueStyle.Render(preview) + styles.Muted(fmt.Sprintf("  (%d chars)", len(v)))
}
