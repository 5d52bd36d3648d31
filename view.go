package main

import (
	"errors"
	"fmt"
	"strings"

	"charm-dapp-wallet/config"
	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/signer"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/txn"
	"charm-dapp-wallet/views/contracts"
	"charm-dapp-wallet/views/deploy"
	"charm-dapp-wallet/views/details"
	"charm-dapp-wallet/views/history"
	"charm-dapp-wallet/views/home"
	ledgerview "charm-dapp-wallet/views/ledger"
	logview "charm-dapp-wallet/views/log"
	"charm-dapp-wallet/views/nfts"
	"charm-dapp-wallet/views/settings"
	"charm-dapp-wallet/views/transfer"
	"charm-dapp-wallet/views/wallets"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

// describeError turns a submission or session error into the text shown to
// the user
func describeError(err error, deploying bool) string {
	if err == nil {
		return ""
	}
	var te *txn.Error
	detail := err.Error()
	if errors.As(err, &te) && te.Err != nil {
		detail = te.Err.Error()
	}

	switch txn.Classify(err) {
	case txn.InvalidInput:
		return "Invalid input: " + detail
	case txn.NoProvider:
		return "No wallet provider found. Configure keystore_dir or signer_endpoint."
	case txn.Rejected:
		return "Transaction was rejected."
	case txn.Reverted:
		if deploying {
			return "Deployment failed due to a CALL_EXCEPTION error. Check your constructor logic or ABI."
		}
		return "Transaction reverted."
	case txn.InsufficientFunds:
		return "Insufficient funds in the account."
	case txn.ArgumentCount:
		return "Incorrect number of arguments provided to constructor."
	case txn.Network:
		return "Network error: " + detail
	}
	return detail
}

func (m *model) renderConfirmDialog() string {
	dialogBoxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#874BFD")).
		Padding(1, 0).
		BorderTop(true).
		BorderLeft(true).
		BorderRight(true).
		BorderBottom(true)

	msg := helpers.FadeString(m.confirm.question, "#F25D94", "#EDFF82")
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(msg)

	// Apply active style to the selected button
	var okButton, cancelButton string
	if m.confirm.yes {
		okButton = styles.ActiveButtonStyle.Render("Yes")
		cancelButton = styles.ButtonStyle.Render("No")
	} else {
		okButton = styles.ButtonStyle.MarginRight(2).Render("Yes")
		cancelButton = styles.ActiveButtonStyle.MarginRight(0).Render("No")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, okButton, cancelButton)
	ui := lipgloss.JoinVertical(lipgloss.Center, question, buttons)

	// Center the dialog on screen
	return lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		dialogBoxStyle.Render(ui),
	)
}

func (m *model) renderQR() string {
	addr := m.sess.Snapshot().Account.Hex()
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("Receive"),
		"",
		wallets.QR(addr),
		styles.ValueStyle.Render(addr),
		"",
		styles.Muted("Esc or v to close"),
	)
	return appStyle.Render(lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		panelStyle.Render(content),
	))
}

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding
	st := m.sess.Snapshot()

	var addrDisplay string
	if st.HasAccount() {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Account: " + helpers.FadeString(helpers.ShortenAddr(st.Account.Hex()), "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Account: Not connected")
	}

	var statusIcon, statusText string
	statusColor := lipgloss.Color("#c01c28")
	switch {
	case m.connecting:
		statusIcon, statusText = "○", "Connecting..."
	case st.Network == "":
		statusIcon, statusText = "○", "No network"
	default:
		statusIcon, statusText = "●", st.NetworkName
		statusColor = cAccent
	}

	netDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	titleText := lipgloss.NewStyle().
		Foreground(cAccent).
		Bold(true).
		Render(helpers.FadeString("charm dapp wallet", "#7EE787", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	netWidth := lipgloss.Width(netDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + netWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + netDisplay
	} else {
		// Three-column layout: Account | Title (centered) | Network
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		headerLine = addrDisplay + strings.Repeat(" ", max(1, leftPadding)) +
			titleText + strings.Repeat(" ", max(1, rightPadding)) + netDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

// tabs lists the pages with their number keys
func (m *model) tabs() string {
	var parts []string
	for i, p := range config.Pages() {
		label := fmt.Sprintf(" %d %s ", i+1, p.Title())
		if p == m.activePage {
			parts = append(parts, lipgloss.NewStyle().Foreground(cBg).Background(cAccent2).Bold(true).Render(label))
		} else {
			parts = append(parts, hotkeyStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m *model) View() string {
	// Clear clickable areas for fresh render
	m.clickableAreas = nil

	if m.confirm != nil {
		return m.renderConfirmDialog()
	}
	if m.showQR {
		return m.renderQR()
	}

	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(m.globalHeader())
	tabs := m.tabs()
	width := max(0, m.w-2)
	st := m.sess.Snapshot()
	info, _ := network.Lookup(st.Network)
	spin := m.spin.View()

	var pageContent, nav string

	switch m.activePage {
	case config.PageMarket:
		v := m.assets.Snapshot()
		content := home.Render(width-6, v, m.hour, m.assetTable.View(), spin)
		pageContent = panelStyle.Width(width).Render(content)
		nav = home.Nav(width, m.sortKey, m.sortDesc)

	case config.PageWallet:
		authErr := ""
		if m.authErr != nil && !errors.Is(m.authErr, signer.ErrNoProvider) {
			authErr = "Signer setup failed: " + m.authErr.Error()
		}
		walletsContent, areas := wallets.Render(st, m.selectedAccount, m.connecting, authErr, spin)

		right := strings.Join([]string{
			details.Render(st, m.tokens.Snapshot(), m.walletFocus == focusTokens, m.flash, spin),
			history.Render(m.history.Snapshot(), info, st.Account, m.walletFocus == focusHistory, spin),
			nfts.Render(m.nftList.Snapshot(), m.walletFocus == focusNFTs, spin),
		}, "\n\n")
		if st.HasAccount() && !m.explorer.HasKey() {
			right += "\n\n" + styles.Muted("Transactions need an Etherscan API key, see Settings.")
		}

		// Calculate panel widths (split 40/60)
		listWidth := max(0, (m.w*4)/10-2)
		detailsWidth := max(0, (m.w*6)/10-2)
		leftPanel := panelStyle.Width(listWidth).Render(walletsContent)
		rightPanel := panelStyle.Width(detailsWidth + 1).Render(right)
		pageContent = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
		nav = wallets.Nav(width, st)

		// rows above the list: header panel, tabs, page border and padding
		top := lipgloss.Height(headerPanel) + lipgloss.Height(tabs) + 2
		for _, area := range areas {
			area.X += 3 // border and left padding
			area.Y += top
			m.clickableAreas = append(m.clickableAreas, area)
		}

	case config.PageTransfer:
		var form string
		if m.transferForm != nil {
			form = m.transferForm.View()
		}
		content := transfer.Render(transfer.State{
			Session:   st,
			Form:      form,
			Sending:   m.transferring,
			Result:    m.transferRes,
			Error:     describeError(m.transferErr, false),
			QuickSend: m.cfg.QuickSendAmount,
			Flash:     m.flash,
			Spinner:   spin,
		})
		pageContent = panelStyle.Width(width).Render(content)
		nav = transfer.Nav(width, m.transferForm != nil)

	case config.PageDeploy:
		var form string
		if m.deployForm != nil {
			form = m.deployForm.View()
		}
		value := m.deployValue
		if value == "" {
			value = m.cfg.DeployValue
		}
		content := deploy.Render(deploy.State{
			Network:     st.Network,
			ABI:         m.deployABI,
			Bytecode:    m.deployBytecode,
			Value:       value,
			Form:        form,
			Deploying:   m.deploying,
			Result:      m.deployRes,
			Error:       describeError(m.deployErr, true),
			Deployments: m.submitter.Deployments(),
			Spinner:     spin,
		})
		if m.flash != "" {
			content += "\n\n" + styles.OkStyle.Render(m.flash)
		}
		pageContent = panelStyle.Width(width).Render(content)
		nav = deploy.Nav(width, m.deployForm != nil)

	case config.PageContracts:
		content := contracts.Render(st, m.contracts.Snapshot(), m.explorer.HasKey(), spin)
		pageContent = panelStyle.Width(width).Render(content)
		nav = contracts.Nav(width)

	case config.PageLedger:
		content := ledgerview.Render(m.cfg.LedgerURL, m.blocks.Snapshot(), m.mining, m.lastMined, spin)
		pageContent = panelStyle.Width(width).Render(content)
		nav = ledgerview.Nav(width)

	case config.PageSettings:
		var content string
		if m.form != nil {
			content = styles.TitleStyle.Render("Settings") + "\n\n" + m.form.View()
		} else {
			content = settings.Render(settings.State{
				Networks:    network.All(),
				Selected:    m.selectedNetworkIdx,
				Current:     st.Network,
				RPCURLs:     m.cfg.RPCURLs,
				Endpoint:    m.endpoint,
				EtherscanOK: m.cfg.EtherscanAPIKey != "",
				OpenSeaOK:   m.cfg.OpenSeaAPIKey != "",
			})
		}
		pageContent = panelStyle.Width(width).Render(content)
		nav = settings.Nav(width, m.settingsMode)
	}

	sections := []string{headerPanel, tabs, pageContent, nav}

	// Render log panel only if enabled
	if m.logEnabled {
		m.logViewport.Height = logview.Height(m.h)
		sections = append(sections, logview.Render(m.w, m.logReady, m.logSpinner.View(), m.logViewport))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
