package main

import (
	"fmt"
	"strings"
	"time"

	"charm-dapp-wallet/config"
	"charm-dapp-wallet/explorer"
	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/market"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/signer"
	"charm-dapp-wallet/txn"
	"charm-dapp-wallet/views/home"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- TEMP FORM STORAGE --------------------
// Temporary form field storage (package-level to avoid pointer-to-copy issues)
var (
	tempRPCFormName    string
	tempRPCFormURL     string
	tempEtherscanKey   string
	tempOpenSeaKey     string
	tempKeystoreDir    string
	tempSignerEndpoint string
	tempTransferAsset  string
	tempTransferTo     string
	tempTransferAmount string
	tempTransferToken  string
	tempDeployABI      string
	tempDeployBytecode string
	tempDeployValue    string
)

func (m *model) createTransferForm(amount string) {
	tempTransferAsset = assetNative
	tempTransferTo = ""
	tempTransferAmount = amount
	tempTransferToken = ""

	st := m.sess.Snapshot()
	available := "Connect a wallet to see your balance"
	if st.NativeBalance != nil {
		symbol := "ETH"
		if n, ok := network.Lookup(st.Network); ok {
			symbol = n.Symbol
		}
		available = "Available: " + helpers.FormatNative(st.NativeBalance, symbol)
	}

	m.transferForm = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Asset").
				Options(
					huh.NewOption("Native coin", assetNative),
					huh.NewOption("ERC20 token", assetToken),
				).
				Value(&tempTransferAsset),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("token").
				Title("Token Contract").
				Description("Address of the ERC20 contract").
				Value(&tempTransferToken).
				Placeholder("0x...").
				Validate(validAddress),
		).WithHideFunc(func() bool { return tempTransferAsset != assetToken }),
		huh.NewGroup(
			huh.NewInput().
				Key("recipient").
				Title("Recipient").
				Description("Enter a valid Ethereum address (Ctrl+v to paste)").
				Value(&tempTransferTo).
				Placeholder("0x...").
				Validate(validAddress),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Description(available).
				Value(&tempTransferAmount).
				Placeholder("0.0").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("amount is required")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.transferForm.Init()
}

func (m *model) createDeployForm() {
	tempDeployABI = m.deployABI
	tempDeployBytecode = m.deployBytecode
	tempDeployValue = m.deployValue
	if tempDeployValue == "" {
		tempDeployValue = m.cfg.DeployValue
	}

	m.deployForm = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Contract ABI").
				Description("JSON ABI of the contract").
				CharLimit(64_000).
				Lines(6).
				Value(&tempDeployABI),

			huh.NewText().
				Title("Bytecode").
				Description("Creation bytecode, hex").
				CharLimit(64_000).
				Lines(4).
				Value(&tempDeployBytecode),

			huh.NewInput().
				Key("amount").
				Title("Value").
				Description("Ether sent with the deployment").
				Value(&tempDeployValue).
				Placeholder("0.01"),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.deployForm.Init()
}

func (m *model) createAddRPCForm() {
	tempRPCFormName = ""
	tempRPCFormURL = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC Name").
				Description("A friendly name for this RPC endpoint").
				Value(&tempRPCFormName).
				Placeholder("My Infura Node"),

			huh.NewInput().
				Title("RPC URL").
				Description("The complete RPC URL for "+m.highlightedNetwork().Name).
				Value(&tempRPCFormURL).
				Placeholder("https://mainnet.infura.io/v3/...").
				Validate(requiredURL),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.form.Init()
}

func (m *model) createEditRPCForm(idx int) {
	if idx < 0 || idx >= len(m.cfg.RPCURLs) {
		return
	}

	r := m.cfg.RPCURLs[idx]
	tempRPCFormName = r.Name
	tempRPCFormURL = r.URL

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC Name").
				Value(&tempRPCFormName).
				Placeholder("My Node"),

			huh.NewInput().
				Title("RPC URL").
				Value(&tempRPCFormURL).
				Placeholder("https://...").
				Validate(requiredURL),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.form.Init()
}

func (m *model) createKeysForm() {
	tempEtherscanKey = m.cfg.EtherscanAPIKey
	tempOpenSeaKey = m.cfg.OpenSeaAPIKey
	tempKeystoreDir = m.cfg.KeystoreDir
	tempSignerEndpoint = m.cfg.SignerEndpoint

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Keystore Directory").
				Description("Encrypted key files; the passphrase comes from CHARM_WALLET_PASSPHRASE").
				Value(&tempKeystoreDir).
				Placeholder("~/.ethereum/keystore"),

			huh.NewInput().
				Title("Signer Endpoint").
				Description("External signer such as Clef, takes precedence over the keystore").
				Value(&tempSignerEndpoint).
				Placeholder("http://localhost:8550"),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Etherscan API Key").
				Description("Needed for transactions and deployed contracts").
				Value(&tempEtherscanKey).
				EchoMode(huh.EchoModePassword),

			huh.NewInput().
				Title("OpenSea API Key").
				Description("Optional, used for mainnet NFTs").
				Value(&tempOpenSeaKey).
				EchoMode(huh.EchoModePassword),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.form.Init()
}

func validAddress(s string) error {
	if !helpers.IsValidEthAddress(strings.TrimSpace(s)) {
		return fmt.Errorf("invalid ethereum address")
	}
	return nil
}

func requiredURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") &&
		!strings.HasPrefix(s, "ws://") && !strings.HasPrefix(s, "wss://") {
		return fmt.Errorf("URL must start with http(s):// or ws(s)://")
	}
	return nil
}

// sanitizeKey drops typed or pasted characters an address or amount field
// cannot hold. It returns nil when nothing is left.
func sanitizeKey(f *huh.Form, k tea.KeyMsg) tea.Msg {
	field := f.GetFocusedField()
	if k.Type != tea.KeyRunes || field == nil {
		return k
	}
	var keep string
	switch field.GetKey() {
	case "recipient", "token":
		keep = helpers.SanitizeHexInput(string(k.Runes))
	case "amount":
		keep = helpers.SanitizeAmountInput(string(k.Runes))
	default:
		return k
	}
	if keep == "" {
		return nil
	}
	k.Runes = []rune(keep)
	return k
}

// stepForm forwards msg to f. Esc aborts.
func stepForm(f *huh.Form, msg tea.Msg) (*huh.Form, huh.FormState, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if k.String() == "esc" {
			return f, huh.StateAborted, nil
		}
		if msg = sanitizeKey(f, k); msg == nil {
			return f, huh.StateNormal, nil
		}
	}
	form, cmd := f.Update(msg)
	if nf, ok := form.(*huh.Form); ok {
		f = nf
	}
	return f, f.State, cmd
}

// -------------------- UPDATE --------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	_, isKey := msg.(tea.KeyMsg)

	// Handle form updates first (before message switching). Keys stop at the
	// form; everything else also reaches the switch below.
	switch {
	case m.transferForm != nil:
		f, state, cmd := stepForm(m.transferForm, msg)
		m.transferForm = f
		switch state {
		case huh.StateCompleted:
			m.transferForm = nil
			return m, m.finishTransferForm()
		case huh.StateAborted:
			m.transferForm = nil
			return m, nil
		}
		if isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)

	case m.deployForm != nil:
		f, state, cmd := stepForm(m.deployForm, msg)
		m.deployForm = f
		switch state {
		case huh.StateCompleted:
			m.deployForm = nil
			m.deployABI = strings.TrimSpace(tempDeployABI)
			m.deployBytecode = strings.TrimSpace(tempDeployBytecode)
			m.deployValue = strings.TrimSpace(tempDeployValue)
			return m, nil
		case huh.StateAborted:
			m.deployForm = nil
			return m, nil
		}
		if isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)

	case m.form != nil:
		f, state, cmd := stepForm(m.form, msg)
		m.form = f
		switch state {
		case huh.StateCompleted:
			m.form = nil
			cmd := m.finishSettingsForm()
			m.settingsMode = "list"
			return m, cmd
		case huh.StateAborted:
			m.form = nil
			m.settingsMode = "list"
			return m, nil
		}
		if isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return m, nil
		}
		m.logger.SetStyles(&log.Styles{
			Timestamp: lipgloss.NewStyle().Foreground(cMuted),
			Caller:    lipgloss.NewStyle().Faint(true),
			Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
			Message:   lipgloss.NewStyle().Foreground(cText),
			Key:       lipgloss.NewStyle().Foreground(cAccent),
			Value:     lipgloss.NewStyle().Foreground(cText),
			Separator: lipgloss.NewStyle().Faint(true),
			Levels: map[log.Level]lipgloss.Style{
				log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
				log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
				log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
				log.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).SetString("ERROR"),
			},
		})
		m.logReady = true
		m.addLog("info", "Logger enabled")
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		if m.logEnabled {
			m.logViewport.Width = max(0, msg.Width-6)
			if m.logReady {
				m.updateLogViewport()
			}
		}
		m.assetTable.SetColumns(assetColumns(m.w - 8))
		m.refreshAssetTable()
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case sessionMsg:
		if msg.op == "connect" {
			m.connecting = false
		}
		st := m.sess.Snapshot()
		m.syncAccountCursor()
		if msg.err != nil {
			m.addLog("error", fmt.Sprintf("%s: %s", msg.op, describeError(msg.err, false)))
			// a failed balance read leaves the other panels to load on their own
			if msg.op != "refresh" {
				cmds = append(cmds, m.loadAccountPanels())
			}
			return m, tea.Batch(cmds...)
		}
		switch msg.op {
		case "connect":
			m.addLog("success", fmt.Sprintf("Connected `%s` via %s", helpers.ShortenAddr(st.Account.Hex()), st.Authority))
		case "network":
			m.addLog("success", "Network set to "+st.NetworkName)
		case "account":
			m.addLog("success", "Active account "+helpers.ShortenAddr(st.Account.Hex()))
		case "refresh":
			m.addLog("success", "Balance refreshed")
			return m, tea.Batch(append(cmds, m.loadTokens())...)
		}
		return m, tea.Batch(append(cmds, m.loadAccountPanels())...)

	case panelMsg:
		switch {
		case !msg.applied:
			m.addLog("debug", fmt.Sprintf("Dropped stale %s result", msg.panel))
		case msg.err != nil:
			m.addLog("error", fmt.Sprintf("Loading %s failed: %s", msg.panel, msg.err))
		default:
			m.addLog("success", fmt.Sprintf("Loaded %d %s", msg.count, msg.panel))
		}
		if msg.panel == "market" {
			m.refreshAssetTable()
		}
		return m, tea.Batch(cmds...)

	case marketTickMsg:
		if msg.gen != m.marketGen || m.activePage != config.PageMarket {
			return m, tea.Batch(cmds...)
		}
		return m, tea.Batch(append(cmds, m.loadMarket(), marketTick(m.cfg.MarketRefresh(), msg.gen))...)

	case minedMsg:
		m.mining = false
		if msg.err != nil {
			m.lastMined = ""
			m.addLog("error", "Mining failed: "+msg.err.Error())
			return m, tea.Batch(cmds...)
		}
		m.lastMined = fmt.Sprintf("%s (block #%d, proof %d)", msg.mined.Message, msg.mined.Block.Index, msg.mined.Block.Proof)
		m.addLog("success", m.lastMined)
		return m, tea.Batch(append(cmds, m.loadChain())...)

	case transferDoneMsg:
		m.transferring = false
		if msg.err != nil {
			m.dropEndpointOnNetworkError(msg.err)
			m.transferErr = msg.err
			m.addLog("error", "Transfer failed: "+describeError(msg.err, false))
			return m, tea.Batch(cmds...)
		}
		res := msg.res
		m.transferRes = &res
		m.addLog("success", "Transaction confirmed: "+res.Hash.Hex())
		return m, tea.Batch(append(cmds, m.refreshBalance(), m.loadHistory())...)

	case deployDoneMsg:
		m.deploying = false
		if msg.err != nil {
			m.dropEndpointOnNetworkError(msg.err)
			m.deployErr = msg.err
			m.addLog("error", "Deployment failed: "+describeError(msg.err, true))
			return m, tea.Batch(cmds...)
		}
		res := msg.res
		m.deployRes = &res
		m.addLog("success", fmt.Sprintf("Contract deployed at `%s`", res.ContractAddress.Hex()))
		return m, tea.Batch(append(cmds, m.refreshBalance(), m.loadContracts())...)

	case clipboardCopiedMsg:
		m.flash = "✓ Copied " + msg.what + " to clipboard"
		m.addLog("info", "Copied "+msg.what+" to clipboard")
		return m, tea.Batch(append(cmds, clearFlash())...)

	case clearFlashMsg:
		m.flash = ""
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m, tea.Batch(append(cmds, m.handleMouse(msg))...)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// confirmation dialog swallows every key
	if m.confirm != nil {
		switch msg.String() {
		case "left", "right", "tab", "h":
			m.confirm.yes = !m.confirm.yes
		case "y":
			m.confirm.yes = true
			return m.resolveConfirm()
		case "n", "esc":
			m.confirm.yes = false
			return m.resolveConfirm()
		case "enter":
			return m.resolveConfirm()
		}
		return nil
	}

	if m.showQR {
		switch msg.String() {
		case "esc", "v", "enter", "q":
			m.showQR = false
		}
		return nil
	}

	if !m.textInputActive() {
		switch msg.String() {
		case "ctrl+c", "q":
			m.stopMarket()
			m.pool.Close()
			return tea.Quit

		case "l", "L":
			return m.toggleLog()

		case "pgup", "pgdown":
			if m.logEnabled && m.logReady {
				var cmd tea.Cmd
				m.logViewport, cmd = m.logViewport.Update(msg)
				return cmd
			}

		case "1", "2", "3", "4", "5", "6", "7":
			pages := config.Pages()
			idx := int(msg.String()[0] - '1')
			if idx < len(pages) {
				return m.switchPage(pages[idx])
			}
			return nil
		}
	}

	// page-specific behavior
	switch m.activePage {
	case config.PageMarket:
		return m.marketKeys(msg)
	case config.PageWallet:
		return m.walletKeys(msg)
	case config.PageTransfer:
		return m.transferKeys(msg)
	case config.PageDeploy:
		return m.deployKeys(msg)
	case config.PageContracts:
		return m.contractsKeys(msg)
	case config.PageLedger:
		return m.ledgerKeys(msg)
	case config.PageSettings:
		return m.settingsKeys(msg)
	}
	return nil
}

func (m *model) toggleLog() tea.Cmd {
	m.logEnabled = !m.logEnabled
	m.updateConfig(func(c *config.Config) { c.Logger = m.logEnabled })
	if m.logEnabled {
		if m.w > 0 {
			m.logViewport.Width = m.w - 6
		}
		m.logReady = false
		return tea.Batch(initLogViewport(), m.logSpinner.Tick)
	}
	// Clear logs and de-initialize when disabling
	m.logBuffer.Reset()
	m.logReady = false
	return nil
}

// switchPage moves to p. The market schedule only runs while its page is
// shown.
func (m *model) switchPage(p config.Page) tea.Cmd {
	if p == m.activePage {
		return nil
	}
	if m.activePage == config.PageMarket {
		m.stopMarket()
	}
	m.activePage = p
	m.addLog("debug", "Page "+p.Title())

	switch p {
	case config.PageMarket:
		return m.startMarket()
	case config.PageLedger:
		if v := m.blocks.Snapshot(); !v.Loaded && !v.Loading {
			return m.loadChain()
		}
	case config.PageContracts:
		if v := m.contracts.Snapshot(); !v.Loaded && !v.Loading {
			return m.loadContracts()
		}
	}
	return nil
}

func (m *model) resolveConfirm() tea.Cmd {
	d := m.confirm
	m.confirm = nil
	if !d.yes {
		m.addLog("warning", "Cancelled "+d.action)
		return nil
	}
	switch d.action {
	case "transfer":
		return m.submitTransfer(m.transferAsset, m.transferReq)
	case "deploy":
		return m.submitDeploy(txn.DeployRequest{ABI: m.deployABI, Bytecode: m.deployBytecode, Value: m.deployValue})
	case "delete-rpc":
		var name string
		m.updateConfig(func(c *config.Config) {
			if d.rpcIdx < 0 || d.rpcIdx >= len(c.RPCURLs) {
				return
			}
			name = c.RPCURLs[d.rpcIdx].Name
			c.RPCURLs = append(c.RPCURLs[:d.rpcIdx], c.RPCURLs[d.rpcIdx+1:]...)
		})
		m.addLog("warning", fmt.Sprintf("Deleted RPC endpoint `%s`", name))
		return m.endpointChanged(m.highlightedNetwork().ID)
	}
	return nil
}

func (m *model) finishTransferForm() tea.Cmd {
	m.transferAsset = tempTransferAsset
	m.transferReq = txn.TransferRequest{
		Recipient: strings.TrimSpace(tempTransferTo),
		Amount:    strings.TrimSpace(tempTransferAmount),
	}
	what := "native coin"
	if m.transferAsset == assetToken {
		m.transferReq.TokenContract = strings.TrimSpace(tempTransferToken)
		what = "tokens of " + helpers.ShortenAddr(m.transferReq.TokenContract)
	}
	m.confirm = &confirmDialog{
		action:   "transfer",
		question: fmt.Sprintf("Send %s %s to %s?", m.transferReq.Amount, what, helpers.ShortenAddr(m.transferReq.Recipient)),
		yes:      true,
	}
	return nil
}

func (m *model) finishSettingsForm() tea.Cmd {
	n := m.highlightedNetwork()
	switch m.settingsMode {
	case "add":
		name := strings.TrimSpace(tempRPCFormName)
		if name == "" {
			name = n.Name + " RPC"
		}
		m.updateConfig(func(c *config.Config) {
			c.RPCURLs = append(c.RPCURLs, config.RPCUrl{Name: name, Network: string(n.ID), URL: strings.TrimSpace(tempRPCFormURL)})
			c.SetActiveRPC(len(c.RPCURLs) - 1)
		})
		m.addLog("success", fmt.Sprintf("Added RPC endpoint: `%s` (%s)", name, tempRPCFormURL))
		return m.endpointChanged(n.ID)

	case "edit":
		idx := m.activeOverride(n.ID)
		m.updateConfig(func(c *config.Config) {
			if idx >= 0 {
				c.RPCURLs[idx].Name = strings.TrimSpace(tempRPCFormName)
				c.RPCURLs[idx].URL = strings.TrimSpace(tempRPCFormURL)
			}
		})
		m.addLog("success", fmt.Sprintf("Updated RPC endpoint: `%s`", tempRPCFormName))
		return m.endpointChanged(n.ID)

	case "keys":
		m.updateConfig(func(c *config.Config) {
			c.EtherscanAPIKey = strings.TrimSpace(tempEtherscanKey)
			c.OpenSeaAPIKey = strings.TrimSpace(tempOpenSeaKey)
		})
		m.explorer = explorer.New(m.cfg.EtherscanAPIKey)
		m.nfts = newNFTClient(m.cfg)
		m.addLog("success", "API keys saved")

		keystore, endpoint := strings.TrimSpace(tempKeystoreDir), strings.TrimSpace(tempSignerEndpoint)
		if keystore == m.cfg.KeystoreDir && endpoint == m.cfg.SignerEndpoint {
			return m.loadAccountPanels()
		}
		m.updateConfig(func(c *config.Config) {
			c.KeystoreDir = keystore
			c.SignerEndpoint = endpoint
		})
		auth, err := signer.Resolve(signer.Options{
			KeystoreDir:    m.cfg.KeystoreDir,
			Passphrase:     m.cfg.Passphrase,
			SignerEndpoint: m.cfg.SignerEndpoint,
		})
		m.authErr = err
		m.sess.SetAuthority(auth)
		m.selectedAccount = 0
		if err != nil {
			m.addLog("error", "Signer setup failed: "+err.Error())
			return nil
		}
		m.addLog("success", "Signer set to "+auth.Name())
		return m.connectWallet()
	}
	return nil
}

// dropEndpointOnNetworkError forgets the pooled client of the session's
// network after a submission failed in transit
func (m *model) dropEndpointOnNetworkError(err error) {
	if txn.Classify(err) != txn.Network {
		return
	}
	if id := m.sess.Snapshot().Network; id != "" {
		m.pool.Drop(m.endpoint(id))
	}
}

// endpointChanged refreshes chain reads when id is the session's network
func (m *model) endpointChanged(id network.ID) tea.Cmd {
	if m.sess.Snapshot().Network != id {
		return nil
	}
	return tea.Batch(m.refreshBalance(), m.loadTokens())
}

// -------------------- PAGES --------------------

func (m *model) marketKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left":
		if m.hour > 0 {
			m.hour--
		}
		m.refreshAssetTable()
	case "right":
		if m.hour < market.Hours-1 {
			m.hour++
		}
		m.refreshAssetTable()
	case "o":
		m.sortKey = m.sortKey.Next()
		m.refreshAssetTable()
	case "O":
		m.sortDesc = !m.sortDesc
		m.refreshAssetTable()
	case "r", "R":
		return m.loadMarket()
	default:
		var cmd tea.Cmd
		m.assetTable, cmd = m.assetTable.Update(msg)
		return cmd
	}
	return nil
}

func (m *model) walletKeys(msg tea.KeyMsg) tea.Cmd {
	st := m.sess.Snapshot()
	switch msg.String() {
	case "c", "C":
		if m.connecting {
			return nil
		}
		return m.connectWallet()
	case "x", "X":
		m.sess.Disconnect()
		m.selectedAccount = 0
		m.addLog("warning", "Disconnected")
	case "z", "Z":
		m.sess.Clear()
		m.addLog("info", "Cleared network and balances")
	case "r", "R":
		if !st.Ready() {
			return nil
		}
		return m.refreshBalance()
	case "up", "k":
		if m.selectedAccount > 0 {
			m.selectedAccount--
		}
	case "down", "j":
		if m.selectedAccount < len(st.Accounts)-1 {
			m.selectedAccount++
		}
	case "enter", " ":
		if m.selectedAccount < len(st.Accounts) {
			return m.selectAccount(st.Accounts[m.selectedAccount])
		}
	case "y", "Y":
		if st.HasAccount() {
			return copyToClipboard("address", st.Account.Hex())
		}
	case "v", "V":
		m.showQR = st.HasAccount()
	case "tab":
		m.walletFocus = (m.walletFocus + 1) % focusCount
	case "m", "M":
		switch m.walletFocus {
		case focusTokens:
			m.tokens.Toggle()
		case focusHistory:
			m.history.Toggle()
		case focusNFTs:
			m.nftList.Toggle()
		}
	case "t", "T":
		return m.loadHistory()
	case "n", "N":
		return m.loadNFTs()
	}
	return nil
}

func (m *model) transferKeys(msg tea.KeyMsg) tea.Cmd {
	if m.transferring {
		return nil
	}
	switch msg.String() {
	case "enter", "s", "S":
		m.createTransferForm("")
	case "f", "F":
		m.createTransferForm(m.cfg.QuickSendAmount)
	case "y", "Y":
		if m.transferRes != nil {
			return copyToClipboard("transaction hash", m.transferRes.Hash.Hex())
		}
	case "esc":
		m.transferRes = nil
		m.transferErr = nil
	}
	return nil
}

func (m *model) deployKeys(msg tea.KeyMsg) tea.Cmd {
	if m.deploying {
		return nil
	}
	switch msg.String() {
	case "a", "A":
		m.deployABI = txn.LockABI
		m.addLog("info", "Loaded Lock ABI")
	case "b", "B":
		m.deployBytecode = txn.LockBytecode()
		m.addLog("info", "Loaded Lock bytecode")
	case "e", "E":
		m.createDeployForm()
	case "enter":
		value := m.deployValue
		if value == "" {
			value = m.cfg.DeployValue
		}
		m.confirm = &confirmDialog{
			action:   "deploy",
			question: fmt.Sprintf("Deploy this contract on %s sending %s?", m.sess.Snapshot().Network.Name(), value),
			yes:      true,
		}
	case "r", "R":
		m.deployABI = ""
		m.deployBytecode = ""
		m.deployValue = ""
		m.deployRes = nil
		m.deployErr = nil
	case "y", "Y":
		if m.deployRes != nil {
			return copyToClipboard("contract address", m.deployRes.ContractAddress.Hex())
		}
	}
	return nil
}

func (m *model) contractsKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r", "R":
		return m.loadContracts()
	case "m", "M", " ":
		m.contracts.Toggle()
	}
	return nil
}

func (m *model) ledgerKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r", "R":
		return m.loadChain()
	case "m", "M":
		if m.mining {
			return nil
		}
		return m.mineBlock()
	case " ":
		m.blocks.Toggle()
	}
	return nil
}

func (m *model) settingsKeys(msg tea.KeyMsg) tea.Cmd {
	nets := network.All()
	n := m.highlightedNetwork()
	switch msg.String() {
	case "up", "k":
		if m.selectedNetworkIdx > 0 {
			m.selectedNetworkIdx--
		}
	case "down", "j":
		if m.selectedNetworkIdx < len(nets)-1 {
			m.selectedNetworkIdx++
		}
	case "enter":
		m.updateConfig(func(c *config.Config) { c.DefaultNetwork = string(n.ID) })
		return m.selectNetwork(n.ID)
	case " ":
		// cycle the active endpoint: each override in turn, then the public default
		idxs := m.overrides(n.ID)
		if len(idxs) == 0 {
			return nil
		}
		cur := m.activeOverride(n.ID)
		m.updateConfig(func(c *config.Config) {
			next := -1
			for i, idx := range idxs {
				if idx == cur && i+1 < len(idxs) {
					next = idxs[i+1]
				}
			}
			if cur < 0 {
				next = idxs[0]
			}
			if next < 0 {
				for _, idx := range idxs {
					c.RPCURLs[idx].Active = false
				}
				return
			}
			c.SetActiveRPC(next)
		})
		m.addLog("info", fmt.Sprintf("%s now uses %s", n.Name, m.endpoint(n.ID)))
		return m.endpointChanged(n.ID)
	case "a", "A":
		m.settingsMode = "add"
		m.createAddRPCForm()
	case "e", "E":
		if idx := m.activeOverride(n.ID); idx >= 0 {
			m.settingsMode = "edit"
			m.createEditRPCForm(idx)
		}
	case "d", "D", "delete", "backspace":
		if idx := m.activeOverride(n.ID); idx >= 0 {
			r := m.cfg.RPCURLs[idx]
			m.confirm = &confirmDialog{
				action:   "delete-rpc",
				question: "Are you sure you want to delete the RPC endpoint " + r.Name + "?",
				yes:      true,
				rpcIdx:   idx,
			}
		}
	case "K":
		m.settingsMode = "keys"
		m.createKeysForm()
	}
	return nil
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if m.activePage != config.PageWallet || m.confirm != nil || m.showQR {
		return nil
	}
	st := m.sess.Snapshot()
	for _, area := range m.clickableAreas {
		if msg.X < area.X || msg.X >= area.X+area.Width || msg.Y < area.Y || msg.Y >= area.Y+area.Height {
			continue
		}
		if area.Index >= len(st.Accounts) {
			return nil
		}
		now := time.Now()
		double := now.Sub(m.lastClickTime) < 500*time.Millisecond &&
			m.lastClickX == msg.X && m.lastClickY == msg.Y
		m.lastClickTime, m.lastClickX, m.lastClickY = now, msg.X, msg.Y
		m.selectedAccount = area.Index
		if double {
			return m.selectAccount(st.Accounts[area.Index])
		}
		return nil
	}
	return nil
}

// -------------------- HELPERS --------------------

func (m *model) highlightedNetwork() network.Info {
	nets := network.All()
	if m.selectedNetworkIdx < 0 || m.selectedNetworkIdx >= len(nets) {
		return nets[0]
	}
	return nets[m.selectedNetworkIdx]
}

// overrides lists the configured endpoints for id
func (m *model) overrides(id network.ID) []int {
	var out []int
	for i, r := range m.cfg.RPCURLs {
		if network.ID(r.Network) == id {
			out = append(out, i)
		}
	}
	return out
}

func (m *model) activeOverride(id network.ID) int {
	for _, i := range m.overrides(id) {
		if m.cfg.RPCURLs[i].Active {
			return i
		}
	}
	return -1
}

// syncAccountCursor keeps the list cursor on the active account
func (m *model) syncAccountCursor() {
	st := m.sess.Snapshot()
	for i, a := range st.Accounts {
		if a == st.Account {
			m.selectedAccount = i
			return
		}
	}
	m.selectedAccount = 0
}

// refreshAssetTable reorders the market table and reprices the hour column
func (m *model) refreshAssetTable() {
	sorted := market.Sort(m.assets.All(), m.sortKey, m.sortDesc)
	m.assetTable.SetRows(home.Rows(sorted, m.hour))
}
