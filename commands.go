package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm-dapp-wallet/config"
	"charm-dapp-wallet/explorer"
	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/ledger"
	"charm-dapp-wallet/market"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/nft"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/rpc"
	"charm-dapp-wallet/txn"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
)

const (
	sessionTimeout = 15 * time.Second
	fetchTimeout   = 20 * time.Second
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// runSession runs one session operation off the UI goroutine
func runSession(op string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		return sessionMsg{op: op, err: fn(ctx)}
	}
}

// fetchPanel starts a fetch for p right away and commits the result from the
// command goroutine. A reset in between makes the commit a no-op.
func fetchPanel[T any](name string, p *panel.List[T], fetch func(ctx context.Context) ([]T, error)) tea.Cmd {
	t := p.Begin()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		items, err := fetch(ctx)
		applied := p.Commit(t, items, err)
		return panelMsg{panel: name, applied: applied, count: len(items), err: err}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return nil
		}
		return clipboardCopiedMsg{what: what}
	}
}

// clearFlash waits 2 seconds then clears clipboard feedback
func clearFlash() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearFlashMsg{}
	})
}

// marketTick schedules the next market refetch for generation gen
func marketTick(every time.Duration, gen int) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return marketTickMsg{gen: gen}
	})
}

// -------------------- SESSION --------------------

func (m *model) connectWallet() tea.Cmd {
	m.connecting = true
	m.addLog("info", "Connecting to "+m.authorityName())
	return runSession("connect", m.sess.Connect)
}

func (m *model) selectNetwork(id network.ID) tea.Cmd {
	m.addLog("info", fmt.Sprintf("Switching to `%s`", id.Name()))
	sess := m.sess
	return runSession("network", func(ctx context.Context) error {
		return sess.SelectNetwork(ctx, id)
	})
}

func (m *model) selectAccount(addr common.Address) tea.Cmd {
	sess := m.sess
	return runSession("account", func(ctx context.Context) error {
		return sess.SelectAccount(ctx, addr)
	})
}

func (m *model) refreshBalance() tea.Cmd {
	return runSession("refresh", m.sess.RefreshBalance)
}

// -------------------- PANELS --------------------

// loadAccountPanels refetches everything scoped to the account and network
func (m *model) loadAccountPanels() tea.Cmd {
	if !m.sess.Snapshot().Ready() {
		return nil
	}
	return tea.Batch(m.loadTokens(), m.loadHistory(), m.loadNFTs(), m.loadContracts())
}

func (m *model) loadTokens() tea.Cmd {
	st := m.sess.Snapshot()
	if !st.Ready() {
		return nil
	}
	url := m.endpoint(st.Network)
	watch := watchedTokens(m.cfg, st.Network)
	pool := m.pool
	return fetchPanel("tokens", m.tokens, func(ctx context.Context) ([]rpc.TokenBalance, error) {
		c, err := pool.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		d := rpc.LoadWalletDetails(ctx, c, st.Account, watch)
		if d.ErrMessage != "" {
			pool.Evict(c)
			return nil, errors.New(d.ErrMessage)
		}
		return d.Tokens, nil
	})
}

func (m *model) loadHistory() tea.Cmd {
	st := m.sess.Snapshot()
	if !st.Ready() {
		return nil
	}
	ex := m.explorer
	return fetchPanel("transactions", m.history, func(ctx context.Context) ([]explorer.Transaction, error) {
		return ex.TxList(ctx, st.Network, st.Account)
	})
}

func (m *model) loadContracts() tea.Cmd {
	st := m.sess.Snapshot()
	if !st.Ready() {
		return nil
	}
	ex := m.explorer
	return fetchPanel("contracts", m.contracts, func(ctx context.Context) ([]explorer.Transaction, error) {
		return ex.Deployments(ctx, st.Network, st.Account)
	})
}

func (m *model) loadNFTs() tea.Cmd {
	st := m.sess.Snapshot()
	if !st.Ready() {
		return nil
	}
	c := m.nfts
	return fetchPanel("nfts", m.nftList, func(ctx context.Context) ([]nft.NFT, error) {
		return c.ForAccount(ctx, st.Network, st.Account)
	})
}

func (m *model) loadMarket() tea.Cmd {
	c := m.market
	return fetchPanel("market", m.assets, func(ctx context.Context) ([]market.Asset, error) {
		return c.Top(ctx)
	})
}

func (m *model) loadChain() tea.Cmd {
	c := m.ledger
	return fetchPanel("ledger", m.blocks, func(ctx context.Context) ([]ledger.Block, error) {
		ch, err := c.Chain(ctx)
		return ch.Blocks, err
	})
}

func (m *model) mineBlock() tea.Cmd {
	m.mining = true
	c := m.ledger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		mined, err := c.Mine(ctx)
		return minedMsg{mined: mined, err: err}
	}
}

// startMarket begins a new refresh schedule; any tick of an older
// generation is ignored when it fires
func (m *model) startMarket() tea.Cmd {
	m.marketGen++
	return tea.Batch(m.loadMarket(), marketTick(m.cfg.MarketRefresh(), m.marketGen))
}

func (m *model) stopMarket() {
	m.marketGen++
}

// -------------------- SUBMISSIONS --------------------

func (m *model) account() txn.Account {
	st := m.sess.Snapshot()
	return txn.Account{Authority: m.sess.Authority(), From: st.Account, Network: st.Network}
}

func (m *model) submitTransfer(asset string, req txn.TransferRequest) tea.Cmd {
	m.transferring = true
	m.transferErr = nil
	m.transferRes = nil
	acct := m.account()
	sub := m.submitter
	m.addLog("info", fmt.Sprintf("Sending %s %s to `%s`", req.Amount, asset, helpers.ShortenAddr(req.Recipient)))
	return func() tea.Msg {
		var (
			res txn.Result
			err error
		)
		if asset == assetToken {
			res, err = sub.SendToken(context.Background(), acct, req)
		} else {
			res, err = sub.SendNative(context.Background(), acct, req)
		}
		return transferDoneMsg{asset: asset, res: res, err: err}
	}
}

func (m *model) submitDeploy(req txn.DeployRequest) tea.Cmd {
	m.deploying = true
	m.deployErr = nil
	m.deployRes = nil
	acct := m.account()
	sub := m.submitter
	m.addLog("info", "Deploying contract on "+acct.Network.Name())
	return func() tea.Msg {
		res, err := sub.Deploy(context.Background(), acct, req)
		return deployDoneMsg{res: res, err: err}
	}
}

// -------------------- MODEL HELPER METHODS --------------------
// These methods help with state management and command generation

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string) {
	if !m.logEnabled || !m.logReady || m.logger == nil {
		return
	}

	switch logType {
	case "info":
		m.logger.Info(message)
	case "success":
		m.logger.Info("✓", "msg", message)
	case "error":
		m.logger.Error(message)
	case "warning":
		m.logger.Warn(message)
	case "debug":
		m.logger.Debug(message)
	default:
		m.logger.Print(message)
	}

	m.updateLogViewport()
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}
	m.logViewport.SetContent(m.logBuffer.String())
	m.logViewport.GotoBottom()
}

// textInputActive returns true if any text input is currently active
func (m *model) textInputActive() bool {
	return m.form != nil || m.transferForm != nil || m.deployForm != nil
}

func (m *model) authorityName() string {
	if a := m.sess.Authority(); a != nil {
		return a.Name()
	}
	return "wallet"
}

func watchedTokens(cfg config.Config, id network.ID) []rpc.WatchedToken {
	var out []rpc.WatchedToken
	for _, t := range cfg.TokensFor(id) {
		if !helpers.IsValidEthAddress(t.Address) {
			continue
		}
		out = append(out, rpc.WatchedToken{
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Address:  common.HexToAddress(t.Address),
		})
	}
	return out
}
