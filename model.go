package main

import (
	"context"
	"strings"
	"sync"
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
	"charm-dapp-wallet/session"
	"charm-dapp-wallet/signer"
	"charm-dapp-wallet/styles"
	"charm-dapp-wallet/txn"
	"charm-dapp-wallet/views/wallets"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	assetNative = "native"
	assetToken  = "erc20"
)

// wallet page panels that "m" can expand
const (
	focusTokens = iota
	focusHistory
	focusNFTs
	focusCount
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	activePage config.Page

	cfgMu      sync.RWMutex // guards cfg for commands resolving endpoints
	cfg        config.Config
	configPath string

	// services
	pool      *rpc.Pool
	sess      *session.Manager
	submitter *txn.Submitter
	explorer  *explorer.Client
	nfts      *nft.Client
	market    *market.Client
	ledger    *ledger.Client
	authErr   error // why no signing authority could be set up

	// read-only panels
	tokens    *panel.List[rpc.TokenBalance]
	history   *panel.List[explorer.Transaction]
	nftList   *panel.List[nft.NFT]
	contracts *panel.List[explorer.Transaction]
	assets    *panel.List[market.Asset]
	blocks    *panel.List[ledger.Block]

	spin spinner.Model

	// wallet page
	connecting      bool
	selectedAccount int
	walletFocus     int
	showQR          bool

	// market page
	marketGen  int
	hour       int
	sortKey    market.SortKey
	sortDesc   bool
	assetTable table.Model

	// settings page
	settingsMode       string // "list", "add", "edit", "keys"
	selectedNetworkIdx int
	form               *huh.Form

	// transfer page
	transferForm  *huh.Form
	transferring  bool
	transferAsset string
	transferReq   txn.TransferRequest
	transferRes   *txn.Result
	transferErr   error

	// deploy page
	deployABI      string
	deployBytecode string
	deployValue    string
	deployForm     *huh.Form
	deploying      bool
	deployRes      *txn.DeploymentResult
	deployErr      error

	// ledger page
	mining    bool
	lastMined string

	// confirmation dialog
	confirm *confirmDialog

	// clipboard feedback
	flash string

	// double-click detection on the account list
	clickableAreas []wallets.ClickableArea
	lastClickTime  time.Time
	lastClickX     int
	lastClickY     int

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *logBuffer
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// confirmDialog asks yes/no before a submission or a delete
type confirmDialog struct {
	action   string // "transfer", "deploy", "delete-rpc"
	question string
	yes      bool
	rpcIdx   int
}

// logBuffer is the log sink shared by the UI and background commands
type logBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func (l *logBuffer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Reset()
}

// -------------------- INIT --------------------

// newModel wires the services for cfg. configPath is where settings edits
// are saved.
func newModel(cfg config.Config, configPath string) *model {
	buf := &logBuffer{}
	logger := log.NewWithOptions(buf, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	logger.SetLevel(log.DebugLevel)

	auth, authErr := signer.Resolve(signer.Options{
		KeystoreDir:    cfg.KeystoreDir,
		Passphrase:     cfg.Passphrase,
		SignerEndpoint: cfg.SignerEndpoint,
	})

	pool := rpc.NewPool()
	m := &model{
		activePage:   config.PageMarket,
		cfg:          cfg,
		configPath:   configPath,
		pool:         pool,
		authErr:      authErr,
		settingsMode: "list",
		logEnabled:   cfg.Logger,
		logger:       logger,
		logBuffer:    buf,
	}

	m.sess = session.New(auth, session.PoolDialer(pool, m.endpoint), logger.WithPrefix("session"))
	m.submitter = txn.New(func(ctx context.Context, id network.ID) (txn.Backend, error) {
		c, err := pool.Get(ctx, m.endpoint(id))
		if err != nil {
			return nil, err
		}
		return c, nil
	}, txn.Options{
		FallbackGasLimit: cfg.FallbackGasLimit,
		TransferGasLimit: cfg.TransferGasLimit,
		GasPriceGwei:     cfg.GasPriceGwei,
		DeployValue:      cfg.DeployValue,
		UnlockDelay:      cfg.UnlockDelay(),
	}, logger.WithPrefix("txn"))

	m.explorer = explorer.New(cfg.EtherscanAPIKey)
	m.nfts = newNFTClient(cfg)
	m.market = &market.Client{BaseURL: cfg.MarketAPIURL}
	m.ledger = &ledger.Client{BaseURL: cfg.LedgerURL}

	m.tokens = panel.New[rpc.TokenBalance](cfg.PreviewSize)
	m.history = panel.New[explorer.Transaction](cfg.PreviewSize)
	m.nftList = panel.New[nft.NFT](cfg.PreviewSize)
	m.contracts = panel.New[explorer.Transaction](cfg.PreviewSize)
	m.assets = panel.New[market.Asset](market.TopN)
	m.blocks = panel.New[ledger.Block](cfg.PreviewSize)
	m.sess.Register(m.tokens, m.history, m.nftList, m.contracts)

	def, _ := network.Parse(cfg.DefaultNetwork)
	for i, n := range network.All() {
		if n.ID == def {
			m.selectedNetworkIdx = i
		}
	}

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	m.spin = sp

	// Initialize log viewport
	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)
	m.logViewport = vp

	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	m.logSpinner = logSpin

	m.assetTable = newAssetTable()

	return m
}

// newNFTClient builds the NFT client for cfg. In-flight commands keep the
// client they started with; replace it, never mutate it.
func newNFTClient(cfg config.Config) *nft.Client {
	return &nft.Client{MainnetURL: cfg.NFTAPIURL, TestnetURL: cfg.NFTTestnetURL, APIKey: cfg.OpenSeaAPIKey}
}

// endpoint resolves the read-only RPC URL with the current settings
func (m *model) endpoint(id network.ID) string {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg.Endpoint(id)
}

// updateConfig applies fn to the settings and saves them
func (m *model) updateConfig(fn func(c *config.Config)) {
	m.cfgMu.Lock()
	fn(&m.cfg)
	cfg := m.cfg
	m.cfgMu.Unlock()
	if m.configPath == "" {
		return
	}
	if err := config.Save(m.configPath, cfg); err != nil {
		m.addLog("error", "Failed to save config: "+err.Error())
	}
}

func newAssetTable() table.Model {
	t := table.New(
		table.WithColumns(assetColumns(0)),
		table.WithHeight(market.TopN+1),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.CBorder).
		BorderBottom(true).
		Foreground(styles.CAccent2).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.CBg).
		Background(styles.CAccent).
		Bold(false)
	t.SetStyles(s)
	return t
}

func assetColumns(width int) []table.Column {
	name := helpers.Max(12, width-58)
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: name},
		{Title: "Symbol", Width: 7},
		{Title: "Price", Width: 14},
		{Title: "24h", Width: 9},
		{Title: "At hour", Width: 14},
	}
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.startMarket()}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	if id, err := network.Parse(m.cfg.DefaultNetwork); err == nil {
		cmds = append(cmds, m.selectNetwork(id))
	}
	if m.sess.Authority() != nil {
		cmds = append(cmds, m.connectWallet())
	}
	return tea.Batch(cmds...)
}
