package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"charm-dapp-wallet/config"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/session"
	"charm-dapp-wallet/signer"
	"charm-dapp-wallet/txn"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) *model {
	t.Helper()
	m := newModel(config.DefaultConfig(), "")
	require.ErrorIs(t, m.authErr, signer.ErrNoProvider)
	return m
}

type stubAuthority struct {
	accs []common.Address
}

func (s stubAuthority) Name() string { return "stub" }

func (s stubAuthority) Accounts(context.Context) ([]common.Address, error) {
	return s.accs, nil
}

func (s stubAuthority) SignTx(context.Context, common.Address, *types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, errors.New("unsupported")
}

func TestDescribeError(t *testing.T) {
	cases := []struct {
		err    error
		deploy bool
		want   string
	}{
		{&txn.Error{Kind: txn.InvalidInput, Op: "send", Err: txn.ErrInvalidAddress}, false, "Invalid input: invalid address"},
		{signer.ErrNoProvider, false, "No wallet provider found. Configure keystore_dir or signer_endpoint."},
		{&txn.Error{Kind: txn.Rejected, Op: "sign", Err: errors.New("denied")}, false, "Transaction was rejected."},
		{&txn.Error{Kind: txn.Reverted, Op: "wait", Err: txn.ErrReverted}, false, "Transaction reverted."},
		{&txn.Error{Kind: txn.Reverted, Op: "wait", Err: txn.ErrReverted}, true, "Deployment failed due to a CALL_EXCEPTION error. Check your constructor logic or ABI."},
		{&txn.Error{Kind: txn.InsufficientFunds, Op: "send", Err: errors.New("x")}, false, "Insufficient funds in the account."},
		{&txn.Error{Kind: txn.ArgumentCount, Op: "pack", Err: txn.ErrArgumentCount}, true, "Incorrect number of arguments provided to constructor."},
		{&txn.Error{Kind: txn.Network, Op: "dial", Err: errors.New("connection refused")}, false, "Network error: connection refused"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, describeError(tc.err, tc.deploy), fmt.Sprint(tc.err))
	}
	assert.Empty(t, describeError(nil, false))
}

func TestSanitizeKey(t *testing.T) {
	var amount string
	f := huh.NewForm(huh.NewGroup(huh.NewInput().Key("amount").Value(&amount)))
	f.Init()

	out := sanitizeKey(f, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1a.5")})
	require.NotNil(t, out)
	assert.Equal(t, "1.5", string(out.(tea.KeyMsg).Runes))

	assert.Nil(t, sanitizeKey(f, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")}))

	enter := tea.KeyMsg{Type: tea.KeyEnter}
	assert.Equal(t, enter, sanitizeKey(f, enter))
}

func TestMarketTickGeneration(t *testing.T) {
	m := testModel(t)
	require.Equal(t, config.PageMarket, m.activePage)

	m.startMarket()
	gen := m.marketGen

	_, cmd := m.Update(marketTickMsg{gen: gen - 1})
	assert.Nil(t, cmd, "tick of an older schedule is dropped")

	m.switchPage(config.PageSettings)
	assert.Equal(t, gen+1, m.marketGen)

	_, cmd = m.Update(marketTickMsg{gen: m.marketGen})
	assert.Nil(t, cmd, "no refresh while the market page is hidden")
}

func TestConfirmDialogCancel(t *testing.T) {
	m := testModel(t)
	m.activePage = config.PageTransfer
	m.confirm = &confirmDialog{action: "transfer", question: "Send?", yes: true}

	m.handleKey(tea.KeyMsg{Type: tea.KeyRight})
	assert.False(t, m.confirm.yes)

	cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, m.confirm)
	assert.False(t, m.transferring)
}

func TestPageKeys(t *testing.T) {
	m := testModel(t)
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	assert.Equal(t, config.PageSettings, m.activePage)

	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	assert.Equal(t, config.PageDeploy, m.activePage)

	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.Equal(t, txn.LockABI, m.deployABI)

	// a form swallows page keys
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, m.deployForm)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	assert.Equal(t, config.PageDeploy, m.activePage)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.deployForm)
}

func TestSettingsAddOverride(t *testing.T) {
	m := testModel(t)
	m.selectedNetworkIdx = 0
	m.settingsMode = "add"
	tempRPCFormName = "Local"
	tempRPCFormURL = "http://127.0.0.1:8545"

	m.finishSettingsForm()
	idx := m.activeOverride(m.highlightedNetwork().ID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "http://127.0.0.1:8545", m.endpoint(m.highlightedNetwork().ID))
}

func TestFailedBalanceStillLoadsPanels(t *testing.T) {
	m := testModel(t)
	down := func(context.Context, network.ID) (session.BalanceReader, error) {
		return nil, errors.New("rpc down")
	}
	acct := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	m.sess = session.New(stubAuthority{accs: []common.Address{acct}}, down, nil)
	m.sess.Register(m.tokens, m.history, m.nftList, m.contracts)

	ctx := context.Background()
	require.NoError(t, m.sess.Connect(ctx))
	err := m.sess.SelectNetwork(ctx, network.Sepolia)
	require.Error(t, err)
	require.True(t, m.sess.Snapshot().Ready())

	m.Update(sessionMsg{op: "refresh", err: err})
	assert.False(t, m.history.Loading(), "a failed refresh only concerns the balance")

	_, cmd := m.Update(sessionMsg{op: "network", err: err})
	assert.NotNil(t, cmd)
	assert.True(t, m.tokens.Loading())
	assert.True(t, m.history.Loading())
	assert.True(t, m.nftList.Loading())
	assert.True(t, m.contracts.Loading())
}

func TestKeysFormReplacesNFTClient(t *testing.T) {
	m := testModel(t)
	before := m.nfts
	oldKey := before.APIKey

	m.settingsMode = "keys"
	tempEtherscanKey = ""
	tempOpenSeaKey = "os-key"
	tempKeystoreDir = m.cfg.KeystoreDir
	tempSignerEndpoint = m.cfg.SignerEndpoint
	m.finishSettingsForm()

	assert.NotSame(t, before, m.nfts)
	assert.Equal(t, oldKey, before.APIKey)
	assert.Equal(t, "os-key", m.nfts.APIKey)
}
