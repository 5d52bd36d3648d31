// Package session tracks the connected wallet: the authority's accounts, the
// active account, the selected network and its native balance.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"charm-dapp-wallet/network"
	"charm-dapp-wallet/rpc"
	"charm-dapp-wallet/signer"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrUnknownAccount = errors.New("account not offered by wallet")
)

// BalanceReader reads native balances from a read-only node.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Dialer returns the read-only client for a network.
type Dialer func(ctx context.Context, id network.ID) (BalanceReader, error)

// PoolDialer dials through pool using endpoint to pick the URL per network.
func PoolDialer(pool *rpc.Pool, endpoint func(network.ID) string) Dialer {
	return func(ctx context.Context, id network.ID) (BalanceReader, error) {
		c, err := pool.Get(ctx, endpoint(id))
		if err != nil {
			return nil, err
		}
		return pooledReader{c: c, pool: pool}, nil
	}
}

// pooledReader evicts its client from the pool when a read fails in transit.
type pooledReader struct {
	c    *rpc.Client
	pool *rpc.Pool
}

func (r pooledReader) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	bal, err := r.c.BalanceAt(ctx, account, blockNumber)
	return bal, r.pool.Checked(r.c, err)
}

// Resetter is anything holding account or network scoped data.
type Resetter interface {
	Reset()
}

// State is a copy of the session for rendering.
type State struct {
	Connected     bool
	Authority     string
	Account       common.Address
	Accounts      []common.Address
	Network       network.ID
	NetworkName   string
	NativeBalance *big.Int
	Err           error
}

// HasAccount reports whether an account is connected.
func (s State) HasAccount() bool {
	return s.Connected && s.Account != (common.Address{})
}

// Ready reports whether both an account and a network are set.
func (s State) Ready() bool {
	return s.HasAccount() && s.Network != ""
}

// Manager is safe for concurrent use. Every mutation bumps an epoch; balance
// results started under an older epoch are dropped.
type Manager struct {
	mu     sync.Mutex
	auth   signer.Authority
	dial   Dialer
	log    *log.Logger
	panels []Resetter
	epoch  uint64
	st     State
}

// New returns a disconnected manager. auth may be nil, in which case Connect
// fails with signer.ErrNoProvider.
func New(auth signer.Authority, dial Dialer, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{auth: auth, dial: dial, log: logger}
}

// SetAuthority swaps the signing authority and disconnects.
func (m *Manager) SetAuthority(auth signer.Authority) {
	m.mu.Lock()
	m.auth = auth
	m.mu.Unlock()
	m.Disconnect()
}

// Authority returns the current signing authority, possibly nil.
func (m *Manager) Authority() signer.Authority {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth
}

// Register adds panels that are reset whenever the account or network changes.
func (m *Manager) Register(rs ...Resetter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panels = append(m.panels, rs...)
}

// Connect asks the authority for its accounts and selects the first. When a
// network is already selected the balance is fetched once.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	auth := m.auth
	m.mu.Unlock()

	if auth == nil {
		m.fail(signer.ErrNoProvider)
		return signer.ErrNoProvider
	}

	accs, err := auth.Accounts(ctx)
	if err == nil && len(accs) == 0 {
		err = fmt.Errorf("%w: no accounts", signer.ErrNoProvider)
	}
	if err != nil {
		m.fail(err)
		m.log.Warn("connect failed", "authority", auth.Name(), "err", err)
		return err
	}

	m.mu.Lock()
	m.epoch++
	changed := m.st.Account != accs[0]
	m.st.Connected = true
	m.st.Authority = auth.Name()
	m.st.Accounts = append([]common.Address(nil), accs...)
	m.st.Account = accs[0]
	m.st.Err = nil
	if changed {
		m.st.NativeBalance = nil
	}
	id, ep := m.st.Network, m.epoch
	m.mu.Unlock()

	m.log.Info("wallet connected", "account", accs[0].Hex(), "accounts", len(accs))
	if changed {
		m.resetPanels()
	}
	if id == "" {
		return nil
	}
	return m.refresh(ctx, ep)
}

// SelectNetwork switches the active network. Panels are reset when the
// network actually changes; the balance is refreshed only with an account.
func (m *Manager) SelectNetwork(ctx context.Context, id network.ID) error {
	info, ok := network.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNetwork, id)
	}

	m.mu.Lock()
	m.epoch++
	changed := m.st.Network != id
	m.st.Network = id
	m.st.NetworkName = info.Name
	if changed {
		m.st.NativeBalance = nil
		m.st.Err = nil
	}
	connected := m.st.HasAccount()
	ep := m.epoch
	m.mu.Unlock()

	m.log.Debug("network selected", "network", id, "changed", changed)
	if changed {
		m.resetPanels()
	}
	if !connected {
		return nil
	}
	return m.refresh(ctx, ep)
}

// SelectAccount switches to another account offered by the authority.
func (m *Manager) SelectAccount(ctx context.Context, addr common.Address) error {
	m.mu.Lock()
	known := false
	for _, a := range m.st.Accounts {
		if a == addr {
			known = true
			break
		}
	}
	if !m.st.Connected || !known {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownAccount, addr.Hex())
	}
	m.epoch++
	changed := m.st.Account != addr
	m.st.Account = addr
	if changed {
		m.st.NativeBalance = nil
	}
	id, ep := m.st.Network, m.epoch
	m.mu.Unlock()

	if changed {
		m.resetPanels()
	}
	if id == "" {
		return nil
	}
	return m.refresh(ctx, ep)
}

// RefreshBalance re-reads the native balance. It does nothing until both an
// account and a network are set. On failure the previous balance stays and
// the error is recorded and returned.
func (m *Manager) RefreshBalance(ctx context.Context) error {
	m.mu.Lock()
	if !m.st.Ready() {
		m.mu.Unlock()
		return nil
	}
	m.epoch++
	ep := m.epoch
	m.mu.Unlock()
	return m.refresh(ctx, ep)
}

func (m *Manager) refresh(ctx context.Context, ep uint64) error {
	m.mu.Lock()
	id, acct := m.st.Network, m.st.Account
	m.mu.Unlock()

	var bal *big.Int
	reader, err := m.dial(ctx, id)
	if err == nil {
		bal, err = reader.BalanceAt(ctx, acct, nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ep != m.epoch {
		m.log.Debug("dropping stale balance", "network", id, "account", acct.Hex())
		return nil
	}
	if err != nil {
		err = fmt.Errorf("balance on %s: %w", id, err)
		m.st.Err = err
		return err
	}
	m.st.NativeBalance = bal
	m.st.Err = nil
	return nil
}

// Clear forgets the network and balance but stays connected.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.epoch++
	m.st.NativeBalance = nil
	m.st.Network = ""
	m.st.NetworkName = ""
	m.st.Err = nil
	m.mu.Unlock()
	m.resetPanels()
}

// Disconnect empties the whole session and every registered panel.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.epoch++
	m.st = State{}
	m.mu.Unlock()
	m.resetPanels()
	m.log.Info("wallet disconnected")
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.st
	s.Accounts = append([]common.Address(nil), m.st.Accounts...)
	if m.st.NativeBalance != nil {
		s.NativeBalance = new(big.Int).Set(m.st.NativeBalance)
	}
	return s
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Err = err
}

func (m *Manager) resetPanels() {
	m.mu.Lock()
	ps := append([]Resetter(nil), m.panels...)
	m.mu.Unlock()
	for _, p := range ps {
		p.Reset()
	}
}
