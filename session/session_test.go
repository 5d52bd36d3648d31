package session

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charm-dapp-wallet/network"
	"charm-dapp-wallet/panel"
	"charm-dapp-wallet/signer"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

type fakeAuth struct {
	accs []common.Address
	err  error
}

func (f *fakeAuth) Name() string { return "fake" }

func (f *fakeAuth) Accounts(context.Context) ([]common.Address, error) {
	return f.accs, f.err
}

func (f *fakeAuth) SignTx(context.Context, common.Address, *types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, errors.New("not implemented")
}

type call struct {
	network network.ID
	account common.Address
}

type fakeChain struct {
	mu       sync.Mutex
	calls    []call
	balances map[network.ID]*big.Int
	err      error
}

func (f *fakeChain) dial(_ context.Context, id network.ID) (BalanceReader, error) {
	return reader{f, id}, nil
}

func (f *fakeChain) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type reader struct {
	f  *fakeChain
	id network.ID
}

func (r reader) BalanceAt(_ context.Context, acct common.Address, _ *big.Int) (*big.Int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.calls = append(r.f.calls, call{r.id, acct})
	if r.f.err != nil {
		return nil, r.f.err
	}
	if b, ok := r.f.balances[r.id]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func newManager(auth signer.Authority) (*Manager, *fakeChain) {
	chain := &fakeChain{balances: map[network.ID]*big.Int{
		network.Sepolia: big.NewInt(42),
		network.Goerli:  big.NewInt(7),
	}}
	return New(auth, chain.dial, nil), chain
}

func TestSelectThenConnectFetchesOnce(t *testing.T) {
	m, chain := newManager(&fakeAuth{accs: []common.Address{alice}})
	ctx := context.Background()

	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))
	assert.Empty(t, chain.recorded(), "no account yet, no fetch")

	require.NoError(t, m.Connect(ctx))
	assert.Equal(t, []call{{network.Sepolia, alice}}, chain.recorded())

	s := m.Snapshot()
	assert.True(t, s.Connected)
	assert.Equal(t, alice, s.Account)
	assert.Equal(t, "Sepolia Testnet", s.NetworkName)
	assert.Equal(t, int64(42), s.NativeBalance.Int64())
}

func TestConnectWithoutNetworkDoesNotFetch(t *testing.T) {
	m, chain := newManager(&fakeAuth{accs: []common.Address{alice, bob}})
	require.NoError(t, m.Connect(context.Background()))

	assert.Empty(t, chain.recorded())
	s := m.Snapshot()
	assert.Equal(t, []common.Address{alice, bob}, s.Accounts)
	assert.Nil(t, s.NativeBalance)
}

func TestConnectWithoutProvider(t *testing.T) {
	m, _ := newManager(nil)
	err := m.Connect(context.Background())
	assert.ErrorIs(t, err, signer.ErrNoProvider)

	s := m.Snapshot()
	assert.False(t, s.Connected)
	assert.ErrorIs(t, s.Err, signer.ErrNoProvider)
}

func TestConnectRejected(t *testing.T) {
	m, _ := newManager(&fakeAuth{err: signer.ErrRejected})
	err := m.Connect(context.Background())
	assert.ErrorIs(t, err, signer.ErrRejected)
	assert.False(t, m.Snapshot().Connected)
}

func TestDisconnectEmptiesEverything(t *testing.T) {
	m, _ := newManager(&fakeAuth{accs: []common.Address{alice}})
	txs := panel.New[string](2)
	m.Register(txs)

	ctx := context.Background()
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))
	require.NoError(t, m.Connect(ctx))
	txs.Commit(txs.Begin(), []string{"a", "b", "c"}, nil)

	m.Disconnect()
	s := m.Snapshot()
	assert.False(t, s.Connected)
	assert.Equal(t, common.Address{}, s.Account)
	assert.Empty(t, s.Accounts)
	assert.Equal(t, network.ID(""), s.Network)
	assert.Empty(t, s.NetworkName)
	assert.Nil(t, s.NativeBalance)
	assert.Equal(t, 0, txs.Len())
}

func TestNetworkChangeResetsPanels(t *testing.T) {
	m, chain := newManager(&fakeAuth{accs: []common.Address{alice}})
	nfts := panel.New[string](2)
	m.Register(nfts)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))
	nfts.Commit(nfts.Begin(), []string{"punk"}, nil)

	// same network again keeps panels
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))
	assert.Equal(t, 1, nfts.Len())

	require.NoError(t, m.SelectNetwork(ctx, network.Goerli))
	assert.Equal(t, 0, nfts.Len())
	assert.Equal(t, int64(7), m.Snapshot().NativeBalance.Int64())
	assert.Len(t, chain.recorded(), 3)
}

func TestSelectUnknownNetwork(t *testing.T) {
	m, _ := newManager(nil)
	err := m.SelectNetwork(context.Background(), "atlantis")
	assert.ErrorIs(t, err, ErrUnknownNetwork)
	assert.Equal(t, network.ID(""), m.Snapshot().Network)
}

func TestRefreshFailureKeepsBalance(t *testing.T) {
	m, chain := newManager(&fakeAuth{accs: []common.Address{alice}})
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))

	chain.err = errors.New("node down")
	err := m.RefreshBalance(ctx)
	require.Error(t, err)

	s := m.Snapshot()
	assert.Equal(t, int64(42), s.NativeBalance.Int64())
	assert.Error(t, s.Err)
}

func TestRefreshWithoutAccountIsNoop(t *testing.T) {
	m, chain := newManager(&fakeAuth{accs: []common.Address{alice}})
	require.NoError(t, m.SelectNetwork(context.Background(), network.Sepolia))
	require.NoError(t, m.RefreshBalance(context.Background()))
	assert.Empty(t, chain.recorded())
}

func TestClearKeepsConnection(t *testing.T) {
	m, _ := newManager(&fakeAuth{accs: []common.Address{alice}})
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))

	m.Clear()
	s := m.Snapshot()
	assert.True(t, s.Connected)
	assert.Equal(t, alice, s.Account)
	assert.Nil(t, s.NativeBalance)
	assert.Empty(t, s.NetworkName)
}

func TestSelectAccount(t *testing.T) {
	m, chain := newManager(&fakeAuth{accs: []common.Address{alice, bob}})
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx))
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))

	require.NoError(t, m.SelectAccount(ctx, bob))
	assert.Equal(t, bob, m.Snapshot().Account)
	calls := chain.recorded()
	assert.Equal(t, call{network.Sepolia, bob}, calls[len(calls)-1])

	err := m.SelectAccount(ctx, common.HexToAddress("0x1"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type gatedReader struct {
	release chan struct{}
}

func (g gatedReader) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	<-g.release
	return big.NewInt(99), nil
}

func TestStaleBalanceDropped(t *testing.T) {
	g := gatedReader{release: make(chan struct{})}
	m := New(&fakeAuth{accs: []common.Address{alice}},
		func(context.Context, network.ID) (BalanceReader, error) { return g, nil }, nil)
	ctx := context.Background()
	require.NoError(t, m.SelectNetwork(ctx, network.Sepolia))

	done := make(chan error)
	go func() { done <- m.Connect(ctx) }()

	// wait until connect has committed the account and is blocked on the read
	require.Eventually(t, func() bool { return m.Snapshot().Connected }, timeout, tick)
	m.Disconnect()
	close(g.release)

	require.NoError(t, <-done)
	s := m.Snapshot()
	assert.Nil(t, s.NativeBalance)
	assert.False(t, s.Connected)
}
