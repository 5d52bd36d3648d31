package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Client wraps an Ethereum RPC client
type Client struct {
	*ethclient.Client
	URL string
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to an Ethereum RPC endpoint
func Connect(url string) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout
func ConnectWithTimeout(url string, timeout time.Duration) ConnectResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c, err := Dial(ctx, url)
	return ConnectResult{Client: c, Error: err}
}

// Dial connects to url and checks the node answers eth_chainId.
func Dial(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	if _, err := client.ChainID(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return &Client{Client: client, URL: url}, nil
}

// Pool keeps one client per endpoint so switching networks back and forth
// does not redial.
type Pool struct {
	mu      sync.Mutex
	clients map[string]*Client
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{clients: make(map[string]*Client)}
}

// Get returns a cached client for url or dials a new one.
func (p *Pool) Get(ctx context.Context, url string) (*Client, error) {
	p.mu.Lock()
	c, ok := p.clients[url]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	c, err := Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.clients[url]; ok {
		c.Close()
		return existing, nil
	}
	p.clients[url] = c
	return c, nil
}

// Evict removes c from the pool and closes it. A client already replaced by
// a newer dial for the same URL is left alone.
func (p *Pool) Evict(c *Client) {
	if c == nil {
		return
	}
	p.mu.Lock()
	cur, ok := p.clients[c.URL]
	pooled := ok && cur == c
	if pooled {
		delete(p.clients, c.URL)
	}
	p.mu.Unlock()
	if pooled && c.Client != nil {
		c.Close()
	}
}

// Drop evicts whatever client is pooled for url.
func (p *Pool) Drop(url string) {
	p.mu.Lock()
	c := p.clients[url]
	p.mu.Unlock()
	p.Evict(c)
}

// Checked evicts c when err is a transport failure, then returns err
// unchanged. The next Get redials.
func (p *Pool) Checked(c *Client, err error) error {
	if IsTransportError(err) {
		p.Evict(c)
	}
	return err
}

// IsTransportError reports whether err is the connection failing rather than
// the node answering with an error.
func IsTransportError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ethereum.NotFound) {
		return false
	}
	var rpcErr gethrpc.Error
	return !errors.As(err, &rpcErr)
}

// Close closes every pooled client.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, c := range p.clients {
		c.Close()
		delete(p.clients, url)
	}
}

// TokenBalance represents an ERC20 token balance
type TokenBalance struct {
	Symbol   string
	Decimals uint8
	Balance  *big.Int
}

// WatchedToken represents a token to query
type WatchedToken struct {
	Symbol   string
	Decimals uint8
	Address  common.Address
}

// WalletDetails contains all balance information for a wallet
type WalletDetails struct {
	Address    string
	NativeWei  *big.Int
	Tokens     []TokenBalance
	LoadedAt   time.Time
	ErrMessage string
}

// LoadWalletDetails fetches the native and watched token balances for an address
func LoadWalletDetails(ctx context.Context, client *Client, addr common.Address, watch []WatchedToken) WalletDetails {
	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	d := WalletDetails{
		Address:   addr.Hex(),
		NativeWei: big.NewInt(0),
		LoadedAt:  time.Now(),
	}

	if client == nil || client.Client == nil {
		d.ErrMessage = "No RPC client (set ETH_RPC_URL)."
		return d
	}

	wei, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		d.ErrMessage = "Failed to fetch native token balance."
		return d
	}
	d.NativeWei = wei

	// sequential calls; the watchlist is short
	var toks []TokenBalance
	for _, t := range watch {
		bal, err := TokenBalanceOf(ctx, client.Client, t.Address, addr)
		if err != nil {
			continue
		}
		if bal.Sign() > 0 {
			toks = append(toks, TokenBalance{
				Symbol:   t.Symbol,
				Decimals: t.Decimals,
				Balance:  bal,
			})
		}
	}

	sort.Slice(toks, func(i, j int) bool {
		return strings.ToLower(toks[i].Symbol) < strings.ToLower(toks[j].Symbol)
	})
	d.Tokens = toks

	return d
}
