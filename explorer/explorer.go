// Package explorer reads account history from Etherscan-compatible APIs.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
)

var (
	ErrNoAPIKey           = errors.New("etherscan API key required")
	ErrUnsupportedNetwork = errors.New("network has no explorer API")
	ErrAPI                = errors.New("explorer API error")
)

// Transaction is one entry of an account's txlist.
type Transaction struct {
	Hash            string
	From            string
	To              string
	ContractAddress string
	ValueWei        *big.Int
	Timestamp       time.Time
	BlockNumber     uint64
	GasUsed         uint64
	GasPriceWei     *big.Int
	Success         bool
}

// IsCreation reports whether the transaction deployed a contract.
func (t Transaction) IsCreation() bool {
	return t.To == "" && t.ContractAddress != ""
}

// Etherscan returns every number as a string.
type rawTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	BlockNumber     string `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	IsError         string `json:"isError"`
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client is safe for concurrent use; all calls share one rate limiter.
type Client struct {
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	baseURL string // overrides the per-network API when set
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithBaseURL sends every request to u regardless of network.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithRateLimit caps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// New returns a client using apiKey. The free Etherscan tier allows five
// calls per second.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		http:    helpers.DefaultHTTPClient,
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

func (c *Client) endpoint(id network.ID) (string, error) {
	if c.baseURL != "" {
		return c.baseURL, nil
	}
	n, ok := network.Lookup(id)
	if !ok || n.APIURL == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedNetwork, id)
	}
	return n.APIURL, nil
}

// TxList returns every normal transaction of addr, oldest first.
func (c *Client) TxList(ctx context.Context, id network.ID, addr common.Address) ([]Transaction, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	base, err := c.endpoint(id)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", addr.Hex())
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "asc")
	q.Set("apikey", c.apiKey)

	var resp response
	if err := helpers.GetJSON(ctx, c.http, base+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("txlist: %w", err)
	}

	if resp.Status != "1" {
		// an address without history is reported as a failure
		if strings.Contains(strings.ToLower(resp.Message), "no transactions found") {
			return []Transaction{}, nil
		}
		var detail string
		_ = json.Unmarshal(resp.Result, &detail)
		return nil, fmt.Errorf("%w: %s %s", ErrAPI, resp.Message, detail)
	}

	var raws []rawTx
	if err := json.Unmarshal(resp.Result, &raws); err != nil {
		return nil, fmt.Errorf("txlist: decode result: %w", err)
	}
	out := make([]Transaction, 0, len(raws))
	for _, r := range raws {
		tx, err := r.decode()
		if err != nil {
			return nil, fmt.Errorf("txlist: %s: %w", r.Hash, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// Deployments returns the contract creations sent by addr.
func (c *Client) Deployments(ctx context.Context, id network.ID, addr common.Address) ([]Transaction, error) {
	txs, err := c.TxList(ctx, id, addr)
	if err != nil {
		return nil, err
	}
	return lo.Filter(txs, func(t Transaction, _ int) bool {
		return t.IsCreation() && strings.EqualFold(t.From, addr.Hex())
	}), nil
}

func (r rawTx) decode() (Transaction, error) {
	tx := Transaction{
		Hash:            r.Hash,
		From:            r.From,
		To:              r.To,
		ContractAddress: r.ContractAddress,
		Success:         r.IsError != "1",
	}
	var ok bool
	if tx.ValueWei, ok = new(big.Int).SetString(orZero(r.Value), 10); !ok {
		return tx, fmt.Errorf("bad value %q", r.Value)
	}
	if tx.GasPriceWei, ok = new(big.Int).SetString(orZero(r.GasPrice), 10); !ok {
		return tx, fmt.Errorf("bad gasPrice %q", r.GasPrice)
	}
	ts, err := strconv.ParseInt(orZero(r.TimeStamp), 10, 64)
	if err != nil {
		return tx, fmt.Errorf("bad timeStamp: %w", err)
	}
	tx.Timestamp = time.Unix(ts, 0)
	if tx.BlockNumber, err = strconv.ParseUint(orZero(r.BlockNumber), 10, 64); err != nil {
		return tx, fmt.Errorf("bad blockNumber: %w", err)
	}
	if tx.GasUsed, err = strconv.ParseUint(orZero(r.GasUsed), 10, 64); err != nil {
		return tx, fmt.Errorf("bad gasUsed: %w", err)
	}
	return tx, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
