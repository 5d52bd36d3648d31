// Package txn builds, signs and submits native transfers, ERC20 transfers
// and contract deployments, and waits for one confirmation.
package txn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/signer"
)

// Backend is the node API a submission needs. *ethclient.Client satisfies it.
type Backend interface {
	ethereum.ContractCaller
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.GasPricer1559
	ethereum.TransactionSender
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Dialer returns the backend for a network.
type Dialer func(ctx context.Context, id network.ID) (Backend, error)

// Options tune gas, fees and confirmation waiting.
type Options struct {
	FallbackGasLimit uint64
	TransferGasLimit uint64
	GasPriceGwei     string // fixed legacy gas price; empty uses node suggestions
	DeployValue      string // ether locked by default deployments
	UnlockDelay      time.Duration
	PollInterval     time.Duration
	ConfirmTimeout   time.Duration
	Now              func() time.Time
}

func (o *Options) defaults() {
	if o.FallbackGasLimit == 0 {
		o.FallbackGasLimit = 5_000_000
	}
	if o.TransferGasLimit == 0 {
		o.TransferGasLimit = 21_000
	}
	if o.DeployValue == "" {
		o.DeployValue = "0.01"
	}
	if o.UnlockDelay == 0 {
		o.UnlockDelay = time.Hour
	}
	if o.PollInterval == 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.ConfirmTimeout == 0 {
		o.ConfirmTimeout = 5 * time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Account is the signer and network a submission runs under.
type Account struct {
	Authority signer.Authority
	From      common.Address
	Network   network.ID
}

func (a Account) check(op string) error {
	if a.Authority == nil {
		return fail(op, NoProvider, signer.ErrNoProvider)
	}
	if a.From == (common.Address{}) {
		return fail(op, InvalidInput, ErrNoAccount)
	}
	if _, ok := network.Lookup(a.Network); !ok {
		return fail(op, InvalidInput, ErrNoNetwork)
	}
	return nil
}

// Result describes a confirmed transaction.
type Result struct {
	Hash            common.Hash
	ContractAddress common.Address
	GasLimit        uint64
	Receipt         *types.Receipt
}

// DeploymentResult is one contract deployed during this run.
type DeploymentResult struct {
	ContractAddress common.Address
	TransactionHash common.Hash
	Network         network.ID
	DeployedAt      time.Time
}

// Submitter is safe for concurrent use.
type Submitter struct {
	dial Dialer
	opts Options
	log  *log.Logger

	mu       sync.Mutex
	deployed []DeploymentResult
}

// New returns a submitter that reaches networks through dial.
func New(dial Dialer, opts Options, logger *log.Logger) *Submitter {
	opts.defaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Submitter{dial: dial, opts: opts, log: logger}
}

// Deployments returns the contracts deployed so far, oldest first.
func (s *Submitter) Deployments() []DeploymentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeploymentResult(nil), s.deployed...)
}

func (s *Submitter) record(d DeploymentResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployed = append(s.deployed, d)
}

func parseAddress(field, v string) (common.Address, error) {
	v = strings.TrimSpace(v)
	if !helpers.IsValidEthAddress(v) {
		return common.Address{}, fmt.Errorf("%w: %s %q", ErrInvalidAddress, field, v)
	}
	return common.HexToAddress(v), nil
}

// estimate returns the node's gas estimate, or fallback when it fails.
func (s *Submitter) estimate(ctx context.Context, b Backend, msg ethereum.CallMsg, fallback uint64) (uint64, bool) {
	gas, err := b.EstimateGas(ctx, msg)
	if err != nil {
		s.log.Warn("gas estimation failed, using fallback", "fallback", fallback, "err", err)
		return fallback, false
	}
	return gas, true
}

type call struct {
	to    *common.Address
	value *big.Int
	data  []byte
	gas   uint64
}

// buildTx fills nonce and fees. A configured gas price forces a legacy
// transaction; otherwise EIP-1559 fees are used when the chain has a base fee.
func (s *Submitter) buildTx(ctx context.Context, b Backend, from common.Address, c call) (*types.Transaction, error) {
	nonce, err := b.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	value := c.value
	if value == nil {
		value = new(big.Int)
	}

	if s.opts.GasPriceGwei != "" {
		price, err := helpers.ParseUnits(s.opts.GasPriceGwei, 9)
		if err != nil {
			return nil, fail("gas price", InvalidInput, err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce: nonce, To: c.to, Value: value, Gas: c.gas, GasPrice: price, Data: c.data,
		}), nil
	}

	head, err := b.HeaderByNumber(ctx, nil)
	if err == nil && head.BaseFee != nil {
		tip, err := b.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("tip cap: %w", err)
		}
		feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
		chainID, err := b.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("chain id: %w", err)
		}
		return types.NewTx(&types.DynamicFeeTx{
			ChainID: chainID, Nonce: nonce, To: c.to, Value: value, Gas: c.gas,
			GasTipCap: tip, GasFeeCap: feeCap, Data: c.data,
		}), nil
	}

	price, err := b.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	return types.NewTx(&types.LegacyTx{
		Nonce: nonce, To: c.to, Value: value, Gas: c.gas, GasPrice: price, Data: c.data,
	}), nil
}

// submit signs, sends and waits for c to be mined.
func (s *Submitter) submit(ctx context.Context, op string, b Backend, acct Account, c call) (*types.Transaction, *types.Receipt, error) {
	tx, err := s.buildTx(ctx, b, acct.From, c)
	if err != nil {
		return nil, nil, wrap(op, err)
	}
	chainID, err := b.ChainID(ctx)
	if err != nil {
		return nil, nil, wrap(op, fmt.Errorf("chain id: %w", err))
	}

	signed, err := acct.Authority.SignTx(ctx, acct.From, tx, chainID)
	if err != nil {
		return nil, nil, wrap(op, err)
	}
	if err := b.SendTransaction(ctx, signed); err != nil {
		return nil, nil, wrap(op, fmt.Errorf("send: %w", err))
	}
	s.log.Info("transaction sent", "op", op, "hash", signed.Hash().Hex(), "gas", c.gas)

	receipt, err := s.waitMined(ctx, b, signed.Hash())
	if err != nil {
		return signed, nil, wrap(op, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return signed, receipt, fail(op, Reverted, fmt.Errorf("%w: %s", ErrReverted, signed.Hash().Hex()))
	}
	s.log.Info("transaction confirmed", "op", op, "hash", signed.Hash().Hex(), "block", receipt.BlockNumber)
	return signed, receipt, nil
}

// waitMined polls for the receipt until it exists or the timeout passes.
func (s *Submitter) waitMined(ctx context.Context, b Backend, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := b.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			s.log.Debug("receipt lookup failed", "hash", hash.Hex(), "err", err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
