package txn

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"charm-dapp-wallet/helpers"
)

// LockABI is the ABI of the bundled time-lock contract.
//
//go:embed lock.abi.json
var LockABI string

//go:embed lock.bin
var lockBin string

// LockBytecode is the creation bytecode of the bundled time-lock contract.
func LockBytecode() string { return strings.TrimSpace(lockBin) }

// DeployRequest is a contract deployment as entered in the form. A nil Args
// passes the default unlock time; an empty Value locks the default amount.
type DeployRequest struct {
	ABI      string
	Bytecode string
	Args     []interface{}
	Value    string
}

// DefaultArgs are the constructor arguments used when none are given.
func (s *Submitter) DefaultArgs() []interface{} {
	unlock := s.opts.Now().Add(s.opts.UnlockDelay).Unix()
	return []interface{}{big.NewInt(unlock)}
}

// Deploy parses the ABI and bytecode, creates the contract and records it.
func (s *Submitter) Deploy(ctx context.Context, acct Account, req DeployRequest) (DeploymentResult, error) {
	const op = "deploy"

	parsed, err := abi.JSON(strings.NewReader(req.ABI))
	if err != nil {
		return DeploymentResult{}, fail(op, InvalidInput, fmt.Errorf("%w: %v", ErrInvalidABI, err))
	}
	code, err := decodeBytecode(req.Bytecode)
	if err != nil {
		return DeploymentResult{}, fail(op, InvalidInput, err)
	}

	args := req.Args
	if args == nil {
		args = s.DefaultArgs()
	}
	if want := len(parsed.Constructor.Inputs); want != len(args) {
		return DeploymentResult{}, fail(op, ArgumentCount,
			fmt.Errorf("%w: constructor takes %d, got %d", ErrArgumentCount, want, len(args)))
	}
	packed, err := parsed.Pack("", args...)
	if err != nil {
		return DeploymentResult{}, fail(op, InvalidInput, fmt.Errorf("encode constructor: %w", err))
	}
	data := append(code, packed...)

	valueStr := req.Value
	if valueStr == "" {
		valueStr = s.opts.DeployValue
	}
	value, err := helpers.ParseEther(valueStr)
	if err != nil {
		return DeploymentResult{}, fail(op, InvalidInput, err)
	}
	if err := acct.check(op); err != nil {
		return DeploymentResult{}, err
	}

	b, err := s.dial(ctx, acct.Network)
	if err != nil {
		return DeploymentResult{}, fail(op, Network, err)
	}

	gas, ok := s.estimate(ctx, b, ethereum.CallMsg{From: acct.From, Value: value, Data: data}, s.opts.FallbackGasLimit)
	if ok {
		gas = withMargin(gas)
	}

	tx, receipt, err := s.submit(ctx, op, b, acct, call{value: value, data: data, gas: gas})
	if err != nil {
		return DeploymentResult{}, err
	}

	addr := receipt.ContractAddress
	if addr == (common.Address{}) {
		addr = crypto.CreateAddress(acct.From, tx.Nonce())
	}
	d := DeploymentResult{
		ContractAddress: addr,
		TransactionHash: tx.Hash(),
		Network:         acct.Network,
		DeployedAt:      s.opts.Now(),
	}
	s.record(d)
	s.log.Info("contract deployed", "address", addr.Hex(), "network", acct.Network)
	return d, nil
}

// withMargin adds 20% to a gas estimate, rounding up.
func withMargin(gas uint64) uint64 {
	return (gas*12 + 9) / 10
}

func decodeBytecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBytecode)
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBytecode, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBytecode)
	}
	return code, nil
}
