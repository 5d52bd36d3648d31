package txn

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/rpc"
)

// TransferRequest is one send as entered in a form. TokenContract is only
// read by SendToken.
type TransferRequest struct {
	Recipient     string
	Amount        string
	TokenContract string
}

// SendNative transfers ether to req.Recipient.
func (s *Submitter) SendNative(ctx context.Context, acct Account, req TransferRequest) (Result, error) {
	const op = "send native"

	to, err := parseAddress("recipient", req.Recipient)
	if err != nil {
		return Result{}, fail(op, InvalidInput, err)
	}
	value, err := helpers.ParseEther(req.Amount)
	if err != nil {
		return Result{}, fail(op, InvalidInput, err)
	}
	if err := acct.check(op); err != nil {
		return Result{}, err
	}

	b, err := s.dial(ctx, acct.Network)
	if err != nil {
		return Result{}, fail(op, Network, err)
	}

	gas, _ := s.estimate(ctx, b, ethereum.CallMsg{From: acct.From, To: &to, Value: value}, s.opts.TransferGasLimit)
	tx, receipt, err := s.submit(ctx, op, b, acct, call{to: &to, value: value, gas: gas})
	if err != nil {
		return Result{}, err
	}
	return Result{Hash: tx.Hash(), GasLimit: gas, Receipt: receipt}, nil
}

// SendToken transfers an ERC20 token; the amount is scaled by the token's
// own decimals().
func (s *Submitter) SendToken(ctx context.Context, acct Account, req TransferRequest) (Result, error) {
	const op = "send token"

	to, err := parseAddress("recipient", req.Recipient)
	if err != nil {
		return Result{}, fail(op, InvalidInput, err)
	}
	token, err := parseAddress("token contract", req.TokenContract)
	if err != nil {
		return Result{}, fail(op, InvalidInput, err)
	}
	if err := acct.check(op); err != nil {
		return Result{}, err
	}

	b, err := s.dial(ctx, acct.Network)
	if err != nil {
		return Result{}, fail(op, Network, err)
	}

	decimals, err := rpc.TokenDecimals(ctx, b, token)
	if err != nil {
		return Result{}, wrap(op, err)
	}
	amount, err := helpers.ParseUnits(req.Amount, decimals)
	if err != nil {
		return Result{}, fail(op, InvalidInput, err)
	}
	data, err := rpc.PackTransfer(to, amount)
	if err != nil {
		return Result{}, fail(op, InvalidInput, fmt.Errorf("encode transfer: %w", err))
	}

	gas, _ := s.estimate(ctx, b, ethereum.CallMsg{From: acct.From, To: &token, Data: data}, s.opts.FallbackGasLimit)
	tx, receipt, err := s.submit(ctx, op, b, acct, call{to: &token, value: new(big.Int), data: data, gas: gas})
	if err != nil {
		return Result{}, err
	}
	return Result{Hash: tx.Hash(), GasLimit: gas, Receipt: receipt}, nil
}
