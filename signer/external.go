package signer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// External delegates to a Clef instance; the user approves every request
// in Clef itself.
type External struct {
	endpoint string
	s        *external.ExternalSigner
}

// NewExternal connects to the Clef endpoint.
func NewExternal(endpoint string) (*External, error) {
	s, err := external.NewExternalSigner(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: signer %s: %v", ErrNoProvider, endpoint, err)
	}
	return &External{endpoint: endpoint, s: s}, nil
}

// Name implements Authority.
func (e *External) Name() string { return "clef " + e.endpoint }

// Accounts implements Authority. Clef returns an empty list when the user
// declines to share accounts.
func (e *External) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accs := e.s.Accounts()
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w: no accounts shared", ErrRejected)
	}
	out := make([]common.Address, len(accs))
	for i, a := range accs {
		out[i] = a.Address
	}
	return out, nil
}

// SignTx implements Authority.
func (e *External) SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	signed, err := e.s.SignTx(accounts.Account{Address: from}, tx, chainID)
	if err != nil {
		if IsRejection(err) {
			return nil, rejected(err)
		}
		return nil, fmt.Errorf("signer: %w", err)
	}
	return signed, nil
}
