// Package signer provides the signing authorities the wallet can connect to.
package signer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrNoProvider means no signing authority is configured or reachable.
	ErrNoProvider = errors.New("no wallet provider found")
	// ErrRejected means the authority refused the request.
	ErrRejected = errors.New("request rejected by wallet")
)

// Authority holds the user's keys and approves signatures.
type Authority interface {
	Name() string
	Accounts(ctx context.Context) ([]common.Address, error)
	SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Options selects and configures an authority.
type Options struct {
	KeystoreDir    string
	Passphrase     string
	SignerEndpoint string
}

// Resolve picks the external signer when an endpoint is set, otherwise the
// local keystore. With neither configured it returns ErrNoProvider.
func Resolve(opts Options) (Authority, error) {
	switch {
	case opts.SignerEndpoint != "":
		e, err := NewExternal(opts.SignerEndpoint)
		if err != nil {
			return nil, err
		}
		return e, nil
	case opts.KeystoreDir != "":
		k, err := NewKeystore(opts.KeystoreDir, opts.Passphrase)
		if err != nil {
			return nil, err
		}
		return k, nil
	}
	return nil, ErrNoProvider
}

// IsRejection reports whether err is the authority declining the request.
// Clef answers denials with plain text, so the message is inspected too.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "request denied") ||
		strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied")
}

func rejected(err error) error {
	return fmt.Errorf("%w: %v", ErrRejected, err)
}
