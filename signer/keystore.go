package signer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Keystore signs with keys from a go-ethereum keystore directory.
type Keystore struct {
	dir        string
	ks         *keystore.KeyStore
	passphrase string
}

// NewKeystore opens dir. A missing directory counts as no provider.
func NewKeystore(dir, passphrase string) (*Keystore, error) {
	if dir == "" {
		return nil, ErrNoProvider
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: keystore %s: %v", ErrNoProvider, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: keystore %s is not a directory", ErrNoProvider, dir)
	}
	return &Keystore{
		dir:        dir,
		ks:         keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
	}, nil
}

// Name implements Authority.
func (k *Keystore) Name() string { return "keystore " + k.dir }

// SetPassphrase replaces the unlock passphrase.
func (k *Keystore) SetPassphrase(p string) { k.passphrase = p }

// Accounts implements Authority.
func (k *Keystore) Accounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accs := k.ks.Accounts()
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w: keystore %s holds no accounts", ErrNoProvider, k.dir)
	}
	out := make([]common.Address, len(accs))
	for i, a := range accs {
		out[i] = a.Address
	}
	return out, nil
}

// SignTx implements Authority. A wrong passphrase is reported as a rejection.
func (k *Keystore) SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	signed, err := k.ks.SignTxWithPassphrase(accounts.Account{Address: from}, k.passphrase, tx, chainID)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, rejected(err)
		}
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}
