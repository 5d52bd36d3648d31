package signer

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithoutProvider(t *testing.T) {
	_, err := Resolve(Options{})
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = Resolve(Options{KeystoreDir: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestKeystoreWithoutAccounts(t *testing.T) {
	k, err := NewKeystore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = k.Accounts(context.Background())
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestKeystoreSign(t *testing.T) {
	dir := t.TempDir()
	seed := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	acct, err := seed.NewAccount("hunter2")
	require.NoError(t, err)

	k, err := NewKeystore(dir, "hunter2")
	require.NoError(t, err)

	accs, err := k.Accounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, []common.Address{acct.Address}, accs)

	chainID := big.NewInt(11155111)
	to := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, To: &to, Value: big.NewInt(1), Gas: 21000, GasPrice: big.NewInt(1)})

	t.Run("correct passphrase", func(t *testing.T) {
		signed, err := k.SignTx(context.Background(), acct.Address, tx, chainID)
		require.NoError(t, err)

		from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
		require.NoError(t, err)
		assert.Equal(t, acct.Address, from)
	})

	t.Run("wrong passphrase is a rejection", func(t *testing.T) {
		k.SetPassphrase("wrong")
		defer k.SetPassphrase("hunter2")

		_, err := k.SignTx(context.Background(), acct.Address, tx, chainID)
		assert.ErrorIs(t, err, ErrRejected)
		assert.True(t, IsRejection(err))
	})
}

func TestIsRejection(t *testing.T) {
	assert.False(t, IsRejection(nil))
	assert.True(t, IsRejection(errors.New("Request denied")))
	assert.True(t, IsRejection(rejected(errors.New("x"))))
	assert.False(t, IsRejection(errors.New("connection refused")))
}
