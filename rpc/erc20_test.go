package rpc

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers eth_call by 4-byte selector.
type fakeCaller struct {
	replies map[string][]byte
	err     error
	calls   int
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.replies[string(msg.Data[:4])], nil
}

func word(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func TestTokenDecimals(t *testing.T) {
	token := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	f := &fakeCaller{replies: map[string][]byte{
		string(erc20.Methods["decimals"].ID): word(6),
	}}

	d, err := TokenDecimals(context.Background(), f, token)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d)
}

func TestTokenBalanceOf(t *testing.T) {
	token := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	owner := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	f := &fakeCaller{replies: map[string][]byte{
		string(erc20.Methods["balanceOf"].ID): word(1234),
	}}

	bal, err := TokenBalanceOf(context.Background(), f, token, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), bal.Int64())
}

func TestTokenCallErrors(t *testing.T) {
	token := common.HexToAddress("0x0000000000000000000000000000000000000001")

	_, err := TokenDecimals(context.Background(), &fakeCaller{err: errors.New("boom")}, token)
	assert.ErrorContains(t, err, "boom")

	_, err = TokenDecimals(context.Background(), &fakeCaller{}, token)
	assert.ErrorContains(t, err, "no contract code")
}

func TestPackTransfer(t *testing.T) {
	to := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	data, err := PackTransfer(to, big.NewInt(1500000))
	require.NoError(t, err)

	// transfer(address,uint256) = 0xa9059cbb
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, data[:4])
	require.Len(t, data, 4+64)
	assert.True(t, bytes.Equal(common.LeftPadBytes(to.Bytes(), 32), data[4:36]))
	assert.Equal(t, int64(1500000), new(big.Int).SetBytes(data[36:]).Int64())
}
