package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for in, want := range map[string]ID{
		"sepolia":   Sepolia,
		" Sepolia ": Sepolia,
		"mainnet":   Mainnet,
		"homestead": Mainnet,
		"matic":     Polygon,
		"mumbai":    Mumbai,
	} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("arbitrum")
	assert.Error(t, err)
}

func TestAllIsComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 8)

	seen := map[uint64]bool{}
	for _, n := range all {
		assert.NotEmpty(t, n.Name)
		assert.NotEmpty(t, n.RPCURL)
		assert.NotEmpty(t, n.APIURL)
		assert.False(t, seen[n.ChainID], "duplicate chain id %d", n.ChainID)
		seen[n.ChainID] = true
	}

	// callers must not be able to mutate the table
	all[0].Name = "changed"
	n, _ := Lookup(all[0].ID)
	assert.NotEqual(t, "changed", n.Name)
}

func TestExplorerAPI(t *testing.T) {
	n, ok := Lookup(Mainnet)
	require.True(t, ok)
	assert.Equal(t, "https://api.etherscan.io/api", n.APIURL)

	n, _ = Lookup(Sepolia)
	assert.Equal(t, "https://api-sepolia.etherscan.io/api", n.APIURL)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", n.TxURL("0xabc"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "Sepolia Testnet", Sepolia.Name())
	assert.Equal(t, "no network", ID("").Name())
	assert.Equal(t, "xdai", ID("xdai").Name())
}
