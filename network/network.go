// Package network describes the fixed set of chains the wallet can talk to.
package network

import (
	"fmt"
	"strings"
)

// ID identifies a supported network. The zero value means "not selected".
type ID string

const (
	Mainnet ID = "homestead"
	Goerli  ID = "goerli"
	Sepolia ID = "sepolia"
	Rinkeby ID = "rinkeby"
	Ropsten ID = "ropsten"
	Kovan   ID = "kovan"
	Polygon ID = "polygon"
	Mumbai  ID = "mumbai"
)

// Info holds the endpoints and display data for one network.
type Info struct {
	ID       ID
	Name     string
	ChainID  uint64
	Symbol   string
	RPCURL   string // default public read-only endpoint
	APIURL   string // etherscan-compatible REST API
	Explorer string // web explorer base for links
	NFTChain string // chain slug used by the NFT index, empty if unsupported
	Testnet  bool
}

var infos = []Info{
	{
		ID: Mainnet, Name: "Ethereum Mainnet", ChainID: 1, Symbol: "ETH",
		RPCURL:   "https://ethereum-rpc.publicnode.com",
		APIURL:   "https://api.etherscan.io/api",
		Explorer: "https://etherscan.io",
		NFTChain: "ethereum",
	},
	{
		ID: Goerli, Name: "Goerli Testnet", ChainID: 5, Symbol: "ETH",
		RPCURL:   "https://ethereum-goerli-rpc.publicnode.com",
		APIURL:   "https://api-goerli.etherscan.io/api",
		Explorer: "https://goerli.etherscan.io",
		NFTChain: "goerli",
		Testnet:  true,
	},
	{
		ID: Sepolia, Name: "Sepolia Testnet", ChainID: 11155111, Symbol: "ETH",
		RPCURL:   "https://ethereum-sepolia-rpc.publicnode.com",
		APIURL:   "https://api-sepolia.etherscan.io/api",
		Explorer: "https://sepolia.etherscan.io",
		NFTChain: "sepolia",
		Testnet:  true,
	},
	{
		ID: Rinkeby, Name: "Rinkeby Testnet", ChainID: 4, Symbol: "ETH",
		RPCURL:   "https://rinkeby.infura.io/v3/9aa3d95b3bc440fa88ea12eaa4456161",
		APIURL:   "https://api-rinkeby.etherscan.io/api",
		Explorer: "https://rinkeby.etherscan.io",
		Testnet:  true,
	},
	{
		ID: Ropsten, Name: "Ropsten Testnet", ChainID: 3, Symbol: "ETH",
		RPCURL:   "https://ropsten.infura.io/v3/9aa3d95b3bc440fa88ea12eaa4456161",
		APIURL:   "https://api-ropsten.etherscan.io/api",
		Explorer: "https://ropsten.etherscan.io",
		Testnet:  true,
	},
	{
		ID: Kovan, Name: "Kovan Testnet", ChainID: 42, Symbol: "ETH",
		RPCURL:   "https://kovan.infura.io/v3/9aa3d95b3bc440fa88ea12eaa4456161",
		APIURL:   "https://api-kovan.etherscan.io/api",
		Explorer: "https://kovan.etherscan.io",
		Testnet:  true,
	},
	{
		ID: Polygon, Name: "Polygon Mainnet", ChainID: 137, Symbol: "MATIC",
		RPCURL:   "https://polygon-rpc.com",
		APIURL:   "https://api.polygonscan.com/api",
		Explorer: "https://polygonscan.com",
		NFTChain: "matic",
	},
	{
		ID: Mumbai, Name: "Mumbai Testnet", ChainID: 80001, Symbol: "MATIC",
		RPCURL:   "https://rpc-mumbai.maticvigil.com",
		APIURL:   "https://api-testnet.polygonscan.com/api",
		Explorer: "https://mumbai.polygonscan.com",
		NFTChain: "mumbai",
		Testnet:  true,
	},
}

// All returns every supported network in display order.
func All() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}

// Lookup returns the Info for id.
func Lookup(id ID) (Info, bool) {
	for _, n := range infos {
		if n.ID == id {
			return n, true
		}
	}
	return Info{}, false
}

// Parse resolves a user-supplied network name. "mainnet" and "ethereum" are
// accepted as aliases for homestead.
func Parse(s string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "mainnet", "ethereum":
		key = string(Mainnet)
	case "matic":
		key = string(Polygon)
	}
	if _, ok := Lookup(ID(key)); !ok {
		return "", fmt.Errorf("unsupported network %q", s)
	}
	return ID(key), nil
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Name returns the display name, or the raw id when unknown.
func (id ID) Name() string {
	if n, ok := Lookup(id); ok {
		return n.Name
	}
	if id == "" {
		return "no network"
	}
	return string(id)
}

// TxURL links to a transaction on the network's explorer.
func (n Info) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// AddressURL links to an address on the network's explorer.
func (n Info) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/address/" + addr
}
