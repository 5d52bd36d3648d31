// Package nft lists the NFTs an account holds using an OpenSea-compatible API.
package nft

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/network"
)

var (
	ErrRateLimited        = errors.New("rate limit exceeded, wait and try again later")
	ErrUnsupportedNetwork = errors.New("network not indexed")
)

// NFT is one token held by the account.
type NFT struct {
	Identifier  string `json:"identifier"`
	Collection  string `json:"collection"`
	Contract    string `json:"contract"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Title is the name, or collection and id for unnamed tokens.
func (n NFT) Title() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("%s #%s", n.Collection, n.Identifier)
}

// Client queries the mainnet API for production chains and the testnets API
// otherwise.
type Client struct {
	MainnetURL string
	TestnetURL string
	APIKey     string
	HTTP       *http.Client
}

// ForAccount returns the NFTs owned by addr on id.
func (c *Client) ForAccount(ctx context.Context, id network.ID, addr common.Address) ([]NFT, error) {
	n, ok := network.Lookup(id)
	if !ok || n.NFTChain == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedNetwork, id)
	}
	base := c.MainnetURL
	var header http.Header
	if n.Testnet {
		base = c.TestnetURL
	} else if c.APIKey != "" {
		header = http.Header{"X-API-KEY": {c.APIKey}}
	}
	url := fmt.Sprintf("%s/chain/%s/account/%s/nfts", base, n.NFTChain, addr.Hex())

	var resp struct {
		NFTs []NFT `json:"nfts"`
	}
	if err := helpers.GetJSON(ctx, c.HTTP, url, header, &resp); err != nil {
		var he *helpers.HTTPError
		if errors.As(err, &he) && he.Status == http.StatusTooManyRequests {
			return nil, ErrRateLimited
		}
		return nil, fmt.Errorf("fetch NFTs: %w", err)
	}
	if resp.NFTs == nil {
		return []NFT{}, nil
	}
	return resp.NFTs, nil
}
