// Package ledger talks to the demo proof-of-work ledger backend.
package ledger

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"charm-dapp-wallet/helpers"
)

// Block is one block of the demo chain.
type Block struct {
	Index        int    `json:"index"`
	Timestamp    string `json:"timestamp"`
	Proof        int    `json:"proof"`
	PreviousHash string `json:"previous_hash"`
}

// Chain is the /get_chain answer.
type Chain struct {
	Blocks []Block `json:"chain"`
	Length int     `json:"length"`
}

// Mined is the /mine_block answer.
type Mined struct {
	Message string `json:"message"`
	Block   Block  `json:"block"`
}

// Client reaches the backend at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

// Chain returns the whole chain.
func (c *Client) Chain(ctx context.Context) (Chain, error) {
	var ch Chain
	if err := helpers.GetJSON(ctx, c.HTTP, c.url("/get_chain"), nil, &ch); err != nil {
		return Chain{}, fmt.Errorf("get chain: %w", err)
	}
	return ch, nil
}

// Mine asks the backend to mine one block.
func (c *Client) Mine(ctx context.Context) (Mined, error) {
	var m Mined
	if err := helpers.GetJSON(ctx, c.HTTP, c.url("/mine_block"), nil, &m); err != nil {
		return Mined{}, fmt.Errorf("mine block: %w", err)
	}
	return m, nil
}
