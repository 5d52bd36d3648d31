package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainAndMine(t *testing.T) {
	blocks := 1
	mux := http.NewServeMux()
	mux.HandleFunc("/get_chain", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chain":[`)
		for i := 1; i <= blocks; i++ {
			if i > 1 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"index":%d,"timestamp":"2024-01-01 00:00:0%d","proof":%d,"previous_hash":"h%d"}`, i, i, i*100, i-1)
		}
		fmt.Fprintf(w, `],"length":%d}`, blocks)
	})
	mux.HandleFunc("/mine_block", func(w http.ResponseWriter, r *http.Request) {
		blocks++
		fmt.Fprintf(w, `{"message":"Block mined successfully!","block":{"index":%d,"timestamp":"t","proof":533,"previous_hash":"abc"}}`, blocks)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/"}
	ctx := context.Background()

	ch, err := c.Chain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.Length)
	assert.Equal(t, "h0", ch.Blocks[0].PreviousHash)

	m, err := c.Mine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Block mined successfully!", m.Message)
	assert.Equal(t, 2, m.Block.Index)
	assert.Equal(t, 533, m.Block.Proof)

	ch, err = c.Chain(ctx)
	require.NoError(t, err)
	assert.Len(t, ch.Blocks, 2)
}

func TestBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Chain(context.Background())
	assert.Error(t, err)
}
