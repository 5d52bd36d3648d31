package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// fakeNode answers eth_chainId and eth_getBalance. With failBalance set the
// balance call gets a JSON-RPC error instead.
func fakeNode(t *testing.T, failBalance bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch {
		case req.Method == "eth_chainId":
			resp["result"] = "0xaa36a7"
		case req.Method == "eth_getBalance" && failBalance:
			resp["error"] = map[string]interface{}{"code": -32000, "message": "header not found"}
		case req.Method == "eth_getBalance":
			resp["result"] = "0x1"
		default:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPoolEvictsAfterTransportFailure(t *testing.T) {
	srv := fakeNode(t, false)
	pool := NewPool()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := pool.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	if _, err := c.BalanceAt(ctx, common.Address{}, nil); err != nil {
		t.Fatalf("Expected a balance, got %v", err)
	}

	srv.Close()
	_, err = c.BalanceAt(ctx, common.Address{}, nil)
	if err = pool.Checked(c, err); err == nil {
		t.Fatal("Expected an error from a stopped node")
	}

	pool.mu.Lock()
	_, pooled := pool.clients[srv.URL]
	pool.mu.Unlock()
	if pooled {
		t.Error("Expected the dead client to be evicted")
	}
	if _, err := pool.Get(ctx, srv.URL); err == nil {
		t.Error("Expected a redial against the stopped node to fail")
	}
}

func TestPoolKeepsClientOnNodeError(t *testing.T) {
	srv := fakeNode(t, true)
	pool := NewPool()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := pool.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	_, err = c.BalanceAt(ctx, common.Address{}, nil)
	if err = pool.Checked(c, err); err == nil {
		t.Fatal("Expected the node's error")
	}

	again, err := pool.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Failed to get pooled client: %v", err)
	}
	if again != c {
		t.Error("Expected the client to stay pooled after a node-side error")
	}
}

func TestEvictLeavesReplacedClient(t *testing.T) {
	pool := NewPool()
	stale := &Client{URL: "http://node"}
	current := &Client{URL: "http://node"}
	pool.clients[current.URL] = current

	pool.Evict(stale)
	pool.Evict(nil)
	if pool.clients[current.URL] != current {
		t.Fatal("Expected the current client to survive evicting a stale one")
	}

	pool.Drop("http://node")
	if len(pool.clients) != 0 {
		t.Errorf("Expected an empty pool, got %d clients", len(pool.clients))
	}
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("balance: %w", context.Canceled), false},
		{ethereum.NotFound, false},
		{errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), true},
		{context.DeadlineExceeded, true},
	}
	for _, tt := range tests {
		if got := IsTransportError(tt.err); got != tt.want {
			t.Errorf("IsTransportError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
