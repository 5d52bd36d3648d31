package rpc

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestConnect(t *testing.T) {
	// Get RPC URL from environment
	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		t.Skip("ETH_RPC_URL not set, skipping connection test")
	}

	t.Run("successful connection", func(t *testing.T) {
		result := Connect(rpcURL)

		if result.Error != nil {
			t.Fatalf("Failed to connect to RPC: %v", result.Error)
		}

		if result.Client == nil {
			t.Fatal("Client is nil despite no error")
		}

		if result.Client.URL != rpcURL {
			t.Errorf("Expected URL %s, got %s", rpcURL, result.Client.URL)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		chainID, err := result.Client.ChainID(ctx)
		if err != nil {
			t.Errorf("Failed to get chain ID: %v", err)
		} else {
			t.Logf("Connected to chain ID: %s", chainID.String())
		}
	})

	t.Run("pooled client is reused", func(t *testing.T) {
		pool := NewPool()
		defer pool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a, err := pool.Get(ctx, rpcURL)
		if err != nil {
			t.Fatalf("Failed to dial: %v", err)
		}
		b, err := pool.Get(ctx, rpcURL)
		if err != nil {
			t.Fatalf("Failed to dial: %v", err)
		}
		if a != b {
			t.Error("Expected the same pooled client")
		}
	})
}

func TestConnectWithoutURL(t *testing.T) {
	result := ConnectWithTimeout("", time.Second)
	if result.Error == nil {
		t.Fatal("Expected an error for an empty URL")
	}
	if result.Client != nil {
		t.Error("Expected nil client on failure")
	}
}

func TestLoadWalletDetails(t *testing.T) {
	testAddr := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	t.Run("nil client", func(t *testing.T) {
		details := LoadWalletDetails(context.Background(), nil, testAddr, nil)

		if !strings.Contains(details.ErrMessage, "No RPC client") {
			t.Errorf("Expected 'No RPC client' error, got: %s", details.ErrMessage)
		}
		if details.NativeWei == nil || details.NativeWei.Sign() != 0 {
			t.Errorf("Expected zero balance, got %v", details.NativeWei)
		}
	})

	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		t.Skip("ETH_RPC_URL not set, skipping wallet details test")
	}

	connResult := Connect(rpcURL)
	if connResult.Error != nil {
		t.Fatalf("Failed to connect: %v", connResult.Error)
	}

	watchTokens := []WatchedToken{
		{Symbol: "WETH", Decimals: 18, Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")},
		{Symbol: "USDC", Decimals: 6, Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")},
	}

	details := LoadWalletDetails(context.Background(), connResult.Client, testAddr, watchTokens)

	// rate limited public nodes are common, only log
	if details.ErrMessage != "" {
		t.Logf("Got error message: %s", details.ErrMessage)
	}
	if details.Address != testAddr.Hex() {
		t.Errorf("Expected address %s, got %s", testAddr.Hex(), details.Address)
	}
	if details.LoadedAt.IsZero() {
		t.Error("LoadedAt timestamp is zero")
	}
	for _, tok := range details.Tokens {
		t.Logf("  %s: %s", tok.Symbol, tok.Balance.String())
	}
}
