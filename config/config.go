package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"charm-dapp-wallet/network"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHARM_WALLET_ETHERSCAN_API_KEY.
const EnvPrefix = "CHARM_WALLET"

// Config represents the application configuration
type Config struct {
	RPCURLs        []RPCUrl     `json:"rpc_urls" mapstructure:"rpc_urls"`
	DefaultNetwork string       `json:"default_network,omitempty" mapstructure:"default_network"`
	WatchTokens    []WatchToken `json:"watch_tokens" mapstructure:"watch_tokens"`
	Logger         bool         `json:"logger" mapstructure:"logger"`

	// signing authority
	KeystoreDir    string `json:"keystore_dir,omitempty" mapstructure:"keystore_dir"`
	Passphrase     string `json:"-" mapstructure:"passphrase"`
	SignerEndpoint string `json:"signer_endpoint,omitempty" mapstructure:"signer_endpoint"`

	// REST services
	EtherscanAPIKey string `json:"etherscan_api_key,omitempty" mapstructure:"etherscan_api_key"`
	OpenSeaAPIKey   string `json:"opensea_api_key,omitempty" mapstructure:"opensea_api_key"`
	MarketAPIURL    string `json:"market_api_url" mapstructure:"market_api_url"`
	NFTAPIURL       string `json:"nft_api_url" mapstructure:"nft_api_url"`
	NFTTestnetURL   string `json:"nft_testnet_api_url" mapstructure:"nft_testnet_api_url"`
	LedgerURL       string `json:"ledger_url" mapstructure:"ledger_url"`

	// transaction defaults
	FallbackGasLimit   uint64 `json:"fallback_gas_limit" mapstructure:"fallback_gas_limit"`
	TransferGasLimit   uint64 `json:"transfer_gas_limit" mapstructure:"transfer_gas_limit"`
	GasPriceGwei       string `json:"gas_price_gwei,omitempty" mapstructure:"gas_price_gwei"`
	DeployValue        string `json:"deploy_value" mapstructure:"deploy_value"`
	UnlockDelaySeconds int    `json:"unlock_delay_seconds" mapstructure:"unlock_delay_seconds"`
	QuickSendAmount    string `json:"quick_send_amount" mapstructure:"quick_send_amount"`

	// panels
	MarketRefreshSeconds int `json:"market_refresh_seconds" mapstructure:"market_refresh_seconds"`
	PreviewSize          int `json:"preview_size" mapstructure:"preview_size"`
}

// RPCUrl represents an RPC endpoint for one network
type RPCUrl struct {
	Name    string `json:"name" mapstructure:"name"`
	Network string `json:"network" mapstructure:"network"`
	URL     string `json:"url" mapstructure:"url"`
	Active  bool   `json:"active" mapstructure:"active"`
}

// WatchToken is an ERC20 token shown in the balances panel
type WatchToken struct {
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals"`
	Address  string `json:"address" mapstructure:"address"`
	Network  string `json:"network" mapstructure:"network"`
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		DefaultNetwork: string(network.Sepolia),
		WatchTokens: []WatchToken{
			{Symbol: "WETH", Decimals: 18, Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Network: string(network.Mainnet)},
			{Symbol: "USDC", Decimals: 6, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Network: string(network.Mainnet)},
			{Symbol: "USDT", Decimals: 6, Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Network: string(network.Mainnet)},
			{Symbol: "DAI", Decimals: 18, Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Network: string(network.Mainnet)},
		},
		MarketAPIURL:         "https://api.coingecko.com/api/v3",
		NFTAPIURL:            "https://api.opensea.io/api/v2",
		NFTTestnetURL:        "https://testnets-api.opensea.io/v2",
		LedgerURL:            "http://localhost:5000",
		FallbackGasLimit:     5_000_000,
		TransferGasLimit:     21_000,
		DeployValue:          "0.01",
		UnlockDelaySeconds:   3600,
		QuickSendAmount:      "0.05",
		MarketRefreshSeconds: 30,
		PreviewSize:          2,
	}
}

// NewViper prepares a viper instance reading path (JSON) with environment
// overrides. A .env file in the working directory is loaded if present.
func NewViper(path string) *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("rpc_urls", d.RPCURLs)
	v.SetDefault("default_network", d.DefaultNetwork)
	v.SetDefault("watch_tokens", d.WatchTokens)
	v.SetDefault("logger", d.Logger)
	v.SetDefault("keystore_dir", "")
	v.SetDefault("passphrase", "")
	v.SetDefault("signer_endpoint", "")
	v.SetDefault("etherscan_api_key", "")
	v.SetDefault("opensea_api_key", "")
	v.SetDefault("market_api_url", d.MarketAPIURL)
	v.SetDefault("nft_api_url", d.NFTAPIURL)
	v.SetDefault("nft_testnet_api_url", d.NFTTestnetURL)
	v.SetDefault("ledger_url", d.LedgerURL)
	v.SetDefault("fallback_gas_limit", d.FallbackGasLimit)
	v.SetDefault("transfer_gas_limit", d.TransferGasLimit)
	v.SetDefault("gas_price_gwei", "")
	v.SetDefault("deploy_value", d.DeployValue)
	v.SetDefault("unlock_delay_seconds", d.UnlockDelaySeconds)
	v.SetDefault("quick_send_amount", d.QuickSendAmount)
	v.SetDefault("market_refresh_seconds", d.MarketRefreshSeconds)
	v.SetDefault("preview_size", d.PreviewSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
	}
	return v
}

// FromViper reads the config file (a missing file is not an error) and
// decodes the merged settings.
func FromViper(v *viper.Viper) (Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return DefaultConfig(), fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyRPCEnv()
	return cfg, nil
}

// Load reads the config from the specified path
func Load(path string) (Config, error) {
	return FromViper(NewViper(path))
}

// applyRPCEnv lets ETH_RPC_URL stand in for the default network's endpoint
// when the config file has none.
func (c *Config) applyRPCEnv() {
	rpcFromEnv := strings.TrimSpace(os.Getenv("ETH_RPC_URL"))
	if rpcFromEnv == "" {
		return
	}
	id := c.DefaultNetwork
	if id == "" {
		id = string(network.Mainnet)
	}
	for _, r := range c.RPCURLs {
		if r.Network == id && r.Active {
			return
		}
	}
	c.RPCURLs = append(c.RPCURLs, RPCUrl{Name: "ETH_RPC_URL", Network: id, URL: rpcFromEnv, Active: true})
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Endpoint returns the read-only RPC URL for id: the active override from
// the config, or the network's public default.
func (c Config) Endpoint(id network.ID) string {
	for _, r := range c.RPCURLs {
		if r.Active && network.ID(r.Network) == id && r.URL != "" {
			return r.URL
		}
	}
	if n, ok := network.Lookup(id); ok {
		return n.RPCURL
	}
	return ""
}

// SetActiveRPC marks idx as the active endpoint of its network.
func (c *Config) SetActiveRPC(idx int) {
	if idx < 0 || idx >= len(c.RPCURLs) {
		return
	}
	net := c.RPCURLs[idx].Network
	for i := range c.RPCURLs {
		if c.RPCURLs[i].Network == net {
			c.RPCURLs[i].Active = i == idx
		}
	}
}

// TokensFor returns the watched tokens configured for id.
func (c Config) TokensFor(id network.ID) []WatchToken {
	var out []WatchToken
	for _, t := range c.WatchTokens {
		if network.ID(t.Network) == id {
			out = append(out, t)
		}
	}
	return out
}

// UnlockDelay is how far in the future deployed Lock contracts unlock.
func (c Config) UnlockDelay() time.Duration {
	return time.Duration(c.UnlockDelaySeconds) * time.Second
}

// MarketRefresh is the market overview polling interval.
func (c Config) MarketRefresh() time.Duration {
	if c.MarketRefreshSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.MarketRefreshSeconds) * time.Second
}
