package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"charm-dapp-wallet/config"
	"charm-dapp-wallet/explorer"
	"charm-dapp-wallet/helpers"
	"charm-dapp-wallet/market"
	"charm-dapp-wallet/network"
	"charm-dapp-wallet/rpc"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const cliTimeout = 30 * time.Second

// app is what every subcommand gets after flags and config are resolved
type app struct {
	cfg        config.Config
	configPath string
	log        *log.Logger
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".charm-dapp-wallet.json"
	}
	return filepath.Join(home, ".charm-dapp-wallet.json")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "charm-dapp-wallet",
		Short:         "Terminal wallet and dapp dashboard for EVM networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., mainnet, sepolia)")
	rootCmd.PersistentFlags().String("log-level", "info", "CLI log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("keystore-dir", "", "Keystore directory used for signing")
	rootCmd.PersistentFlags().String("signer-endpoint", "", "External signer (Clef) endpoint")

	rootCmd.AddCommand(newNetworksCmd(a), newMarketCmd(a), newBalanceCmd(a), newTxsCmd(a))
	return rootCmd
}

// setup loads the config with flags layered on top
func (a *app) setup(cmd *cobra.Command) error {
	a.configPath, _ = cmd.Flags().GetString("config")

	v := config.NewViper(a.configPath)
	bindGlobalFlags(v, cmd)

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cmd.Flags().GetString("log-level")
	a.log = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		a.log.SetLevel(lvl)
	} else {
		a.log.Warn("unknown log level, using info", "level", level)
	}
	a.log.Debug("config loaded", "path", a.configPath, "network", cfg.DefaultNetwork)
	return nil
}

// bindGlobalFlags binds the flags the user set to their config keys
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	keys := map[string]string{
		"network":         "default_network",
		"keystore-dir":    "keystore_dir",
		"signer-endpoint": "signer_endpoint",
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok && f.Changed {
			_ = v.BindPFlag(key, f)
		}
	})
}

func (a *app) runTUI() error {
	m := newModel(a.cfg, a.configPath)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		return err
	}
	return nil
}

// network resolves the --network flag or the configured default
func (a *app) network() (network.Info, error) {
	id, err := network.Parse(a.cfg.DefaultNetwork)
	if err != nil {
		return network.Info{}, err
	}
	info, ok := network.Lookup(id)
	if !ok {
		return network.Info{}, fmt.Errorf("unknown network %q", a.cfg.DefaultNetwork)
	}
	return info, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List supported networks and their RPC endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable()
			t.AppendHeader(table.Row{"ID", "Name", "Chain ID", "Symbol", "Endpoint", ""})
			def, _ := network.Parse(a.cfg.DefaultNetwork)
			for _, n := range network.All() {
				mark := ""
				if n.ID == def {
					mark = text.FgGreen.Sprint("default")
				}
				kind := n.Name
				if n.Testnet {
					kind += text.FgHiBlack.Sprint(" (testnet)")
				}
				t.AppendRow(table.Row{n.ID, kind, n.ChainID, n.Symbol, a.cfg.Endpoint(n.ID), mark})
			}
			t.Render()
			return nil
		},
	}
}

func newMarketCmd(a *app) *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Show the top assets by market cap",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			c := &market.Client{BaseURL: a.cfg.MarketAPIURL}
			assets, err := c.Top(ctx)
			if err != nil {
				return err
			}

			key := market.ByRank
			for k := market.ByRank; k <= market.ByChange; k++ {
				if strings.EqualFold(k.String(), sortBy) {
					key = k
				}
			}
			desc := key == market.ByPrice || key == market.ByChange

			t := newTable()
			t.AppendHeader(table.Row{"#", "Name", "Symbol", "Price (USD)", "24h"})
			for _, as := range market.Sort(assets, key, desc) {
				change := fmt.Sprintf("%+.2f%%", as.PriceChange24h)
				if as.PriceChange24h >= 0 {
					change = text.FgGreen.Sprint(change)
				} else {
					change = text.FgRed.Sprint(change)
				}
				t.AppendRow(table.Row{as.MarketCapRank, as.Name, strings.ToUpper(as.Symbol), fmt.Sprintf("%.4f", as.CurrentPrice), change})
			}
			t.Render()
			a.log.Debug("market loaded", "assets", len(assets))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "rank", "Sort by rank, name, price or 24h change")
	return cmd
}

func newBalanceCmd(a *app) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the native and watched token balances of an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !helpers.IsValidEthAddress(address) {
				return fmt.Errorf("invalid address %q", address)
			}
			info, err := a.network()
			if err != nil {
				return err
			}

			url := a.cfg.Endpoint(info.ID)
			a.log.Info("connecting", "network", info.Name, "rpc", url)
			res := rpc.Connect(url)
			if res.Error != nil {
				return res.Error
			}
			defer res.Client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			d := rpc.LoadWalletDetails(ctx, res.Client, common.HexToAddress(address), watchedTokens(a.cfg, info.ID))
			if d.ErrMessage != "" {
				return fmt.Errorf("%s", d.ErrMessage)
			}

			t := newTable()
			t.SetTitle(d.Address + " on " + info.Name)
			t.AppendHeader(table.Row{"Asset", "Balance", "Exact"})
			t.AppendRow(table.Row{info.Symbol, helpers.FormatNative(d.NativeWei, info.Symbol), helpers.FormatUnits(d.NativeWei, 18)})
			for _, tok := range d.Tokens {
				t.AppendRow(table.Row{tok.Symbol, helpers.FormatToken(tok.Balance, tok.Decimals, tok.Symbol), helpers.FormatUnits(tok.Balance, tok.Decimals)})
			}
			t.AppendFooter(table.Row{"Loaded", helpers.LoadedAt(d.LoadedAt, false), ""})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Account address")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newTxsCmd(a *app) *cobra.Command {
	var address string
	var contractsOnly bool
	cmd := &cobra.Command{
		Use:   "txs",
		Short: "List an address's transactions from the block explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !helpers.IsValidEthAddress(address) {
				return fmt.Errorf("invalid address %q", address)
			}
			info, err := a.network()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			ex := explorer.New(a.cfg.EtherscanAPIKey)
			addr := common.HexToAddress(address)
			var txs []explorer.Transaction
			if contractsOnly {
				txs, err = ex.Deployments(ctx, info.ID, addr)
			} else {
				txs, err = ex.TxList(ctx, info.ID, addr)
			}
			if err != nil {
				return err
			}

			t := newTable()
			t.AppendHeader(table.Row{"Time", "Hash", "From", "To", "Value", "Gas price", "Status"})
			for _, tx := range txs {
				to := tx.To
				if tx.IsCreation() {
					to = "create " + helpers.ShortenAddr(tx.ContractAddress)
				} else {
					to = helpers.ShortenAddr(to)
				}
				status := text.FgGreen.Sprint("ok")
				if !tx.Success {
					status = text.FgRed.Sprint("failed")
				}
				t.AppendRow(table.Row{
					tx.Timestamp.Format("2006-01-02 15:04"),
					helpers.ShortenAddr(tx.Hash),
					helpers.ShortenAddr(tx.From),
					to,
					helpers.FormatNative(tx.ValueWei, info.Symbol),
					helpers.FormatGwei(tx.GasPriceWei),
					status,
				})
			}
			t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(txs)})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Account address")
	cmd.Flags().BoolVar(&contractsOnly, "contracts", false, "Only contract creations")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}
