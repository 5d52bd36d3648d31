package home

import (
	"testing"

	"charm-dapp-wallet/market"
	"charm-dapp-wallet/panel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assets() []market.Asset {
	return []market.Asset{
		{Name: "Bitcoin", Symbol: "btc", CurrentPrice: 64000, PriceChange24h: 1.5, MarketCapRank: 1, Sparkline: []float64{60000, 61000, 62000}},
		{Name: "Tether", Symbol: "usdt", CurrentPrice: 0.9998, PriceChange24h: -0.01, MarketCapRank: 3},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(assets(), 1)
	require.Len(t, rows, 2)
	assert.Equal(t, "BTC", rows[0][2])
	assert.Equal(t, "$64000", rows[0][3])
	assert.Equal(t, "+1.50%", rows[0][4])
	assert.Equal(t, "$61000", rows[0][5])
	assert.Equal(t, "$0.9998", rows[1][3])
	assert.Equal(t, "-", rows[1][5], "no history means no price at hour")
}

func TestRenderStates(t *testing.T) {
	out := Render(80, panel.View[market.Asset]{Loading: true}, 0, "", "*")
	assert.Contains(t, out, "fetching market data")

	out = Render(80, panel.View[market.Asset]{Items: assets(), Loaded: true}, 2, "TABLE", "*")
	assert.Contains(t, out, "Hour 2")
	assert.Contains(t, out, "TABLE")
}
