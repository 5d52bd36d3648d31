package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markets = `[
 {"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":60000,"price_change_percentage_24h":1.5,"market_cap_rank":1,"sparkline_in_7d":{"price":[100,110,90]}},
 {"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3000,"price_change_percentage_24h":-2.25,"market_cap_rank":2,"sparkline_in_7d":{"price":[]}},
 {"id":"odd","symbol":"odd","name":"Odd","current_price":1,"price_change_percentage_24h":null,"market_cap_rank":null,"sparkline_in_7d":{"price":[1]}}
]`

func TestTop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "usd", q.Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", q.Get("order"))
		assert.Equal(t, "8", q.Get("per_page"))
		assert.Equal(t, "true", q.Get("sparkline"))
		assert.Equal(t, "24h", q.Get("price_change_percentage"))
		_, _ = w.Write([]byte(markets))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	assets, err := c.Top(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, "Bitcoin", assets[0].Name)
	assert.Equal(t, 1, assets[0].MarketCapRank)
	assert.Equal(t, []float64{100, 110, 90}, assets[0].Sparkline)
	assert.Equal(t, -2.25, assets[1].PriceChange24h)
	assert.Zero(t, assets[2].MarketCapRank)
}

func TestTopHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Top(context.Background())
	assert.ErrorContains(t, err, "429")
}

func TestPercentSeries(t *testing.T) {
	a := Asset{Sparkline: []float64{100, 110, 90}}
	got := PercentSeries(a)
	require.Len(t, got, 3)
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, 10, got[1], 1e-9)
	assert.InDelta(t, -10, got[2], 1e-9)

	assert.Equal(t, []float64{0, 0}, PercentSeries(Asset{Sparkline: []float64{0, 5}}))
}

func TestHourlyWindow(t *testing.T) {
	week := make([]float64, 168)
	for i := range week {
		week[i] = float64(i)
	}
	a := Asset{Sparkline: week}
	assert.Len(t, Hourly(a), Hours)

	p, ok := PriceAt(a, 23)
	assert.True(t, ok)
	assert.Equal(t, 23.0, p)
	_, ok = PriceAt(a, 24)
	assert.False(t, ok)
}

func TestSort(t *testing.T) {
	assets := []Asset{
		{Name: "b", MarketCapRank: 2, CurrentPrice: 5, PriceChange24h: 3},
		{Name: "A", MarketCapRank: 1, CurrentPrice: 9, PriceChange24h: -1},
		{Name: "c", MarketCapRank: 3, CurrentPrice: 1, PriceChange24h: 0},
	}
	names := func(as []Asset) []string {
		var out []string
		for _, a := range as {
			out = append(out, a.Name)
		}
		return out
	}
	assert.Equal(t, []string{"A", "b", "c"}, names(Sort(assets, ByRank, false)))
	assert.Equal(t, []string{"c", "b", "A"}, names(Sort(assets, ByRank, true)))
	assert.Equal(t, []string{"c", "b", "A"}, names(Sort(assets, ByPrice, false)))
	assert.Equal(t, []string{"b", "c", "A"}, names(Sort(assets, ByChange, true)))
	assert.Equal(t, []string{"A", "b", "c"}, names(Sort(assets, ByName, false)))
	// input untouched
	assert.Equal(t, "b", assets[0].Name)
	assert.Equal(t, ByRank, ByChange.Next())
}

func TestPlot(t *testing.T) {
	assert.Empty(t, Plot(nil, 40, 8, ""))
	out := Plot([]Asset{{Symbol: "btc", Sparkline: []float64{100, 110, 90, 95}}}, 40, 8, "24h")
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "24h")
}
