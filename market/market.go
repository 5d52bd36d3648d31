// Package market fetches the top assets by market cap and shapes their
// hourly price history for the terminal chart.
package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"charm-dapp-wallet/helpers"
)

// TopN is how many assets the overview shows.
const TopN = 8

// Asset is one coin with its last week of hourly prices.
type Asset struct {
	ID             string
	Symbol         string
	Name           string
	CurrentPrice   float64
	PriceChange24h float64
	MarketCapRank  int
	Sparkline      []float64
}

type rawAsset struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	SparklineIn7d            struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// Client talks to a CoinGecko-compatible API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// Top returns the TopN assets ordered by market cap.
func (c *Client) Top(ctx context.Context) ([]Asset, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(TopN))
	q.Set("page", "1")
	q.Set("sparkline", "true")
	q.Set("price_change_percentage", "24h")

	var raws []rawAsset
	if err := helpers.GetJSON(ctx, c.HTTP, c.BaseURL+"/coins/markets?"+q.Encode(), nil, &raws); err != nil {
		return nil, fmt.Errorf("fetch market data: %w", err)
	}

	out := make([]Asset, 0, len(raws))
	for _, r := range raws {
		a := Asset{
			ID:           r.ID,
			Symbol:       r.Symbol,
			Name:         r.Name,
			CurrentPrice: r.CurrentPrice,
			Sparkline:    r.SparklineIn7d.Price,
		}
		if r.PriceChangePercentage24h != nil {
			a.PriceChange24h = *r.PriceChangePercentage24h
		}
		if r.MarketCapRank != nil {
			a.MarketCapRank = *r.MarketCapRank
		}
		out = append(out, a)
	}
	return out, nil
}
