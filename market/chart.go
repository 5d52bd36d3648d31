package market

import (
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Hours is the window charted from each sparkline.
const Hours = 24

// Palette colors the chart series in asset order.
var Palette = []asciigraph.AnsiColor{
	asciigraph.Orange, asciigraph.Blue, asciigraph.Green, asciigraph.Red,
	asciigraph.Magenta, asciigraph.Cyan, asciigraph.Yellow, asciigraph.Gray,
}

// SortKey selects the companion table order.
type SortKey int

const (
	ByRank SortKey = iota
	ByName
	ByPrice
	ByChange
)

func (k SortKey) String() string {
	switch k {
	case ByName:
		return "name"
	case ByPrice:
		return "price"
	case ByChange:
		return "24h change"
	default:
		return "rank"
	}
}

// Next cycles through the sort keys.
func (k SortKey) Next() SortKey { return (k + 1) % 4 }

// Sort returns a sorted copy of assets.
func Sort(assets []Asset, key SortKey, desc bool) []Asset {
	out := append([]Asset(nil), assets...)
	less := func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case ByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case ByPrice:
			return a.CurrentPrice < b.CurrentPrice
		case ByChange:
			return a.PriceChange24h < b.PriceChange24h
		default:
			return a.MarketCapRank < b.MarketCapRank
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
	return out
}

// Hourly returns the first Hours sparkline samples.
func Hourly(a Asset) []float64 {
	if len(a.Sparkline) > Hours {
		return a.Sparkline[:Hours]
	}
	return a.Sparkline
}

// PercentSeries expresses the hourly prices as percent change from hour 0,
// so assets of very different prices share one axis.
func PercentSeries(a Asset) []float64 {
	h := Hourly(a)
	out := make([]float64, len(h))
	if len(h) == 0 || h[0] == 0 {
		return out
	}
	for i, p := range h {
		out[i] = (p/h[0] - 1) * 100
	}
	return out
}

// PriceAt is the asset's price at the given hour of the window.
func PriceAt(a Asset, hour int) (float64, bool) {
	h := Hourly(a)
	if hour < 0 || hour >= len(h) {
		return 0, false
	}
	return h[hour], true
}

// Plot draws every asset with history as one multi-series line chart.
func Plot(assets []Asset, width, height int, caption string) string {
	var series [][]float64
	var colors []asciigraph.AnsiColor
	var legends []string
	for i, a := range assets {
		s := PercentSeries(a)
		if len(s) < 2 {
			continue
		}
		series = append(series, s)
		colors = append(colors, Palette[i%len(Palette)])
		legends = append(legends, strings.ToUpper(a.Symbol))
	}
	if len(series) == 0 {
		return ""
	}
	if height < 4 {
		height = 4
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	return asciigraph.PlotMany(series, opts...)
}

// Swatch colors s like the i-th chart series.
func Swatch(i int, s string) string {
	return Palette[i%len(Palette)].String() + s + asciigraph.Default.String()
}
