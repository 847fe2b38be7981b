package weex

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"aegis/internal/market"

	"github.com/tidwall/gjson"
)

const (
	PathTicker      = "/capi/v2/market/ticker"
	PathCandles     = "/capi/v2/market/candles"
	PathFundingRate = "/capi/v2/market/currentFundRate"
)

// Ticker returns the last traded price.
func (c *Client) Ticker(ctx context.Context, symbol string) (float64, error) {
	raw, err := c.get(ctx, PathTicker, map[string]string{"symbol": symbol}, false)
	if err != nil {
		return 0, err
	}
	data, err := unwrap(raw)
	if err != nil {
		return 0, err
	}
	if data.IsArray() {
		data = data.Get("0")
	}
	last, ok := firstFloat(data, "last", "ticker.last", "lastPr", "close")
	if !ok || last <= 0 {
		return 0, fmt.Errorf("ticker %s: no last price", symbol)
	}
	return last, nil
}

// Candles returns candles oldest first. Rows are [ts, open, high, low, close, volume, ...].
func (c *Client) Candles(ctx context.Context, symbol, granularity string, limit int) ([]market.Candle, error) {
	params := map[string]string{"symbol": symbol, "granularity": granularity}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	raw, err := c.get(ctx, PathCandles, params, false)
	if err != nil {
		return nil, err
	}
	data, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("candles %s: unexpected payload", symbol)
	}
	out := make([]market.Candle, 0, len(data.Array()))
	data.ForEach(func(_, row gjson.Result) bool {
		if !row.IsArray() || len(row.Array()) < 6 {
			return true
		}
		out = append(out, market.Candle{
			OpenTime: row.Get("0").Int(),
			Open:     row.Get("1").Float(),
			High:     row.Get("2").Float(),
			Low:      row.Get("3").Float(),
			Close:    row.Get("4").Float(),
			Volume:   row.Get("5").Float(),
		})
		return true
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenTime < out[j].OpenTime })
	return out, nil
}

// FundingRate returns the current funding rate, 0 when the venue reports none.
func (c *Client) FundingRate(ctx context.Context, symbol string) (float64, error) {
	raw, err := c.get(ctx, PathFundingRate, map[string]string{"symbol": symbol}, false)
	if err != nil {
		return 0, err
	}
	data, err := unwrap(raw)
	if err != nil {
		return 0, err
	}
	if data.IsArray() {
		data = data.Get("0")
	}
	rate, _ := firstFloat(data, "fundingRate", "funding_rate")
	return rate, nil
}
