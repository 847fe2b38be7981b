package weex

import (
	"context"
	"fmt"
	"strings"

	"aegis/internal/account"

	"github.com/tidwall/gjson"
)

const (
	PathAssets      = "/capi/v2/account/assets"
	PathPositions   = "/capi/v2/account/position/allPosition"
	PathSetLeverage = "/capi/v2/account/leverage"
	settleCoin      = "USDT"

	accountTypeFutures = "futures"
)

// Assets returns account equity and available balance in USDT.
func (c *Client) Assets(ctx context.Context) (float64, float64, error) {
	raw, err := c.get(ctx, PathAssets, map[string]string{"accountType": accountTypeFutures}, true)
	if err != nil {
		return 0, 0, err
	}
	data, err := unwrap(raw)
	if err != nil {
		return 0, 0, err
	}
	if data.IsArray() {
		data = pickSettleAsset(data)
	}
	equity, ok := firstFloat(data, "equity", "accountEquity")
	if !ok {
		return 0, 0, fmt.Errorf("assets: equity missing")
	}
	available, _ := firstFloat(data, "availableBalance", "available")
	return equity, available, nil
}

func pickSettleAsset(list gjson.Result) gjson.Result {
	var pick gjson.Result
	list.ForEach(func(_, v gjson.Result) bool {
		if !pick.Exists() {
			pick = v
		}
		if strings.EqualFold(firstString(v, "coinName", "marginCoin", "coin"), settleCoin) {
			pick = v
			return false
		}
		return true
	})
	return pick
}

// Positions lists open positions as the exchange reports them.
func (c *Client) Positions(ctx context.Context) ([]account.ExchangePosition, error) {
	raw, err := c.get(ctx, PathPositions, nil, true)
	if err != nil {
		return nil, err
	}
	data, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if !data.Exists() || data.Type == gjson.Null {
		return nil, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("positions: unexpected payload")
	}
	var out []account.ExchangePosition
	data.ForEach(func(_, v gjson.Result) bool {
		size, _ := firstFloat(v, "size", "hold_amount", "holdAmount")
		if size <= 0 {
			return true
		}
		entry, _ := firstFloat(v, "open_avg_price", "openAvgPrice", "entryPrice", "averageOpenPrice")
		lev, _ := firstFloat(v, "leverage")
		out = append(out, account.ExchangePosition{
			Symbol:     strings.ToLower(firstString(v, "symbol")),
			Side:       strings.ToUpper(firstString(v, "side", "holdSide")),
			Size:       size,
			EntryPrice: entry,
			Leverage:   int(lev),
		})
		return true
	})
	return out, nil
}

// SetLeverage applies the same leverage to both sides of symbol.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	lev := fmt.Sprintf("%d", leverage)
	raw, err := c.post(ctx, PathSetLeverage, map[string]any{
		"symbol":        symbol,
		"leverage":      lev,
		"longLeverage":  lev,
		"shortLeverage": lev,
	})
	if err != nil {
		return err
	}
	_, err = requireSuccess(raw)
	return err
}
