package decision

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
	rsiTrendShort = 55.0
	rsiTrendLong  = 45.0
	// notional target as a share of the per-trade risk cap
	ruleSizeFraction = 0.9
	ruleSizeDecimals = 4
)

// RuleDecider is the deterministic RSI/EMA source used when no model is configured.
type RuleDecider struct {
	minConfidence float64
}

func NewRuleDecider(minConfidence float64) *RuleDecider {
	return &RuleDecider{minConfidence: minConfidence}
}

func (r *RuleDecider) Decide(_ context.Context, in Context) Decision {
	m := in.Market
	if in.HasPosition() {
		return r.manage(in)
	}
	side, conf, why := signal(m.Price, m.RSI, m.EMA, in.Constraints.AllowLong)
	if side == ActionHold {
		return Hold(ModelRule, in, why)
	}
	if conf < r.minConfidence {
		return Hold(ModelRule, in, fmt.Sprintf("%s but confidence %.2f below %.2f", why, conf, r.minConfidence))
	}
	size := entrySize(in)
	if size <= 0 {
		return Hold(ModelRule, in, "no size fits the per-trade risk cap")
	}
	d := Decision{
		Action:     side,
		Confidence: conf,
		Leverage:   entryLeverage(conf, in.Constraints.MaxLeverage),
		Size:       size,
		Reason:     why,
	}
	return r.attach(in, d)
}

func (r *RuleDecider) manage(in Context) Decision {
	m := in.Market
	p := in.Position
	exit := false
	var why string
	switch {
	case p.Side == ActionSell.Side() && m.RSI <= rsiOversold:
		exit, why = true, fmt.Sprintf("RSI %.2f oversold, covering short", m.RSI)
	case p.Side == ActionBuy.Side() && m.RSI >= rsiOverbought:
		exit, why = true, fmt.Sprintf("RSI %.2f overbought, closing long", m.RSI)
	}
	if !exit {
		return Hold(ModelRule, in, fmt.Sprintf("holding %s, RSI %.2f, PnL %.4f USDT", p.Side, m.RSI, p.PnLUSDT))
	}
	d := Decision{
		Action:     ActionClose,
		Confidence: 1,
		Leverage:   max(p.Leverage, 1),
		Size:       p.Size,
		Reason:     why,
	}
	return r.attach(in, d)
}

func (r *RuleDecider) attach(in Context, d Decision) Decision {
	d.Audit = AuditPayload{
		Stage:       StageDecision,
		Model:       ModelRule,
		Input:       in.Market,
		Output:      d.Fields(),
		Explanation: d.Reason,
	}
	return d
}

func signal(price, rsi, ema float64, allowLong bool) (Action, float64, string) {
	if price <= 0 || ema <= 0 {
		return ActionHold, 0, "indicators unavailable"
	}
	switch {
	case rsi >= rsiOverbought:
		return ActionSell, confidence(rsi), fmt.Sprintf("RSI %.2f overbought, fading the move", rsi)
	case rsi >= rsiTrendShort && price < ema:
		return ActionSell, confidence(rsi) - 0.1, fmt.Sprintf("price %.4f under EMA %.4f with RSI %.2f", price, ema, rsi)
	case allowLong && rsi <= rsiOversold:
		return ActionBuy, confidence(rsi), fmt.Sprintf("RSI %.2f oversold, buying the dip", rsi)
	case allowLong && rsi <= rsiTrendLong && price > ema:
		return ActionBuy, confidence(rsi) - 0.1, fmt.Sprintf("price %.4f above EMA %.4f with RSI %.2f", price, ema, rsi)
	}
	return ActionHold, 0, fmt.Sprintf("no edge: RSI %.2f, price %.4f, EMA %.4f", rsi, price, ema)
}

// confidence grows with RSI distance from 50: 70 -> 0.7, 90 -> 0.9.
func confidence(rsi float64) float64 {
	return math.Min(1, 0.5+math.Abs(rsi-50)/100)
}

func entryLeverage(conf float64, maxLev int) int {
	if maxLev < 1 {
		maxLev = 1
	}
	lev := int(math.Round(conf * float64(maxLev) / 2))
	return min(max(lev, 1), maxLev)
}

// entrySize keeps the notional under the risk cap so the guardrail passes it.
func entrySize(in Context) float64 {
	price := in.Market.Price
	if price <= 0 {
		return 0
	}
	budget := decimal.NewFromFloat(in.Account.Equity).
		Mul(decimal.NewFromFloat(in.Constraints.MaxRiskPerTradePct)).
		Mul(decimal.NewFromFloat(ruleSizeFraction))
	size, _ := budget.Div(decimal.NewFromFloat(price)).Truncate(ruleSizeDecimals).Float64()
	return size
}
