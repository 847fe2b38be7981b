// Package guardrail enforces the hard risk limits on every decision before
// anything reaches the exchange. It reports, it never adjusts.
package guardrail

import (
	"fmt"
	"math"
	"strings"

	"aegis/internal/account"
	"aegis/internal/decision"

	"github.com/shopspring/decimal"
)

const ReasonOK = "OK"

type Limits struct {
	AllowedSymbols     []string
	MaxLeverage        int
	MaxRiskPerTradePct float64
}

type Validator struct {
	allowed map[string]struct{}
	limits  Limits
}

func NewValidator(l Limits) *Validator {
	allowed := make(map[string]struct{}, len(l.AllowedSymbols))
	for _, s := range l.AllowedSymbols {
		allowed[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &Validator{allowed: allowed, limits: l}
}

// Check applies the rules in order and returns the first failure.
func (v *Validator) Check(d decision.Decision, symbol string, acct account.State) (bool, string) {
	if d.Action == decision.ActionHold || d.Action == decision.ActionClose {
		return true, ReasonOK
	}
	if _, ok := v.allowed[strings.ToLower(strings.TrimSpace(symbol))]; !ok {
		return false, fmt.Sprintf("Symbol %s not in allowed symbols", symbol)
	}
	if d.Leverage > v.limits.MaxLeverage {
		return false, fmt.Sprintf("Leverage %d exceeds limit %d", d.Leverage, v.limits.MaxLeverage)
	}
	if !(d.Size > 0) {
		return false, "Position size must be positive"
	}
	if !d.HasPrice() {
		return false, "Missing price for size validation"
	}
	if !finite(acct.Equity) || !finite(acct.Balance) {
		return false, "Account equity or balance is not a finite number"
	}
	if !finite(d.Size) || !finite(d.Price) {
		return false, "Size or price is not a finite number"
	}

	notional := decimal.NewFromFloat(d.Size).Mul(decimal.NewFromFloat(d.Price))
	riskPct := decimal.NewFromFloat(v.limits.MaxRiskPerTradePct)
	maxNotional := decimal.NewFromFloat(acct.Equity).Mul(riskPct)
	if notional.GreaterThan(maxNotional) {
		return false, fmt.Sprintf("Notional %s exceeds max risk %s%% of equity (cap %s)",
			notional.StringFixed(4), riskPct.Mul(decimal.NewFromInt(100)).StringFixed(2), maxNotional.StringFixed(4))
	}

	lev := d.Leverage
	if lev < 1 {
		lev = 1
	}
	cost := notional.Div(decimal.NewFromInt(int64(lev)))
	if cost.GreaterThan(decimal.NewFromFloat(acct.Balance)) {
		return false, fmt.Sprintf("Insufficient balance for trade cost %s", cost.StringFixed(4))
	}
	return true, ReasonOK
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
