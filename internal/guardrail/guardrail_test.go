package guardrail

import (
	"math"
	"testing"

	"aegis/internal/account"
	"aegis/internal/decision"

	"github.com/stretchr/testify/assert"
)

func newValidator() *Validator {
	return NewValidator(Limits{
		AllowedSymbols:     []string{"cmt_btcusdt", "cmt_ethusdt"},
		MaxLeverage:        20,
		MaxRiskPerTradePct: 0.02,
	})
}

func sell(size, price float64, lev int) decision.Decision {
	return decision.Decision{Action: decision.ActionSell, Confidence: 0.8, Leverage: lev, Size: size, Price: price, Reason: "test entry reason"}
}

func TestCheckRules(t *testing.T) {
	v := newValidator()
	acct := account.State{Equity: 1000, Balance: 500}

	tests := []struct {
		name    string
		d       decision.Decision
		symbol  string
		acct    account.State
		ok      bool
		contain string
	}{
		{"hold always passes", decision.Decision{Action: decision.ActionHold}, "cmt_xxx", acct, true, "OK"},
		{"close passes off-list", decision.Decision{Action: decision.ActionClose, Leverage: 99}, "cmt_xxx", acct, true, "OK"},
		{"symbol not allowed", sell(0.1, 100, 5), "cmt_dogeusdt", acct, false, "cmt_dogeusdt"},
		{"leverage above max", sell(0.1, 100, 25), "cmt_btcusdt", acct, false, "Leverage 25 exceeds limit 20"},
		{"zero size", sell(0, 100, 5), "cmt_btcusdt", acct, false, "size must be positive"},
		{"missing price", sell(0.1, 0, 5), "cmt_btcusdt", acct, false, "Missing price"},
		{"notional above cap", sell(0.25, 100, 5), "cmt_btcusdt", acct, false, "exceeds max risk"},
		{"margin above balance", sell(0.2, 100, 1), "cmt_btcusdt", account.State{Equity: 1000, Balance: 10}, false, "Insufficient balance for trade cost 20.0000"},
		{"within all limits", sell(0.2, 100, 5), "CMT_BTCUSDT", acct, true, "OK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.Check(tt.d, tt.symbol, tt.acct)
			assert.Equal(t, tt.ok, ok)
			assert.Contains(t, reason, tt.contain)
		})
	}
}

func TestCheckNotionalAtCapPasses(t *testing.T) {
	ok, _ := newValidator().Check(sell(0.2, 100, 1), "cmt_btcusdt", account.State{Equity: 1000, Balance: 1000})
	assert.True(t, ok)
}

func TestCheckNotionalReasonNamesValues(t *testing.T) {
	_, reason := newValidator().Check(sell(1, 100, 5), "cmt_btcusdt", account.State{Equity: 1000, Balance: 1000})
	assert.Contains(t, reason, "100.0000")
	assert.Contains(t, reason, "2.00%")
}

func TestCheckFirstFailureWins(t *testing.T) {
	_, reason := newValidator().Check(sell(0, 0, 50), "cmt_nope", account.State{})
	assert.Contains(t, reason, "not in allowed symbols")
}

func TestCheckDoesNotMutateDecision(t *testing.T) {
	d := sell(10, 100, 30)
	_, _ = newValidator().Check(d, "cmt_btcusdt", account.State{Equity: 1})
	assert.Equal(t, 30, d.Leverage)
	assert.Equal(t, 10.0, d.Size)
}

func TestCheckRiskCapOnSmallAccount(t *testing.T) {
	v := newValidator()
	acct := account.State{Equity: 1000, Balance: 500}

	ok, reason := v.Check(sell(0.01, 50000, 5), "cmt_btcusdt", acct)
	assert.False(t, ok)
	assert.Contains(t, reason, "exceeds max risk")

	ok, reason = v.Check(sell(0.0003, 50000, 5), "cmt_btcusdt", acct)
	assert.True(t, ok)
	assert.Equal(t, ReasonOK, reason)
}

func TestCheckDeniesNonFiniteInputs(t *testing.T) {
	v := newValidator()
	tests := []struct {
		name string
		d    decision.Decision
		acct account.State
	}{
		{"nan equity", sell(0.1, 100, 5), account.State{Equity: math.NaN(), Balance: 500}},
		{"inf equity", sell(0.1, 100, 5), account.State{Equity: math.Inf(1), Balance: 500}},
		{"nan balance", sell(0.1, 100, 5), account.State{Equity: 1000, Balance: math.NaN()}},
		{"inf size", sell(math.Inf(1), 100, 5), account.State{Equity: 1000, Balance: 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ok bool
			var reason string
			assert.NotPanics(t, func() { ok, reason = v.Check(tt.d, "cmt_btcusdt", tt.acct) })
			assert.False(t, ok)
			assert.Contains(t, reason, "not a finite number")
		})
	}
}
