package decision

import (
	"math"
	"strings"

	"aegis/internal/account"
	"aegis/internal/market"
	"aegis/internal/position"
)

type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionClose Action = "CLOSE"
	ActionHold  Action = "HOLD"
)

func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(raw)))
	switch a {
	case ActionBuy, ActionSell, ActionClose, ActionHold:
		return a, true
	}
	return "", false
}

// IsEntry reports whether the action opens a position.
func (a Action) IsEntry() bool { return a == ActionBuy || a == ActionSell }

// Side is the position side an entry action opens.
func (a Action) Side() position.Side {
	if a == ActionBuy {
		return position.SideLong
	}
	return position.SideShort
}

const (
	StageDecision = "Decision Making"
	StageError    = "Error Handling"
	ModelSystem   = "System"
	ModelRule     = "RuleBased-AI-v1"
)

// AuditPayload is the explainability record that accompanies every decision.
type AuditPayload struct {
	Stage       string `json:"stage"`
	Model       string `json:"model"`
	Input       any    `json:"input"`
	Output      any    `json:"output"`
	Explanation string `json:"explanation"`
}

// Decision is passed by value once produced; downstream stages never mutate it.
type Decision struct {
	Action     Action       `json:"action"`
	Confidence float64      `json:"confidence"`
	Leverage   int          `json:"leverage"`
	Size       float64      `json:"size"`
	Reason     string       `json:"reason"`
	Price      float64      `json:"price,omitempty"` // 0 means absent
	Audit      AuditPayload `json:"-"`
}

func (d Decision) HasPrice() bool {
	return d.Price > 0 && !math.IsInf(d.Price, 0) && !math.IsNaN(d.Price)
}

// WithPrice returns a copy carrying the reference price.
func (d Decision) WithPrice(price float64) Decision {
	d.Price = price
	return d
}

// Fields is the decision as the audit output object.
func (d Decision) Fields() map[string]any {
	out := map[string]any{
		"action":     string(d.Action),
		"confidence": d.Confidence,
		"leverage":   d.Leverage,
		"size":       d.Size,
		"reason":     d.Reason,
	}
	if d.HasPrice() {
		out["price"] = d.Price
	}
	return out
}

// Constraints are the hard limits shown to the decision source.
type Constraints struct {
	AllowedSymbols     []string `json:"allowed_symbols"`
	MaxLeverage        int      `json:"max_leverage"`
	MaxRiskPerTradePct float64  `json:"max_risk_per_trade_pct"`
	MaxOpenTrades      int      `json:"max_open_trades"`
	TakeProfitUSDT     float64  `json:"take_profit_usdt"`
	StopLossUSDT       float64  `json:"stop_loss_usdt"`
	AllowLong          bool     `json:"allow_long"`
	Actions            []Action `json:"allowed_actions,omitempty"`
	RequiredSize       float64  `json:"required_size,omitempty"` // close quantity when a position is open
}

// Context is everything a decision source sees for one symbol and cycle.
type Context struct {
	Symbol      string             `json:"symbol"`
	Market      market.Snapshot    `json:"market"`
	Account     account.State      `json:"account"`
	Position    *position.Position `json:"position,omitempty"`
	Constraints Constraints        `json:"constraints"`
}

func (c Context) HasPosition() bool { return c.Position != nil }
