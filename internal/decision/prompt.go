package decision

import (
	"fmt"
	"strings"
	"text/template"

	"aegis/internal/logger"
)

const systemPrompt = `You are a professional crypto futures trader competing in a live trading competition.

OBJECTIVE:
Maximize total account equity while avoiding liquidation.

TRADING PHILOSOPHY:
- Trade only when there is a clear edge.
- Prefer trend continuation with confirmation.
- Avoid chop and low-volatility noise.
- High confidence may use higher leverage; low confidence means HOLD.
- Capital preservation is more important than frequency.

OUTPUT RULES:
- Respond ONLY with one valid JSON object, no markdown.
- Do NOT invent prices or indicators.
- The reason is stored in a permanent audit log; make it specific (at least 10 characters).`

const userTemplate = `ALLOWED SYMBOLS: {{join .Constraints.AllowedSymbols ", "}}

HARD CONSTRAINTS
- Max leverage: {{.Constraints.MaxLeverage}}x
- Max notional per trade: {{pct .Constraints.MaxRiskPerTradePct}} of equity
- Max concurrent positions: {{.Constraints.MaxOpenTrades}}
- Every entry carries take-profit {{num .Constraints.TakeProfitUSDT}} USDT and stop-loss {{num .Constraints.StopLossUSDT}} USDT
- Permitted actions now: {{join .Actions " | "}}

STRICT OUTPUT FORMAT
{
  "action": "{{join .Actions " | "}}",
  "confidence": 0.0,
  "leverage": 1,
  "size": 0.05,
  "reason": "Clear, specific explanation"
}
size is the contract quantity in base units; use 0 for HOLD.

CURRENT MARKET DATA ({{.Market.Symbol}}, {{.Market.Timeframe}})
- PRICE: {{num .Market.Price}}
- RSI14: {{num .Market.RSI}}
- EMA20: {{num .Market.EMA}}
- ATR14: {{num .Market.ATR}}
- FUNDING: {{num .Market.Funding}}

ACCOUNT STATUS
Equity: {{num .Account.Equity}}, Balance: {{num .Account.Balance}}, Drawdown: {{pct .Account.Drawdown}}
{{- if .Position}}

OPEN POSITION
{{.Position.Side}} {{num .Position.Size}} @ {{num .Position.EntryPrice}} x{{.Position.Leverage}}, unrealized PnL {{num .Position.PnLUSDT}} USDT
A CLOSE must use size {{num .Constraints.RequiredSize}}.
{{- else}}

OPEN POSITION
none
{{- end}}
`

var promptFuncs = template.FuncMap{
	"join": strings.Join,
	"num":  func(v float64) string { return fmt.Sprintf("%.6g", v) },
	"pct":  func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
}

var defaultUserTemplate = template.Must(template.New("decision_user").Funcs(promptFuncs).Parse(userTemplate))

type promptView struct {
	Context
	Actions []string
}

// AllowedActions is the lifecycle gate: a flat symbol may be entered short
// (or long when enabled), an open one may only be closed.
func AllowedActions(hasPosition, allowLong bool) []Action {
	if hasPosition {
		return []Action{ActionClose, ActionHold}
	}
	if allowLong {
		return []Action{ActionSell, ActionBuy, ActionHold}
	}
	return []Action{ActionSell, ActionHold}
}

// PermittedActions prefers the actions the orchestrator derived for this cycle.
func PermittedActions(in Context) []Action {
	if len(in.Constraints.Actions) > 0 {
		return in.Constraints.Actions
	}
	return AllowedActions(in.HasPosition(), in.Constraints.AllowLong)
}

// BuildPrompt renders the system and user prompts for one cycle.
func BuildPrompt(in Context) (system, user string, err error) {
	acts := PermittedActions(in)
	names := make([]string, len(acts))
	for i, a := range acts {
		names[i] = string(a)
	}
	var b strings.Builder
	if err := defaultUserTemplate.Execute(&b, promptView{Context: in, Actions: names}); err != nil {
		logger.Warnf("decision prompt render failed: %v", err)
		return "", "", fmt.Errorf("render prompt: %w", err)
	}
	return systemPrompt, b.String(), nil
}
