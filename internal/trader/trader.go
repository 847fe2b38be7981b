// Package trader runs the per-symbol decision cycle: market snapshot, account
// refresh, decision, risk check, lifecycle gate, bracket, order and audit.
package trader

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"aegis/internal/account"
	"aegis/internal/audit"
	"aegis/internal/bracket"
	"aegis/internal/decision"
	"aegis/internal/gateway/notifier"
	"aegis/internal/guardrail"
	"aegis/internal/logger"
	"aegis/internal/market"
	"aegis/internal/metrics"
	"aegis/internal/position"
	"aegis/internal/scheduler"

	"github.com/google/uuid"
)

type MarketService interface {
	Snapshot(ctx context.Context, symbol string) (market.Snapshot, error)
}

type AccountService interface {
	State(ctx context.Context) (account.State, error)
}

type OrderSubmitter interface {
	Submit(ctx context.Context, o bracket.Order) (string, error)
}

// Auditor records the decision of every cycle. A non-nil error means trading
// must stop.
type Auditor interface {
	Record(ctx context.Context, orderID string, p decision.AuditPayload) error
}

type Config struct {
	Symbols     []string
	Constraints decision.Constraints
	Interval    time.Duration
}

type Deps struct {
	Market   MarketService
	Account  AccountService
	Decider  decision.Decider
	Guard    *guardrail.Validator
	Planner  *bracket.Planner
	Tracker  *position.Tracker
	Orders   OrderSubmitter
	Auditor  Auditor
	Notifier notifier.TextNotifier
}

type Trader struct {
	cfg Config
	Deps

	last    *outcomeCache
	now     func() time.Time
	traceID func() string
}

func New(cfg Config, d Deps) *Trader {
	if d.Notifier == nil {
		d.Notifier = notifier.Nop{}
	}
	return &Trader{
		cfg:     cfg,
		Deps:    d,
		last:    newOutcomeCache(),
		now:     time.Now,
		traceID: uuid.NewString,
	}
}

// Run repeats passes over the configured symbols until ctx is done or the
// audit kill switch trips.
func (t *Trader) Run(ctx context.Context) error {
	s := scheduler.NewFixedScheduler("trader", t.cfg.Interval)
	return s.Run(ctx, t.RunPass)
}

// RunPass evaluates every symbol once, in order. Symbol errors and panics are
// logged and skipped; only a kill-switch halt is returned.
func (t *Trader) RunPass(ctx context.Context) error {
	for _, symbol := range t.cfg.Symbols {
		if ctx.Err() != nil {
			return nil
		}
		out, err := t.safeCycle(ctx, symbol)
		if err != nil {
			if errors.Is(err, audit.ErrKillSwitch) {
				return err
			}
			metrics.CycleErrors.WithLabelValues("cycle").Inc()
			logger.Errorf("cycle %s failed: %v", symbol, err)
			continue
		}
		logger.Infof("cycle %s: status=%s action=%s order=%s reason=%s trace=%s",
			symbol, out.Status, out.Action, out.OrderID, out.Reason, out.TraceID)
	}
	return nil
}

func (t *Trader) safeCycle(ctx context.Context, symbol string) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("cycle %s panic: %v\n%s", symbol, r, debug.Stack())
			metrics.CycleErrors.WithLabelValues("panic").Inc()
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.RunCycle(ctx, symbol)
}

// RunCycle runs one decision cycle for symbol. The returned error is either a
// fetch failure that aborted the cycle or the audit halt error.
func (t *Trader) RunCycle(ctx context.Context, symbol string) (Outcome, error) {
	out := Outcome{Symbol: symbol, TraceID: t.traceID(), At: t.now().UTC()}
	defer func() { t.last.Set(out) }()

	snap, err := t.Market.Snapshot(ctx, symbol)
	if err != nil || !snap.Usable() {
		out.Status = StatusSkippedMarket
		out.Reason = "market data unavailable"
		if err != nil {
			out.Reason = err.Error()
		}
		logger.Warnf("skip %s: %s", symbol, out.Reason)
		return out, nil
	}

	acct, err := t.Account.State(ctx)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("account").Inc()
		return out, fmt.Errorf("account state: %w", err)
	}
	metrics.Equity.Set(acct.Equity)

	if pnl, ok := t.Tracker.RefreshPnL(symbol, snap.Price); ok {
		logger.Infof("%s unrealized pnl %.4f USDT @ %.6g", symbol, pnl, snap.Price)
	}

	hasPos := t.Tracker.HasPosition(symbol, acct.OpenPositions)
	if !t.Tracker.Admit(symbol, acct.OpenPositions) {
		out.Status = StatusSkippedCapacity
		out.Reason = fmt.Sprintf("max open trades %d reached", t.Tracker.MaxOpen())
		logger.Infof("skip %s: %s", symbol, out.Reason)
		return out, nil
	}

	var pos *position.Position
	if hasPos {
		pos = t.openPosition(symbol, acct)
	}
	in := t.decisionContext(symbol, snap, acct, pos)

	d := t.Decider.Decide(ctx, in).WithPrice(snap.Price)
	out.Action = d.Action
	metrics.Decisions.WithLabelValues(string(d.Action), d.Audit.Model).Inc()
	logger.Infof("%s decision %s conf=%.2f lev=%dx size=%v: %s", symbol, d.Action, d.Confidence, d.Leverage, d.Size, d.Reason)

	t.act(ctx, &out, snap, acct, pos, d)
	metrics.OpenPositions.Set(float64(len(t.Tracker.Snapshot())))

	if err := t.Auditor.Record(ctx, out.OrderID, d.Audit); err != nil {
		return out, err
	}
	return out, nil
}

func (t *Trader) decisionContext(symbol string, snap market.Snapshot, acct account.State, pos *position.Position) decision.Context {
	c := t.cfg.Constraints
	c.Actions = decision.AllowedActions(pos != nil, c.AllowLong)
	c.RequiredSize = 0
	if pos != nil {
		c.RequiredSize = pos.Size
	}
	return decision.Context{
		Symbol:      symbol,
		Market:      snap,
		Account:     acct,
		Position:    pos,
		Constraints: c,
	}
}

// openPosition prefers the local record and falls back to the exchange report
// when the process restarted with a position already open.
func (t *Trader) openPosition(symbol string, acct account.State) *position.Position {
	if p, ok := t.Tracker.Get(symbol); ok {
		return &p
	}
	rp, ok := acct.Find(symbol)
	if !ok {
		return nil
	}
	side, ok := position.ParseSide(rp.Side)
	if !ok {
		side = position.SideShort
	}
	return &position.Position{
		Symbol:     strings.ToLower(symbol),
		Side:       side,
		EntryPrice: rp.EntryPrice,
		Size:       rp.Size,
		Leverage:   rp.Leverage,
	}
}

func (t *Trader) act(ctx context.Context, out *Outcome, snap market.Snapshot, acct account.State, pos *position.Position, d decision.Decision) {
	symbol := out.Symbol
	if ok, reason := t.Guard.Check(d, symbol, acct); !ok {
		metrics.GuardrailDenials.Inc()
		out.Status, out.Reason = StatusDenied, reason
		logger.Warnf("guardrail denied %s %s: %s", d.Action, symbol, reason)
		return
	}
	if d.Action == decision.ActionHold {
		out.Status, out.Reason = StatusHold, d.Reason
		return
	}
	if reason, ok := t.gate(d, pos); !ok {
		out.Status, out.Reason = StatusGated, reason
		logger.Infof("%s %s ignored: %s", d.Action, symbol, reason)
		return
	}
	if d.Action == decision.ActionClose {
		t.close(ctx, out, snap, *pos)
		return
	}
	t.open(ctx, out, snap, d)
}

func (t *Trader) gate(d decision.Decision, pos *position.Position) (string, bool) {
	switch {
	case d.Action == decision.ActionClose && pos == nil:
		return "no open position to close", false
	case d.Action.IsEntry() && pos != nil:
		return "position already open", false
	case d.Action == decision.ActionBuy && !t.cfg.Constraints.AllowLong:
		return "long entries are disabled", false
	}
	return "", true
}

func (t *Trader) open(ctx context.Context, out *Outcome, snap market.Snapshot, d decision.Decision) {
	order, err := t.Planner.Entry(out.Symbol, snap.Price, d)
	if err != nil {
		out.Status, out.Reason = StatusNoBracket, err.Error()
		logger.Warnf("no entry for %s: %v", out.Symbol, err)
		return
	}
	id, err := t.Orders.Submit(ctx, order)
	if err != nil {
		out.Status, out.Reason = StatusOrderFailed, err.Error()
		return
	}
	out.Status, out.OrderID = StatusOpened, id
	p := position.Position{
		Symbol:     out.Symbol,
		Side:       order.Side,
		EntryPrice: order.Price,
		Size:       order.Size,
		Leverage:   order.Leverage,
		TakeProfit: order.TakeProfit,
		StopLoss:   order.StopLoss,
		OrderID:    id,
	}
	if err := t.Tracker.Open(p); err != nil {
		logger.Errorf("order %s placed but position not tracked: %v", id, err)
	}
	t.notify(notifier.StructuredMessage{
		Icon:  "🟢",
		Title: fmt.Sprintf("Opened %s %s", order.Side, strings.ToUpper(out.Symbol)),
		Sections: []notifier.MessageSection{{Lines: []string{
			fmt.Sprintf("Size: %v @ %.6g (%dx)", order.Size, order.Price, order.Leverage),
			fmt.Sprintf("TP: %.6g  SL: %.6g", order.TakeProfit, order.StopLoss),
			"Order: " + id,
		}}},
		Footer:    d.Reason,
		Timestamp: t.now(),
	})
}

func (t *Trader) close(ctx context.Context, out *Outcome, snap market.Snapshot, pos position.Position) {
	order := t.Planner.Close(pos, snap.Price)
	id, err := t.Orders.Submit(ctx, order)
	if err != nil {
		out.Status, out.Reason = StatusOrderFailed, err.Error()
		return
	}
	out.Status, out.OrderID = StatusClosed, id
	t.Tracker.Close(out.Symbol)
	pnl := position.UnrealizedPnL(pos.Side, pos.EntryPrice, snap.Price, pos.Size)
	t.notify(notifier.StructuredMessage{
		Icon:  "🔴",
		Title: fmt.Sprintf("Closed %s %s", pos.Side, strings.ToUpper(out.Symbol)),
		Sections: []notifier.MessageSection{{Lines: []string{
			fmt.Sprintf("Size: %v  Entry: %.6g  Exit: %.6g", pos.Size, pos.EntryPrice, snap.Price),
			fmt.Sprintf("PnL: %.4f USDT", pnl),
			"Order: " + id,
		}}},
		Timestamp: t.now(),
	})
}

func (t *Trader) notify(msg notifier.StructuredMessage) {
	if err := t.Notifier.SendText(msg.RenderMarkdown()); err != nil {
		logger.Warnf("notify failed: %v", err)
	}
}

// Positions is the locally tracked open set.
func (t *Trader) Positions() []position.Position { return t.Tracker.Snapshot() }

func (t *Trader) Position(symbol string) (position.Position, bool) { return t.Tracker.Get(symbol) }

// LastOutcomes returns the latest cycle outcome per symbol.
func (t *Trader) LastOutcomes() []Outcome { return t.last.Snapshot() }
