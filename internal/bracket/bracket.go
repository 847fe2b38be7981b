package bracket

import (
	"errors"
	"fmt"
	"math"

	"aegis/internal/decision"
	"aegis/internal/position"

	"github.com/shopspring/decimal"
)

// ErrNoBracket means the take-profit or stop-loss price is not usable; the
// entry must not be placed.
var ErrNoBracket = errors.New("no valid bracket")

// Order is an exchange-ready order with its protective prices.
type Order struct {
	Symbol     string
	Side       position.Side // side of the position being opened or closed
	Close      bool
	Size       float64
	Leverage   int
	Price      float64 // reference price; orders are sent at market
	TakeProfit float64
	StopLoss   float64
}

type Planner struct {
	takeProfitUSDT decimal.Decimal
	stopLossUSDT   decimal.Decimal
}

func NewPlanner(takeProfitUSDT, stopLossUSDT float64) *Planner {
	return &Planner{
		takeProfitUSDT: decimal.NewFromFloat(takeProfitUSDT),
		stopLossUSDT:   decimal.NewFromFloat(stopLossUSDT),
	}
}

// Entry derives the bracket from the fixed USDT targets: a short takes profit
// at price - TP/size and stops at price + SL/size, a long mirrors both.
func (p *Planner) Entry(symbol string, price float64, d decision.Decision) (Order, error) {
	if !d.Action.IsEntry() {
		return Order{}, fmt.Errorf("%s is not an entry action", d.Action)
	}
	if !finitePositive(price) || !finitePositive(d.Size) {
		return Order{}, fmt.Errorf("%w: price=%v size=%v", ErrNoBracket, price, d.Size)
	}
	px := decimal.NewFromFloat(price)
	qty := decimal.NewFromFloat(d.Size)
	tpDist := p.takeProfitUSDT.Div(qty)
	slDist := p.stopLossUSDT.Div(qty)

	side := d.Action.Side()
	var tp, sl decimal.Decimal
	if side == position.SideShort {
		tp, sl = px.Sub(tpDist), px.Add(slDist)
	} else {
		tp, sl = px.Add(tpDist), px.Sub(slDist)
	}
	tpf, _ := tp.Float64()
	slf, _ := sl.Float64()
	if !finitePositive(tpf) || !finitePositive(slf) {
		return Order{}, fmt.Errorf("%w: tp=%s sl=%s", ErrNoBracket, tp.String(), sl.String())
	}
	return Order{
		Symbol:     symbol,
		Side:       side,
		Size:       d.Size,
		Leverage:   d.Leverage,
		Price:      price,
		TakeProfit: tpf,
		StopLoss:   slf,
	}, nil
}

// Close builds the order that flattens pos. The tracked size is used; any
// size on the decision is ignored.
func (p *Planner) Close(pos position.Position, price float64) Order {
	return Order{
		Symbol:   pos.Symbol,
		Side:     pos.Side,
		Close:    true,
		Size:     pos.Size,
		Leverage: pos.Leverage,
		Price:    price,
	}
}

// OrderSide is the BUY/SELL direction the order trades in.
func (o Order) OrderSide() decision.Action {
	s := o.Side
	if o.Close {
		s = s.Opposite()
	}
	if s == position.SideLong {
		return decision.ActionBuy
	}
	return decision.ActionSell
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
