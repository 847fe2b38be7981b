package position

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

func (s Side) Opposite() Side {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

// ParseSide accepts LONG/SHORT in any case plus the buy/sell aliases exchanges use.
func ParseSide(raw string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LONG", "BUY":
		return SideLong, true
	case "SHORT", "SELL":
		return SideShort, true
	}
	return "", false
}

type Status string

const (
	StatusFlat Status = "FLAT"
	StatusOpen Status = "OPEN"
)

// Position is the locally tracked open position of one contract. Size is
// fixed for the life of the position.
type Position struct {
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	Size       float64   `json:"size"`
	Leverage   int       `json:"leverage"`
	TakeProfit float64   `json:"take_profit,omitempty"`
	StopLoss   float64   `json:"stop_loss,omitempty"`
	MarkPrice  float64   `json:"mark_price,omitempty"`
	PnLUSDT    float64   `json:"pnl_usdt"`
	OpenedAt   time.Time `json:"opened_at"`
	OrderID    string    `json:"order_id"`
}

// UnrealizedPnL is (entry-price)*size for shorts and (price-entry)*size for longs.
func UnrealizedPnL(side Side, entry, price, size float64) float64 {
	e := decimal.NewFromFloat(entry)
	p := decimal.NewFromFloat(price)
	q := decimal.NewFromFloat(size)
	diff := p.Sub(e)
	if side == SideShort {
		diff = e.Sub(p)
	}
	out, _ := diff.Mul(q).Float64()
	return out
}
