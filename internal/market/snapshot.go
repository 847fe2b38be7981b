package market

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"
)

const (
	RSIPeriod = 14
	EMAPeriod = 20
	ATRPeriod = 14

	neutralRSI = 50.0
)

// Snapshot is the per-cycle market view for one contract.
type Snapshot struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Price     float64   `json:"price"`
	RSI       float64   `json:"rsi"`
	EMA       float64   `json:"ema"`
	ATR       float64   `json:"atr"`
	Funding   float64   `json:"funding"`
	Candles   int       `json:"candles"`
	At        time.Time `json:"at"`
}

// Usable reports whether the snapshot carries a price a decision can act on.
func (s Snapshot) Usable() bool {
	return s.Symbol != "" && s.Price > 0 && !math.IsInf(s.Price, 0) && !math.IsNaN(s.Price)
}

// BuildSnapshot computes RSI(14), EMA(20) and ATR(14) from closed candles.
// Short histories fall back to a neutral RSI, the last close for EMA and a zero ATR.
func BuildSnapshot(symbol, timeframe string, candles []Candle, price, funding float64) Snapshot {
	snap := Snapshot{
		Symbol:    symbol,
		Timeframe: timeframe,
		Price:     price,
		RSI:       neutralRSI,
		Funding:   funding,
		Candles:   len(candles),
		At:        time.Now().UTC(),
	}
	if len(candles) == 0 {
		return snap
	}
	c, h, l := closes(candles)
	last := c[len(c)-1]
	if snap.Price <= 0 {
		snap.Price = last
	}
	snap.EMA = last
	if len(c) > RSIPeriod {
		snap.RSI = round(lastValue(talib.Rsi(c, RSIPeriod), neutralRSI), 2)
	}
	if len(c) >= EMAPeriod {
		snap.EMA = round(lastValue(talib.Ema(c, EMAPeriod), last), 2)
	}
	if len(c) > ATRPeriod {
		snap.ATR = round(lastValue(talib.Atr(h, l, c, ATRPeriod), 0), 4)
	}
	return snap
}

func lastValue(series []float64, def float64) float64 {
	if len(series) == 0 {
		return def
	}
	v := series[len(series)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
