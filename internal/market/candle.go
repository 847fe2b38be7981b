package market

import "time"

type Candle struct {
	OpenTime int64   `json:"open_time"` // ms since epoch
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

const DefaultCandleGrace = 10 * time.Second

// DropUnclosed drops the last candle when it is still in progress.
func DropUnclosed(candles []Candle, interval time.Duration, now time.Time) []Candle {
	if len(candles) == 0 || interval <= 0 {
		return candles
	}
	last := candles[len(candles)-1]
	if last.OpenTime <= 0 {
		return candles
	}
	cutoff := last.OpenTime + interval.Milliseconds() + DefaultCandleGrace.Milliseconds()
	if now.UnixMilli() < cutoff {
		return candles[:len(candles)-1]
	}
	return candles
}

func closes(candles []Candle) (c, h, l []float64) {
	c = make([]float64, len(candles))
	h = make([]float64, len(candles))
	l = make([]float64, len(candles))
	for i, k := range candles {
		c[i] = k.Close
		h[i] = k.High
		l[i] = k.Low
	}
	return c, h, l
}
