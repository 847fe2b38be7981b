package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// candleSpans lists the candle granularities the futures venue serves.
var candleSpans = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// CandleSpan returns how long one candle of timeframe covers.
func CandleSpan(timeframe string) (time.Duration, error) {
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if d, ok := candleSpans[tf]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unsupported timeframe %q", timeframe)
}

// CycleInterval turns the configured poll seconds into the pass interval.
// Non-positive values fall back to one candle of timeframe.
func CycleInterval(seconds int, timeframe string) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if d, err := CandleSpan(timeframe); err == nil {
		return d
	}
	return time.Minute
}
