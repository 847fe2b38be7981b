package market

import (
	"context"
	"fmt"
	"time"

	"aegis/internal/logger"
	"aegis/internal/scheduler"
)

// Service assembles snapshots from a Source.
type Service struct {
	src       Source
	timeframe string
	interval  time.Duration
	limit     int
	now       func() time.Time
}

func NewService(src Source, timeframe string, limit int) *Service {
	interval, _ := scheduler.CandleSpan(timeframe)
	return &Service{
		src:       src,
		timeframe: timeframe,
		interval:  interval,
		limit:     limit,
		now:       time.Now,
	}
}

// Snapshot fetches candles, the ticker and funding for symbol. Candle errors
// fail the snapshot; ticker and funding errors degrade to the last close and 0.
func (s *Service) Snapshot(ctx context.Context, symbol string) (Snapshot, error) {
	candles, err := s.src.Candles(ctx, symbol, s.timeframe, s.limit)
	if err != nil {
		return Snapshot{Symbol: symbol}, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}
	candles = DropUnclosed(candles, s.interval, s.now())
	if len(candles) == 0 {
		return Snapshot{Symbol: symbol}, fmt.Errorf("no closed candles for %s", symbol)
	}
	price, err := s.src.Ticker(ctx, symbol)
	if err != nil {
		logger.Warnf("ticker %s failed, using last close: %v", symbol, err)
		price = 0
	}
	funding, err := s.src.FundingRate(ctx, symbol)
	if err != nil {
		logger.Warnf("funding rate %s failed: %v", symbol, err)
		funding = 0
	}
	return BuildSnapshot(symbol, s.timeframe, candles, price, funding), nil
}
