package market

import "context"

// Source is the exchange market-data surface a snapshot is built from.
type Source interface {
	Ticker(ctx context.Context, symbol string) (float64, error)
	Candles(ctx context.Context, symbol, granularity string, limit int) ([]Candle, error)
	FundingRate(ctx context.Context, symbol string) (float64, error)
}
