package app

import (
	"context"
	"fmt"

	"aegis/internal/logger"
)

// preflight makes one public and one signed call so bad endpoints or
// credentials stop the agent before the first cycle.
func (a *App) preflight(ctx context.Context) error {
	if len(a.cfg.Trading.Symbols) == 0 {
		return fmt.Errorf("preflight: no symbols configured")
	}
	symbol := a.cfg.Trading.Symbols[0]
	price, err := a.exchange.Ticker(ctx, symbol)
	if err != nil {
		return fmt.Errorf("preflight public ticker %s: %w", symbol, err)
	}
	logger.Infof("preflight: public API ok, %s last=%.4f", symbol, price)

	equity, available, err := a.exchange.Assets(ctx)
	if err != nil {
		return fmt.Errorf("preflight signed assets: %w", err)
	}
	logger.Infof("preflight: signed API ok, equity=%.4f available=%.4f", equity, available)
	return nil
}
