package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aegis/internal/audit"
	"aegis/internal/config"
	"aegis/internal/gateway/notifier"
	"aegis/internal/logger"
	statushttp "aegis/internal/transport/http/status"
	"aegis/internal/trader"

	"golang.org/x/sync/errgroup"
)

// App wires the trading loop and the status server and runs them together.
type App struct {
	cfg      *config.Config
	trader   *trader.Trader
	http     *statushttp.Server
	notifier notifier.TextNotifier
	exchange ExchangeClient
	Summary  *StartupSummary
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(cfg)
}

// Run checks venue connectivity, then blocks until ctx is cancelled or the
// trading loop halts. A kill-switch halt is announced on the notifier and
// returned unchanged.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil || a.trader == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	if !a.cfg.App.SkipPreflight && a.exchange != nil {
		if err := a.preflight(ctx); err != nil {
			return err
		}
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.http != nil {
		group.Go(func() error {
			if err := a.http.Start(ctx); err != nil {
				return fmt.Errorf("status http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		err := a.trader.Run(ctx)
		if errors.Is(err, audit.ErrKillSwitch) {
			a.announceHalt(err)
		}
		return err
	})

	return group.Wait()
}

func (a *App) announceHalt(err error) {
	msg := notifier.StructuredMessage{
		Icon:      "🛑",
		Title:     "Trading halted",
		Sections:  []notifier.MessageSection{{Lines: []string{err.Error()}}},
		Timestamp: time.Now(),
	}
	if nerr := a.notifier.SendText(msg.RenderMarkdown()); nerr != nil {
		logger.Warnf("halt notification failed: %v", nerr)
	}
}

func (a *App) Trader() *trader.Trader {
	if a == nil {
		return nil
	}
	return a.trader
}
