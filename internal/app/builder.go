package app

import (
	"strings"

	"aegis/internal/account"
	"aegis/internal/audit"
	"aegis/internal/bracket"
	"aegis/internal/config"
	"aegis/internal/decision"
	"aegis/internal/executor"
	"aegis/internal/gateway/notifier"
	"aegis/internal/gateway/provider"
	"aegis/internal/gateway/weex"
	"aegis/internal/guardrail"
	"aegis/internal/logger"
	"aegis/internal/market"
	"aegis/internal/position"
	statushttp "aegis/internal/transport/http/status"
	"aegis/internal/trader"
)

// ExchangeClient is everything the agent needs from the venue.
type ExchangeClient interface {
	market.Source
	account.Source
	executor.Exchange
	audit.Uploader
}

type AppBuilder struct {
	cfg *config.Config

	exchangeFn func(config.ExchangeConfig) ExchangeClient
	deciderFn  func(config.AIConfig) decision.Decider
	notifierFn func(config.TelegramConfig) notifier.TextNotifier
}

type AppBuilderOption func(*AppBuilder)

func WithExchange(fn func(config.ExchangeConfig) ExchangeClient) AppBuilderOption {
	return func(b *AppBuilder) { b.exchangeFn = fn }
}

func WithDecider(fn func(config.AIConfig) decision.Decider) AppBuilderOption {
	return func(b *AppBuilder) { b.deciderFn = fn }
}

func WithNotifier(fn func(config.TelegramConfig) notifier.TextNotifier) AppBuilderOption {
	return func(b *AppBuilder) { b.notifierFn = fn }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		exchangeFn: buildExchange,
		deciderFn:  buildDecider,
		notifierFn: buildNotifier,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	cfg := b.cfg
	tc := cfg.Trading

	ex := b.exchangeFn(cfg.Exchange)
	tracker := position.NewTracker(tc.MaxOpenTrades)
	killSwitch := audit.NewKillSwitch(ex, audit.Options{
		MaxFailures:  cfg.Audit.MaxFailures,
		DefaultStage: cfg.Audit.Stage,
		DefaultModel: cfg.Audit.Model,
	})
	notif := b.notifierFn(cfg.Notify.Telegram)

	tr := trader.New(trader.Config{
		Symbols:     tc.Symbols,
		Constraints: constraintsFrom(tc),
		Interval:    tc.PollInterval(),
	}, trader.Deps{
		Market:  market.NewService(ex, tc.Timeframe, tc.CandleLimit),
		Account: account.NewService(ex),
		Decider: b.deciderFn(cfg.AI),
		Guard: guardrail.NewValidator(guardrail.Limits{
			AllowedSymbols:     tc.Symbols,
			MaxLeverage:        tc.MaxLeverage,
			MaxRiskPerTradePct: tc.MaxRiskPerTradePct,
		}),
		Planner:  bracket.NewPlanner(tc.TakeProfitUSDT, tc.StopLossUSDT),
		Tracker:  tracker,
		Orders:   executor.New(ex),
		Auditor:  killSwitch,
		Notifier: notif,
	})

	srv, err := statushttp.NewServer(statushttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Positions: tr,
		Audit:     killSwitch,
		Cycles:    tr,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		trader:   tr,
		http:     srv,
		notifier: notif,
		exchange: ex,
		Summary:  newStartupSummary(cfg),
	}, nil
}

func constraintsFrom(tc config.TradingConfig) decision.Constraints {
	return decision.Constraints{
		AllowedSymbols:     append([]string(nil), tc.Symbols...),
		MaxLeverage:        tc.MaxLeverage,
		MaxRiskPerTradePct: tc.MaxRiskPerTradePct,
		MaxOpenTrades:      tc.MaxOpenTrades,
		TakeProfitUSDT:     tc.TakeProfitUSDT,
		StopLossUSDT:       tc.StopLossUSDT,
		AllowLong:          tc.AllowLong,
	}
}

func buildExchange(cfg config.ExchangeConfig) ExchangeClient {
	return weex.New(cfg)
}

func buildDecider(cfg config.AIConfig) decision.Decider {
	if cfg.IsRuleBased() {
		logger.Infof("decision source: rule engine (min confidence %.2f)", cfg.MinConfidence)
		return decision.NewRuleDecider(cfg.MinConfidence)
	}
	logger.Infof("decision source: %s via %s", cfg.Model, cfg.APIURL)
	return decision.NewLLMDecider(provider.NewFromConfig(cfg), cfg.Model)
}

func buildNotifier(cfg config.TelegramConfig) notifier.TextNotifier {
	if !cfg.Enabled || strings.TrimSpace(cfg.BotToken) == "" {
		return notifier.Nop{}
	}
	return notifier.NewTelegram(cfg.APIURL, cfg.BotToken, cfg.ChatID)
}
