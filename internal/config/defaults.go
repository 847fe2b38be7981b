package config

import (
	"strings"

	"aegis/internal/pkg/symbol"
)

const (
	defaultAppEnv             = "dev"
	defaultAppLogLevel        = "info"
	defaultAppHTTPAddr        = ":9991"
	defaultAppLogPath         = "logs/aegis.log"
	defaultAppLLMLogPath      = "logs/aegis-llm.log"
	defaultExchangeBaseURL    = "https://api-contract.weex.com"
	defaultExchangeTimeout    = 10
	defaultExchangeRate       = 8
	defaultTradingMaxLev      = 20
	defaultTradingRiskPct     = 0.02
	defaultTradingMaxOpen     = 2
	defaultTradingTakeProfit  = 10
	defaultTradingStopLoss    = 5
	defaultTradingPoll        = 60
	defaultTradingTimeframe   = "5m"
	defaultTradingCandleLimit = 50
	defaultAIMode             = AIModeLLM
	defaultAIAPIURL           = "https://api.openai.com/v1"
	defaultAIModel            = "gpt-4o-mini"
	defaultAITimeout          = 60
	defaultAITemperature      = 0.2
	defaultAIRetries          = 2
	defaultAIMinConfidence    = 0.65
	defaultAuditMaxFailures   = 3
	defaultAuditStage         = "Decision Making"
	defaultTelegramAPI        = "https://api.telegram.org"
)

// DefaultSymbols is the contract allow-list used when none is configured.
var DefaultSymbols = []string{
	"cmt_btcusdt",
	"cmt_ethusdt",
	"cmt_solusdt",
	"cmt_dogeusdt",
	"cmt_xrpusdt",
	"cmt_adausdt",
	"cmt_bnbusdt",
	"cmt_ltcusdt",
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Exchange.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
	c.AI.applyDefaults(keys)
	c.Audit.applyDefaults(keys, c.AI.Model)
	c.Notify.Telegram.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		stringFieldDefault("app.llm_log_path", &a.LLMLog, defaultAppLLMLogPath),
	)
}

func (e *ExchangeConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("exchange.base_url", &e.BaseURL, defaultExchangeBaseURL),
		fieldDefault{
			key:   "exchange.timeout_seconds",
			need:  func() bool { return e.TimeoutSeconds <= 0 },
			apply: func() { e.TimeoutSeconds = defaultExchangeTimeout },
		},
		fieldDefault{
			key:   "exchange.rate_per_second",
			need:  func() bool { return e.RatePerSecond <= 0 },
			apply: func() { e.RatePerSecond = defaultExchangeRate },
		},
	)
	e.BaseURL = strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
	e.APIKey = strings.TrimSpace(e.APIKey)
	e.SecretKey = strings.TrimSpace(e.SecretKey)
	e.Passphrase = strings.TrimSpace(e.Passphrase)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	if len(t.Symbols) == 0 && !keys.isSet("trading.symbols") {
		t.Symbols = append([]string(nil), DefaultSymbols...)
	}
	t.Symbols = symbol.NormalizeWEEX(t.Symbols)
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "trading.max_leverage",
			need:  func() bool { return t.MaxLeverage <= 0 },
			apply: func() { t.MaxLeverage = defaultTradingMaxLev },
		},
		fieldDefault{
			key:   "trading.max_risk_per_trade_pct",
			need:  func() bool { return t.MaxRiskPerTradePct <= 0 },
			apply: func() { t.MaxRiskPerTradePct = defaultTradingRiskPct },
		},
		fieldDefault{
			key:   "trading.max_open_trades",
			need:  func() bool { return t.MaxOpenTrades <= 0 },
			apply: func() { t.MaxOpenTrades = defaultTradingMaxOpen },
		},
		fieldDefault{
			key:   "trading.take_profit_usdt",
			need:  func() bool { return t.TakeProfitUSDT <= 0 },
			apply: func() { t.TakeProfitUSDT = defaultTradingTakeProfit },
		},
		fieldDefault{
			key:   "trading.stop_loss_usdt",
			need:  func() bool { return t.StopLossUSDT <= 0 },
			apply: func() { t.StopLossUSDT = defaultTradingStopLoss },
		},
		fieldDefault{
			key:   "trading.poll_interval_seconds",
			need:  func() bool { return t.PollIntervalSeconds <= 0 },
			apply: func() { t.PollIntervalSeconds = defaultTradingPoll },
		},
		stringFieldDefault("trading.timeframe", &t.Timeframe, defaultTradingTimeframe),
		fieldDefault{
			key:   "trading.candle_limit",
			need:  func() bool { return t.CandleLimit <= 0 },
			apply: func() { t.CandleLimit = defaultTradingCandleLimit },
		},
	)
	t.Timeframe = strings.ToLower(strings.TrimSpace(t.Timeframe))
}

func (a *AIConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("ai.mode", &a.Mode, defaultAIMode),
		stringFieldDefault("ai.api_url", &a.APIURL, defaultAIAPIURL),
		stringFieldDefault("ai.model", &a.Model, defaultAIModel),
		fieldDefault{
			key:   "ai.timeout_seconds",
			need:  func() bool { return a.TimeoutSeconds <= 0 },
			apply: func() { a.TimeoutSeconds = defaultAITimeout },
		},
		fieldDefault{
			key:   "ai.temperature",
			need:  func() bool { return a.Temperature <= 0 },
			apply: func() { a.Temperature = defaultAITemperature },
		},
		fieldDefault{
			key:   "ai.max_retries",
			need:  func() bool { return a.MaxRetries <= 0 },
			apply: func() { a.MaxRetries = defaultAIRetries },
		},
		fieldDefault{
			key:   "ai.min_confidence",
			need:  func() bool { return a.MinConfidence <= 0 },
			apply: func() { a.MinConfidence = defaultAIMinConfidence },
		},
	)
	a.Mode = strings.ToLower(strings.TrimSpace(a.Mode))
	a.APIKey = strings.TrimSpace(a.APIKey)
}

func (a *AuditConfig) applyDefaults(keys keySet, model string) {
	if a == nil {
		return
	}
	if strings.TrimSpace(model) == "" {
		model = defaultAIModel
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "audit.max_failures",
			need:  func() bool { return a.MaxFailures <= 0 },
			apply: func() { a.MaxFailures = defaultAuditMaxFailures },
		},
		stringFieldDefault("audit.stage", &a.Stage, defaultAuditStage),
		stringFieldDefault("audit.model", &a.Model, model),
	)
}

func (t *TelegramConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("notify.telegram.api_url", &t.APIURL, defaultTelegramAPI),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
