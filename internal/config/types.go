package config

import (
	"strings"
	"time"

	"aegis/internal/scheduler"
)

// Config is the root configuration of the agent.
type Config struct {
	App      AppConfig      `toml:"app"`
	Exchange ExchangeConfig `toml:"exchange"`
	Trading  TradingConfig  `toml:"trading"`
	AI       AIConfig       `toml:"ai"`
	Audit    AuditConfig    `toml:"audit"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
	LLMLog   string `toml:"llm_log_path"`
	LLMDump  bool   `toml:"llm_dump_payload"`

	// SkipPreflight disables the startup connectivity check.
	SkipPreflight bool `toml:"skip_preflight"`
}

// ExchangeConfig describes WEEX contract API access. Credentials normally come
// from WEEX_API_KEY / WEEX_SECRET_KEY / WEEX_PASSPHRASE.
type ExchangeConfig struct {
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	SecretKey      string  `toml:"secret_key"`
	Passphrase     string  `toml:"passphrase"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RatePerSecond  float64 `toml:"rate_per_second"`
}

func (e ExchangeConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// TradingConfig holds the hard risk limits and the polling cadence.
type TradingConfig struct {
	Symbols             []string `toml:"symbols"`
	MaxLeverage         int      `toml:"max_leverage"`
	MaxRiskPerTradePct  float64  `toml:"max_risk_per_trade_pct"` // notional cap as a fraction of equity
	MaxOpenTrades       int      `toml:"max_open_trades"`
	TakeProfitUSDT      float64  `toml:"take_profit_usdt"`
	StopLossUSDT        float64  `toml:"stop_loss_usdt"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	Timeframe           string   `toml:"timeframe"`
	CandleLimit         int      `toml:"candle_limit"`
	AllowLong           bool     `toml:"allow_long"`
}

func (t TradingConfig) PollInterval() time.Duration {
	return scheduler.CycleInterval(t.PollIntervalSeconds, t.Timeframe)
}

// AIConfig selects the decision source.
type AIConfig struct {
	Mode           string  `toml:"mode"` // "llm" | "rule"
	APIURL         string  `toml:"api_url"`
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
	MaxRetries     int     `toml:"max_retries"`
	MinConfidence  float64 `toml:"min_confidence"`
}

func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a AIConfig) IsRuleBased() bool {
	return strings.EqualFold(strings.TrimSpace(a.Mode), AIModeRule)
}

const (
	AIModeLLM  = "llm"
	AIModeRule = "rule"
)

// AuditConfig controls the decision-log kill switch.
type AuditConfig struct {
	MaxFailures int    `toml:"max_failures"`
	Stage       string `toml:"stage"`
	Model       string `toml:"model"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
	APIURL   string `toml:"api_url"`
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}
