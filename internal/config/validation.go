package config

import (
	"fmt"
	"strings"

	"aegis/internal/scheduler"
)

// MaxDecisionLeverage is the ceiling the decision schema accepts.
const MaxDecisionLeverage = 20

func validate(c *Config) error {
	if err := c.Exchange.validate(); err != nil {
		return err
	}
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	if err := c.Audit.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (e *ExchangeConfig) validate() error {
	if e.BaseURL == "" {
		return fmt.Errorf("exchange.base_url cannot be empty")
	}
	if e.APIKey == "" || e.SecretKey == "" || e.Passphrase == "" {
		return fmt.Errorf("exchange credentials missing: set WEEX_API_KEY, WEEX_SECRET_KEY and WEEX_PASSPHRASE")
	}
	if e.TimeoutSeconds <= 0 {
		return fmt.Errorf("exchange.timeout_seconds must be > 0")
	}
	return nil
}

func (t *TradingConfig) validate() error {
	if len(t.Symbols) == 0 {
		return fmt.Errorf("trading.symbols requires at least one valid contract")
	}
	if t.MaxLeverage < 1 || t.MaxLeverage > MaxDecisionLeverage {
		return fmt.Errorf("trading.max_leverage must be in [1,%d], got %d", MaxDecisionLeverage, t.MaxLeverage)
	}
	if t.MaxRiskPerTradePct <= 0 || t.MaxRiskPerTradePct > 1 {
		return fmt.Errorf("trading.max_risk_per_trade_pct must be in (0, 1]")
	}
	if t.MaxOpenTrades < 1 {
		return fmt.Errorf("trading.max_open_trades must be >= 1")
	}
	if t.TakeProfitUSDT <= 0 || t.StopLossUSDT <= 0 {
		return fmt.Errorf("trading.take_profit_usdt and trading.stop_loss_usdt must be > 0")
	}
	if t.PollIntervalSeconds <= 0 {
		return fmt.Errorf("trading.poll_interval_seconds must be > 0")
	}
	if _, err := scheduler.CandleSpan(t.Timeframe); err != nil {
		return fmt.Errorf("trading.timeframe: %w", err)
	}
	return nil
}

func (a *AIConfig) validate() error {
	switch a.Mode {
	case AIModeRule:
		if a.MinConfidence < 0 || a.MinConfidence > 1 {
			return fmt.Errorf("ai.min_confidence must be in [0,1]")
		}
		return nil
	case AIModeLLM:
	default:
		return fmt.Errorf("ai.mode must be %q or %q, got %q", AIModeLLM, AIModeRule, a.Mode)
	}
	if strings.TrimSpace(a.APIURL) == "" {
		return fmt.Errorf("ai.api_url cannot be empty")
	}
	if a.APIKey == "" {
		return fmt.Errorf("ai.mode=llm requires OPENAI_API_KEY")
	}
	if strings.TrimSpace(a.Model) == "" {
		return fmt.Errorf("ai.model cannot be empty")
	}
	return nil
}

func (a *AuditConfig) validate() error {
	if a.MaxFailures < 1 {
		return fmt.Errorf("audit.max_failures must be >= 1")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.Telegram.Enabled {
		if n.Telegram.BotToken == "" || n.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notification enabled but missing bot_token or chat_id")
		}
	}
	return nil
}
