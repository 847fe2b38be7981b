package app

import (
	"fmt"
	"strings"
	"time"

	"aegis/internal/config"
	"aegis/internal/decision"
)

// StartupSummary is printed once before the loop starts.
type StartupSummary struct {
	Env          string
	Symbols      []string
	Timeframe    string
	PollInterval time.Duration
	DecisionMode string
	Model        string
	MaxLeverage  int
	MaxRiskPct   float64
	MaxOpen      int
	TakeProfit   float64
	StopLoss     float64
	AllowLong    bool
	AuditLimit   int
	HTTPAddr     string
}

func newStartupSummary(cfg *config.Config) *StartupSummary {
	mode, model := config.AIModeLLM, cfg.AI.Model
	if cfg.AI.IsRuleBased() {
		mode, model = config.AIModeRule, decision.ModelRule
	}
	return &StartupSummary{
		Env:          cfg.App.Env,
		Symbols:      cfg.Trading.Symbols,
		Timeframe:    cfg.Trading.Timeframe,
		PollInterval: cfg.Trading.PollInterval(),
		DecisionMode: mode,
		Model:        model,
		MaxLeverage:  cfg.Trading.MaxLeverage,
		MaxRiskPct:   cfg.Trading.MaxRiskPerTradePct,
		MaxOpen:      cfg.Trading.MaxOpenTrades,
		TakeProfit:   cfg.Trading.TakeProfitUSDT,
		StopLoss:     cfg.Trading.StopLossUSDT,
		AllowLong:    cfg.Trading.AllowLong,
		AuditLimit:   cfg.Audit.MaxFailures,
		HTTPAddr:     cfg.App.HTTPAddr,
	}
}

func (s *StartupSummary) Lines() []string {
	return []string{
		fmt.Sprintf("env: %s", s.Env),
		fmt.Sprintf("symbols (%d): %s", len(s.Symbols), formatList(s.Symbols)),
		fmt.Sprintf("timeframe: %s  poll: %s", s.Timeframe, s.PollInterval),
		fmt.Sprintf("decisions: %s (%s)", s.DecisionMode, s.Model),
		fmt.Sprintf("limits: leverage<=%dx  risk<=%.2f%% equity  open<=%d  long=%t", s.MaxLeverage, s.MaxRiskPct*100, s.MaxOpen, s.AllowLong),
		fmt.Sprintf("bracket: tp=%.2f USDT  sl=%.2f USDT", s.TakeProfit, s.StopLoss),
		fmt.Sprintf("audit: halt after %d consecutive failures", s.AuditLimit),
		fmt.Sprintf("status http: %s", s.HTTPAddr),
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	for _, line := range s.Lines() {
		fmt.Println("  " + line)
	}
	fmt.Println(strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
