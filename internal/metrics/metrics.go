// Package metrics exposes the agent's Prometheus series:
//
//	aegis_decisions_total{action,model}   decisions produced
//	aegis_guardrail_denials_total         entries rejected by the risk limits
//	aegis_orders_total{kind,result}       orders sent (entry|close, ok|failed)
//	aegis_audit_uploads_total{result}     decision-log uploads (ok|failed)
//	aegis_audit_consecutive_failures      current failure streak
//	aegis_open_positions                  locally tracked open positions
//	aegis_account_equity_usdt             last fetched equity
//	aegis_cycle_errors_total{stage}       per-symbol cycle errors and panics
//	aegis_halted                          1 once the kill switch tripped
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "aegis_decisions_total", Help: "Decisions produced"},
		[]string{"action", "model"},
	)
	GuardrailDenials = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "aegis_guardrail_denials_total", Help: "Entries rejected by risk limits"},
	)
	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "aegis_orders_total", Help: "Orders sent to the exchange"},
		[]string{"kind", "result"},
	)
	AuditUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "aegis_audit_uploads_total", Help: "Decision log uploads"},
		[]string{"result"},
	)
	AuditFailureStreak = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "aegis_audit_consecutive_failures", Help: "Consecutive decision log upload failures"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "aegis_open_positions", Help: "Locally tracked open positions"},
	)
	Equity = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "aegis_account_equity_usdt", Help: "Account equity in USDT"},
	)
	CycleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "aegis_cycle_errors_total", Help: "Per-symbol cycle errors"},
		[]string{"stage"},
	)
	Halted = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "aegis_halted", Help: "1 once the audit kill switch has tripped"},
	)
)

func init() {
	prometheus.MustRegister(
		Decisions,
		GuardrailDenials,
		Orders,
		AuditUploads,
		AuditFailureStreak,
		OpenPositions,
		Equity,
		CycleErrors,
		Halted,
	)
}

const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)
