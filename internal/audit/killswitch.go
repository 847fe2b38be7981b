package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"aegis/internal/decision"
	"aegis/internal/logger"
	"aegis/internal/metrics"
)

// ErrKillSwitch is matched by every HaltError.
var ErrKillSwitch = errors.New("audit kill switch tripped")

// HaltError ends the trading loop after too many consecutive upload failures.
type HaltError struct {
	Failures int
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("CRITICAL: AI Logging failed %d times. Stopping bot to prevent disqualification.", e.Failures)
}

func (e *HaltError) Is(target error) bool { return target == ErrKillSwitch }

// Uploader delivers one record to the exchange.
type Uploader interface {
	UploadAILog(ctx context.Context, rec Record) error
}

// Entry is one upload attempt kept for the status API.
type Entry struct {
	At          time.Time `json:"at"`
	OrderID     string    `json:"order_id,omitempty"`
	Stage       string    `json:"stage"`
	Model       string    `json:"model"`
	Explanation string    `json:"explanation"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
}

const recentLimit = 50

type Options struct {
	MaxFailures  int
	DefaultStage string
	DefaultModel string
}

// KillSwitch uploads decision records and counts consecutive failures. Once
// the count reaches MaxFailures it stays tripped for the life of the process.
type KillSwitch struct {
	up   Uploader
	opts Options

	mu       sync.Mutex
	failures int
	tripped  bool
	recent   []Entry
	now      func() time.Time
}

func NewKillSwitch(up Uploader, opts Options) *KillSwitch {
	if opts.MaxFailures < 1 {
		opts.MaxFailures = 3
	}
	return &KillSwitch{up: up, opts: opts, now: time.Now}
}

// Record uploads the audit payload for one decision cycle. It returns nil on
// success and on tolerated failures, and a *HaltError when the threshold is hit.
func (k *KillSwitch) Record(ctx context.Context, orderID string, p decision.AuditPayload) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tripped {
		return &HaltError{Failures: k.failures}
	}

	rec := NewRecord(orderID, p, k.opts.DefaultStage, k.opts.DefaultModel)
	err := k.up.UploadAILog(ctx, rec)
	entry := Entry{
		At:          k.now().UTC(),
		OrderID:     orderID,
		Stage:       rec.Stage,
		Model:       rec.Model,
		Explanation: rec.Explanation,
		OK:          err == nil,
	}
	if err != nil {
		k.failures++
		entry.Error = err.Error()
		metrics.AuditUploads.WithLabelValues(metrics.ResultFailed).Inc()
		logger.Errorf("AI log upload failed (%d/%d) orderId=%s: %v", k.failures, k.opts.MaxFailures, orderID, err)
	} else {
		k.failures = 0
		metrics.AuditUploads.WithLabelValues(metrics.ResultOK).Inc()
		logger.Infof("AI log uploaded orderId=%s stage=%s", orderID, rec.Stage)
	}
	metrics.AuditFailureStreak.Set(float64(k.failures))
	k.remember(entry)

	if k.failures >= k.opts.MaxFailures {
		k.tripped = true
		metrics.Halted.Set(1)
		halt := &HaltError{Failures: k.failures}
		logger.Criticalf("%s", halt.Error())
		return halt
	}
	return nil
}

func (k *KillSwitch) remember(e Entry) {
	k.recent = append(k.recent, e)
	if len(k.recent) > recentLimit {
		k.recent = k.recent[len(k.recent)-recentLimit:]
	}
}

func (k *KillSwitch) Failures() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.failures
}

func (k *KillSwitch) Tripped() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tripped
}

// Recent returns the latest upload attempts, newest last.
func (k *KillSwitch) Recent() []Entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]Entry, len(k.recent))
	copy(out, k.recent)
	return out
}
