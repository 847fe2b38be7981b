package trader

import (
	"sort"
	"strings"
	"sync"
	"time"

	"aegis/internal/decision"
)

// Status is how a symbol cycle ended.
type Status string

const (
	StatusSkippedMarket   Status = "skipped_market"
	StatusSkippedCapacity Status = "skipped_capacity"
	StatusHold            Status = "hold"
	StatusDenied          Status = "denied"
	StatusGated           Status = "gated"
	StatusNoBracket       Status = "no_bracket"
	StatusOrderFailed     Status = "order_failed"
	StatusOpened          Status = "opened"
	StatusClosed          Status = "closed"
)

// Outcome summarizes one symbol cycle for logs and the status API.
type Outcome struct {
	Symbol  string          `json:"symbol"`
	Status  Status          `json:"status"`
	Action  decision.Action `json:"action,omitempty"`
	OrderID string          `json:"order_id,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	TraceID string          `json:"trace_id"`
	At      time.Time       `json:"at"`
}

// outcomeCache keeps the latest outcome per symbol.
type outcomeCache struct {
	mu   sync.RWMutex
	data map[string]Outcome
}

func newOutcomeCache() *outcomeCache {
	return &outcomeCache{data: make(map[string]Outcome)}
}

func (c *outcomeCache) Set(o Outcome) {
	if c == nil {
		return
	}
	sym := strings.ToLower(strings.TrimSpace(o.Symbol))
	if sym == "" {
		return
	}
	c.mu.Lock()
	c.data[sym] = o
	c.mu.Unlock()
}

func (c *outcomeCache) Snapshot() []Outcome {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	out := make([]Outcome, 0, len(c.data))
	for _, o := range c.data {
		out = append(out, o)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
