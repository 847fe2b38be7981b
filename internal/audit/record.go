package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"aegis/internal/decision"
	"aegis/internal/pkg/text"
)

const (
	MaxExplanation     = 1000
	DefaultExplanation = "No explanation provided"
)

// Record is the body of one decision-log upload.
type Record struct {
	OrderID     *string        `json:"orderId"`
	Stage       string         `json:"stage"`
	Model       string         `json:"model"`
	Input       map[string]any `json:"input"`
	Output      map[string]any `json:"output"`
	Explanation string         `json:"explanation"`
}

// NewRecord normalizes a decision's audit payload. Missing stage and model
// take the configured defaults; an empty orderID is sent as null.
func NewRecord(orderID string, p decision.AuditPayload, stage, model string) Record {
	rec := Record{
		Stage:       firstNonEmpty(p.Stage, stage, decision.StageDecision),
		Model:       firstNonEmpty(p.Model, model),
		Input:       toObject(p.Input),
		Output:      toObject(p.Output),
		Explanation: text.Truncate(firstNonEmpty(p.Explanation, DefaultExplanation), MaxExplanation),
	}
	if id := strings.TrimSpace(orderID); id != "" {
		rec.OrderID = &id
	}
	return rec
}

// toObject keeps objects and wraps everything else as {"raw": ...}.
func toObject(v any) map[string]any {
	switch val := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return val
	case string:
		return map[string]any{"raw": val}
	case fmt.Stringer:
		return map[string]any{"raw": val.String()}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"raw": fmt.Sprintf("%v", v)}
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return map[string]any{"raw": string(raw)}
	}
	return obj
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
