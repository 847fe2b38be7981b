package decision

import (
	"context"
	"encoding/json"
	"fmt"
)

// Decider turns a cycle context into a Decision. Implementations never fail:
// any internal error is folded into a fallback HOLD.
type Decider interface {
	Decide(ctx context.Context, in Context) Decision
}

// Fallback is the HOLD produced when inference fails.
func Fallback(in Context, err error) Decision {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	raw, mErr := json.Marshal(in)
	input := string(raw)
	if mErr != nil {
		input = fmt.Sprintf("%+v", in)
	}
	return Decision{
		Action:     ActionHold,
		Confidence: 0,
		Leverage:   1,
		Size:       0,
		Reason:     "System Error: " + msg,
		Audit: AuditPayload{
			Stage:       StageError,
			Model:       ModelSystem,
			Input:       input,
			Output:      map[string]any{"error": msg},
			Explanation: "Fallback due to inference exception",
		},
	}
}

// Hold is a deliberate no-op decision from a healthy source.
func Hold(model string, in Context, reason string) Decision {
	d := Decision{Action: ActionHold, Leverage: 1, Reason: reason}
	d.Audit = AuditPayload{
		Stage:       StageDecision,
		Model:       model,
		Input:       in,
		Output:      d.Fields(),
		Explanation: reason,
	}
	return d
}
