package decision

import (
	"context"
	"fmt"

	"aegis/internal/gateway/provider"
	"aegis/internal/logger"
	"aegis/internal/pkg/jsonutil"
)

// LLMDecider asks a chat model for the decision.
type LLMDecider struct {
	provider provider.ModelProvider
	model    string
}

func NewLLMDecider(p provider.ModelProvider, model string) *LLMDecider {
	return &LLMDecider{provider: p, model: model}
}

func (d *LLMDecider) Decide(ctx context.Context, in Context) Decision {
	out, err := d.infer(ctx, in)
	if err != nil {
		logger.Errorf("AI inference failed for %s: %v", in.Symbol, err)
		return Fallback(in, err)
	}
	return out
}

func (d *LLMDecider) infer(ctx context.Context, in Context) (Decision, error) {
	system, user, err := BuildPrompt(in)
	if err != nil {
		return Decision{}, err
	}
	logger.LogLLMRequest(d.model, in.Symbol, user, system)
	raw, err := d.provider.Call(ctx, provider.ChatPayload{
		System:     system,
		User:       user,
		ExpectJSON: true,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("LLM call failed: %w", err)
	}
	logger.LogLLMResponse(d.model, in.Symbol, jsonutil.Pretty(raw))
	dec, err := ParseDecision(raw)
	if err != nil {
		return Decision{}, fmt.Errorf("invalid AI response: %w", err)
	}
	dec.Audit = AuditPayload{
		Stage:       StageDecision,
		Model:       d.model,
		Input:       in,
		Output:      dec.Fields(),
		Explanation: dec.Reason,
	}
	return dec, nil
}
