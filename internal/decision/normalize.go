package decision

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"aegis/internal/pkg/jsonutil"

	"github.com/tidwall/gjson"
)

// CleanJSON strips markdown fences and any prose around the JSON document.
func CleanJSON(raw string) string {
	if s, ok := jsonutil.ExtractJSON(raw); ok {
		return s
	}
	return strings.TrimSpace(raw)
}

// CoerceDecisionJSON accepts the loose shapes models emit (lower-case
// actions, "10x" leverage, quoted numbers) and returns canonical JSON.
func CoerceDecisionJSON(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("decision json is empty")
	}
	if !gjson.Valid(raw) {
		return nil, errors.New("decision json is malformed")
	}
	parsed := gjson.Parse(raw)
	if parsed.IsArray() {
		parsed = parsed.Get("0")
	}
	if !parsed.IsObject() {
		return nil, errors.New("decision json must be an object")
	}
	if inner := parsed.Get("decision"); inner.IsObject() {
		parsed = inner
	}
	obj, ok := parsed.Value().(map[string]any)
	if !ok {
		return nil, errors.New("decision json must be an object")
	}
	if v, ok := obj["action"].(string); ok {
		obj["action"] = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, exists := obj["leverage"]; exists {
		lev, err := parseLeverage(v)
		if err != nil {
			return nil, err
		}
		obj["leverage"] = lev
	}
	for _, k := range []string{"confidence", "size", "price"} {
		if s, ok := obj[k].(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%s is not numeric: %q", k, s)
			}
			obj[k] = f
		}
	}
	if s, ok := obj["reason"].(string); ok {
		obj["reason"] = strings.TrimSpace(s)
	}
	return json.Marshal(obj)
}

func parseLeverage(v any) (int, error) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(val), "x", ""))
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("leverage is not an integer: %q", val)
		}
		return n, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("leverage is not finite")
		}
		return int(val), nil
	default:
		return 0, fmt.Errorf("leverage has unsupported type %T", v)
	}
}

// ParseDecision runs fence stripping, coercion and schema validation on raw
// model output. The returned Decision has no audit payload attached.
func ParseDecision(raw string) (Decision, error) {
	coerced, err := CoerceDecisionJSON(CleanJSON(raw))
	if err != nil {
		return Decision{}, err
	}
	if err := validateDecisionJSON(coerced); err != nil {
		return Decision{}, err
	}
	var d Decision
	if err := json.Unmarshal(coerced, &d); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	return d, nil
}
