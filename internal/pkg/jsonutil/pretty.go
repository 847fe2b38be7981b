package jsonutil

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Pretty indents valid JSON and returns anything else unchanged.
func Pretty(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return raw
	}
	return strings.TrimSpace(gjson.Get(raw, "@pretty").Raw)
}
