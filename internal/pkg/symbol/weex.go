package symbol

import "strings"

const (
	weexContractPrefix      = "cmt_"
	weexContractPrefixUpper = "CMT_"
)

// WEEX converts between internal "BTC/USDT" symbols and WEEX contract ids "cmt_btcusdt".
var WEEX Converter = weexConverter{}

type weexConverter struct{}

func (weexConverter) ToExchange(internal string) string {
	sym := Parse(internal)
	if sym.Base == "" {
		return strings.ToLower(strings.TrimSpace(internal))
	}
	return weexContractPrefix + strings.ToLower(sym.Base+sym.Quote)
}

func (weexConverter) FromExchange(raw string) string {
	return Parse(raw).Internal()
}

func (weexConverter) Format() Format { return FormatWEEX }

// NormalizeWEEX maps any accepted spelling to the WEEX contract id and
// deduplicates; entries that cannot be parsed are dropped.
func NormalizeWEEX(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !IsValid(s) {
			continue
		}
		id := WEEX.ToExchange(s)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
