package weex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// Sign returns base64(HMAC-SHA256(secret, ts + METHOD + path + query + body)).
// query includes its leading "?" when present.
func Sign(secret, timestamp, method, path, query, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + strings.ToUpper(method) + path + query + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// encodeQuery renders params with sorted keys so the signed string and the
// request line are identical.
func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return "?" + strings.Join(parts, "&")
}
