package weex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// CodeSuccess is the envelope code WEEX uses for an accepted request.
const CodeSuccess = "00000"

// ErrEnvelope marks a well-formed response that reports failure.
var ErrEnvelope = errors.New("weex request rejected")

// unwrap returns the payload of an enveloped response, or the whole body when
// the endpoint answers without an envelope.
func unwrap(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("weex response is not json: %.200s", string(raw))
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return res, nil
	}
	code := res.Get("code")
	if !code.Exists() {
		return res, nil
	}
	if strings.TrimSpace(code.String()) != CodeSuccess {
		return gjson.Result{}, fmt.Errorf("%w: code=%s msg=%s", ErrEnvelope, code.String(), res.Get("msg").String())
	}
	return res.Get("data"), nil
}

// requireSuccess demands a full envelope with code 00000. Bodies without a
// code, and non-object bodies, are failures.
func requireSuccess(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("weex response is not json: %.200s", string(raw))
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: not an envelope: %.200s", ErrEnvelope, string(raw))
	}
	code := res.Get("code")
	if !code.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: missing code: %.200s", ErrEnvelope, string(raw))
	}
	if strings.TrimSpace(code.String()) != CodeSuccess {
		return gjson.Result{}, fmt.Errorf("%w: code=%s msg=%s", ErrEnvelope, code.String(), res.Get("msg").String())
	}
	return res.Get("data"), nil
}

// OrderAck is the canonical result of an accepted order.
type OrderAck struct {
	OrderID   string
	ClientOID string
}

// ParseOrderAck accepts both {"code":"00000","data":{"orderId":..}} and a
// bare {"order_id":..} / {"orderId":..} body.
func ParseOrderAck(raw []byte) (OrderAck, error) {
	data, err := unwrap(raw)
	if err != nil {
		return OrderAck{}, err
	}
	id := firstString(data, "orderId", "order_id")
	if id == "" {
		return OrderAck{}, fmt.Errorf("%w: no order id in %.200s", ErrEnvelope, string(raw))
	}
	return OrderAck{
		OrderID:   id,
		ClientOID: firstString(data, "clientOid", "client_oid"),
	}, nil
}

func firstString(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstFloat(res gjson.Result, paths ...string) (float64, bool) {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return v.Float(), true
		}
	}
	return 0, false
}
