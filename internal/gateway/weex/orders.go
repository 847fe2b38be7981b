package weex

import (
	"context"
	"fmt"

	"aegis/internal/pkg/convert"
)

const PathPlaceOrder = "/capi/v2/order/placeOrder"

// OrderType is the WEEX open/close direction code.
type OrderType string

const (
	OpenLong   OrderType = "1"
	OpenShort  OrderType = "2"
	CloseLong  OrderType = "3"
	CloseShort OrderType = "4"
)

// OrderTypeFor maps a position side and intent to the venue code.
func OrderTypeFor(long, closing bool) OrderType {
	switch {
	case long && !closing:
		return OpenLong
	case !long && !closing:
		return OpenShort
	case long && closing:
		return CloseLong
	default:
		return CloseShort
	}
}

type PlaceOrderRequest struct {
	Symbol     string
	Type       OrderType
	Size       float64
	ClientOID  string
	TakeProfit float64 // 0 omits the preset
	StopLoss   float64
}

// PlaceOrder sends a market order and normalizes the acknowledgement.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderAck, error) {
	body := map[string]any{
		"symbol":      req.Symbol,
		"client_oid":  req.ClientOID,
		"size":        convert.FormatFloat(req.Size),
		"type":        string(req.Type),
		"order_type":  "0",
		"match_price": "1",
	}
	if req.TakeProfit > 0 {
		body["presetTakeProfitPrice"] = convert.FormatFloat(req.TakeProfit)
	}
	if req.StopLoss > 0 {
		body["presetStopLossPrice"] = convert.FormatFloat(req.StopLoss)
	}
	raw, err := c.post(ctx, PathPlaceOrder, body)
	if err != nil {
		return OrderAck{}, err
	}
	ack, err := ParseOrderAck(raw)
	if err != nil {
		return OrderAck{}, fmt.Errorf("place order %s: %w", req.Symbol, err)
	}
	if ack.ClientOID == "" {
		ack.ClientOID = req.ClientOID
	}
	return ack, nil
}
