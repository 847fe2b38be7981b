package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"aegis/internal/bracket"
	"aegis/internal/gateway/weex"
	"aegis/internal/logger"
	"aegis/internal/metrics"
	"aegis/internal/pkg/circuit"
	"aegis/internal/position"

	"github.com/google/uuid"
)

// ErrOrderFailed wraps every reason an order did not produce an order id.
var ErrOrderFailed = errors.New("order failed")

// Exchange is the order surface of the venue.
type Exchange interface {
	SetLeverage(ctx context.Context, symbol string, leverage int) error
	PlaceOrder(ctx context.Context, req weex.PlaceOrderRequest) (weex.OrderAck, error)
}

const (
	breakerThreshold = 5
	breakerCooldown  = 2 * time.Minute
)

type Executor struct {
	ex      Exchange
	breaker *circuit.Breaker
	newOID  func() string
}

func New(ex Exchange) *Executor {
	return &Executor{
		ex:      ex,
		breaker: circuit.New("orders", breakerThreshold, breakerCooldown),
		newOID:  func() string { return "aegis-" + uuid.NewString() },
	}
}

// Submit sends o at market and returns the exchange order id. Any failure is
// returned as an error wrapping ErrOrderFailed; it never panics.
func (e *Executor) Submit(ctx context.Context, o bracket.Order) (orderID string, err error) {
	kind := "entry"
	if o.Close {
		kind = "close"
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrOrderFailed, r)
		}
		if err != nil {
			metrics.Orders.WithLabelValues(kind, metrics.ResultFailed).Inc()
			logger.Errorf("%s order %s failed: %v", kind, o.Symbol, err)
			return
		}
		metrics.Orders.WithLabelValues(kind, metrics.ResultOK).Inc()
	}()

	if o.Size <= 0 || math.IsNaN(o.Size) || math.IsInf(o.Size, 0) {
		return "", fmt.Errorf("%w: invalid size %v", ErrOrderFailed, o.Size)
	}
	if !e.breaker.Allow() {
		return "", fmt.Errorf("%w: order circuit open", ErrOrderFailed)
	}
	logger.Infof("placing %s %s order for %s: size=%v lev=%dx", kind, o.OrderSide(), o.Symbol, o.Size, o.Leverage)

	if !o.Close && o.Leverage > 0 {
		if lerr := e.ex.SetLeverage(ctx, o.Symbol, o.Leverage); lerr != nil {
			logger.Warnf("failed to set leverage %dx on %s: %v", o.Leverage, o.Symbol, lerr)
		}
	}

	req := weex.PlaceOrderRequest{
		Symbol:    o.Symbol,
		Type:      weex.OrderTypeFor(o.Side == position.SideLong, o.Close),
		Size:      o.Size,
		ClientOID: e.newOID(),
	}
	if !o.Close {
		req.TakeProfit = o.TakeProfit
		req.StopLoss = o.StopLoss
	}
	ack, perr := e.ex.PlaceOrder(ctx, req)
	if perr != nil {
		e.breaker.RecordFailure()
		return "", fmt.Errorf("%w: %v", ErrOrderFailed, perr)
	}
	e.breaker.RecordSuccess()
	logger.Infof("order executed: %s %s id=%s", kind, o.Symbol, ack.OrderID)
	return ack.OrderID, nil
}
