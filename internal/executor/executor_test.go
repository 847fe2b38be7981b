package executor

import (
	"context"
	"errors"
	"math"
	"testing"

	"aegis/internal/bracket"
	"aegis/internal/gateway/weex"
	"aegis/internal/position"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExchange struct {
	mock.Mock
}

func (m *mockExchange) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	return m.Called(ctx, symbol, leverage).Error(0)
}

func (m *mockExchange) PlaceOrder(ctx context.Context, req weex.PlaceOrderRequest) (weex.OrderAck, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(weex.OrderAck), args.Error(1)
}

func entry() bracket.Order {
	return bracket.Order{Symbol: "cmt_btcusdt", Side: position.SideShort, Size: 0.01, Leverage: 5, Price: 50000, TakeProfit: 49000, StopLoss: 50500}
}

func TestSubmitEntrySetsLeverageThenPlaces(t *testing.T) {
	ex := new(mockExchange)
	ex.On("SetLeverage", mock.Anything, "cmt_btcusdt", 5).Return(nil).Once()
	ex.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(r weex.PlaceOrderRequest) bool {
		return r.Type == weex.OpenShort && r.TakeProfit == 49000 && r.StopLoss == 50500 && r.ClientOID == "oid"
	})).Return(weex.OrderAck{OrderID: "9001"}, nil).Once()

	e := New(ex)
	e.newOID = func() string { return "oid" }
	id, err := e.Submit(context.Background(), entry())
	require.NoError(t, err)
	assert.Equal(t, "9001", id)
	ex.AssertExpectations(t)
}

func TestSubmitLeverageFailureOnlyWarns(t *testing.T) {
	ex := new(mockExchange)
	ex.On("SetLeverage", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("denied"))
	ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(weex.OrderAck{OrderID: "1"}, nil)

	id, err := New(ex).Submit(context.Background(), entry())
	require.NoError(t, err)
	assert.Equal(t, "1", id)
}

func TestSubmitCloseSkipsLeverageAndBracket(t *testing.T) {
	ex := new(mockExchange)
	ex.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(r weex.PlaceOrderRequest) bool {
		return r.Type == weex.CloseShort && r.TakeProfit == 0 && r.StopLoss == 0 && r.Size == 0.01
	})).Return(weex.OrderAck{OrderID: "2"}, nil).Once()

	o := entry()
	o.Close = true
	id, err := New(ex).Submit(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "2", id)
	ex.AssertNotCalled(t, "SetLeverage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRejectsInvalidSizeWithoutNetwork(t *testing.T) {
	ex := new(mockExchange)
	for _, size := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		o := entry()
		o.Size = size
		_, err := New(ex).Submit(context.Background(), o)
		assert.ErrorIs(t, err, ErrOrderFailed)
	}
	ex.AssertNotCalled(t, "SetLeverage", mock.Anything, mock.Anything, mock.Anything)
	ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestSubmitWrapsTransportError(t *testing.T) {
	ex := new(mockExchange)
	ex.On("SetLeverage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(weex.OrderAck{}, errors.New("connection reset"))

	id, err := New(ex).Submit(context.Background(), entry())
	assert.Empty(t, id)
	assert.ErrorIs(t, err, ErrOrderFailed)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSubmitRecoversPanic(t *testing.T) {
	ex := new(mockExchange)
	ex.On("SetLeverage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ex.On("PlaceOrder", mock.Anything, mock.Anything).Panic("boom")

	_, err := New(ex).Submit(context.Background(), entry())
	assert.ErrorIs(t, err, ErrOrderFailed)
}

func TestSubmitStopsWhenCircuitOpen(t *testing.T) {
	ex := new(mockExchange)
	ex.On("SetLeverage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(weex.OrderAck{}, errors.New("down"))

	e := New(ex)
	for i := 0; i < breakerThreshold; i++ {
		_, _ = e.Submit(context.Background(), entry())
	}
	_, err := e.Submit(context.Background(), entry())
	require.ErrorIs(t, err, ErrOrderFailed)
	assert.Contains(t, err.Error(), "circuit open")
	ex.AssertNumberOfCalls(t, "PlaceOrder", breakerThreshold)
}
