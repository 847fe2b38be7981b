package bracket

import (
	"testing"

	"aegis/internal/decision"
	"aegis/internal/position"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryShortBracket(t *testing.T) {
	p := NewPlanner(10, 5)
	o, err := p.Entry("cmt_btcusdt", 100, decision.Decision{Action: decision.ActionSell, Size: 2, Leverage: 5})
	require.NoError(t, err)
	assert.Equal(t, position.SideShort, o.Side)
	assert.Equal(t, 95.0, o.TakeProfit)
	assert.Equal(t, 102.5, o.StopLoss)
	assert.Equal(t, decision.ActionSell, o.OrderSide())
	assert.False(t, o.Close)
}

func TestEntryLongBracket(t *testing.T) {
	p := NewPlanner(10, 5)
	o, err := p.Entry("cmt_btcusdt", 100, decision.Decision{Action: decision.ActionBuy, Size: 2, Leverage: 5})
	require.NoError(t, err)
	assert.Equal(t, 105.0, o.TakeProfit)
	assert.Equal(t, 97.5, o.StopLoss)
	assert.Equal(t, decision.ActionBuy, o.OrderSide())
}

func TestEntryRejectsNonPositiveTakeProfit(t *testing.T) {
	// 10 USDT over 0.05 units is 200 price points, more than the price itself
	_, err := NewPlanner(10, 5).Entry("cmt_dogeusdt", 0.1, decision.Decision{Action: decision.ActionSell, Size: 0.05})
	assert.ErrorIs(t, err, ErrNoBracket)
}

func TestEntryRejectsBadInputs(t *testing.T) {
	p := NewPlanner(10, 5)
	_, err := p.Entry("x", 0, decision.Decision{Action: decision.ActionSell, Size: 1})
	assert.ErrorIs(t, err, ErrNoBracket)
	_, err = p.Entry("x", 100, decision.Decision{Action: decision.ActionSell, Size: 0})
	assert.ErrorIs(t, err, ErrNoBracket)
	_, err = p.Entry("x", 100, decision.Decision{Action: decision.ActionHold, Size: 1})
	assert.Error(t, err)
}

func TestCloseUsesTrackedSize(t *testing.T) {
	pos := position.Position{Symbol: "cmt_ethusdt", Side: position.SideShort, Size: 0.3, Leverage: 4}
	o := NewPlanner(10, 5).Close(pos, 2000)
	assert.True(t, o.Close)
	assert.Equal(t, 0.3, o.Size)
	assert.Equal(t, decision.ActionBuy, o.OrderSide())

	pos.Side = position.SideLong
	assert.Equal(t, decision.ActionSell, NewPlanner(10, 5).Close(pos, 2000).OrderSide())
}

func TestEntryRefusedWhenSizeTooSmallForTargets(t *testing.T) {
	p := NewPlanner(10, 1)
	_, err := p.Entry("cmt_btcusdt", 50000, decision.Decision{Action: decision.ActionSell, Size: 0.0002, Leverage: 5})
	require.ErrorIs(t, err, ErrNoBracket)
}
