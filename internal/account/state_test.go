package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	equity    []float64
	call      int
	positions []ExchangePosition
	posErr    error
}

func (s *stubSource) Assets(context.Context) (float64, float64, error) {
	e := s.equity[s.call]
	s.call++
	return e, e / 2, nil
}

func (s *stubSource) Positions(context.Context) ([]ExchangePosition, error) {
	return s.positions, s.posErr
}

func TestServiceStateIsFreshEachCycle(t *testing.T) {
	src := &stubSource{
		equity:    []float64{1000, 900},
		positions: []ExchangePosition{{Symbol: " CMT_BTCUSDT ", Side: "short", Size: 0.01}},
	}
	svc := NewService(src)

	st, err := svc.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, st.Equity)
	assert.Equal(t, 500.0, st.Balance)
	assert.Zero(t, st.Drawdown)
	assert.Equal(t, "cmt_btcusdt", st.OpenPositions[0].Symbol)
	assert.Equal(t, "SHORT", st.OpenPositions[0].Side)

	st, err = svc.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 900.0, st.Equity)
	assert.Zero(t, st.Drawdown)
}

func TestServiceStatePositionsError(t *testing.T) {
	svc := NewService(&stubSource{equity: []float64{1}, posErr: errors.New("down")})
	_, err := svc.State(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open positions")
}

func TestStateSymbolsAndFind(t *testing.T) {
	st := State{OpenPositions: []ExchangePosition{
		{Symbol: "cmt_btcusdt", Size: 1},
		{Symbol: "cmt_btcusdt", Size: 2},
		{Symbol: "cmt_ethusdt", Size: 0},
		{Symbol: "cmt_solusdt", Size: 3},
	}}
	assert.Equal(t, []string{"cmt_btcusdt", "cmt_solusdt"}, st.Symbols())
	p, ok := st.Find("CMT_SOLUSDT")
	require.True(t, ok)
	assert.Equal(t, 3.0, p.Size)
	_, ok = st.Find("cmt_ethusdt")
	assert.False(t, ok)
}
