package account

import (
	"context"
	"fmt"
	"strings"
)

// ExchangePosition is an open position as the exchange reports it.
type ExchangePosition struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"` // LONG | SHORT
	Size       float64 `json:"size"`
	EntryPrice float64 `json:"entry_price"`
	Leverage   int     `json:"leverage"`
}

// State is the account view fetched fresh every cycle.
type State struct {
	Equity        float64            `json:"equity"`
	Balance       float64            `json:"balance"`
	Drawdown      float64            `json:"drawdown"`
	OpenPositions []ExchangePosition `json:"open_positions"`
}

// Symbols lists the distinct contracts the exchange reports as open.
func (s State) Symbols() []string {
	seen := make(map[string]struct{}, len(s.OpenPositions))
	out := make([]string, 0, len(s.OpenPositions))
	for _, p := range s.OpenPositions {
		sym := strings.ToLower(strings.TrimSpace(p.Symbol))
		if sym == "" || p.Size <= 0 {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// Find returns the exchange-reported position for symbol.
func (s State) Find(symbol string) (ExchangePosition, bool) {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	for _, p := range s.OpenPositions {
		if strings.EqualFold(p.Symbol, symbol) && p.Size > 0 {
			return p, true
		}
	}
	return ExchangePosition{}, false
}

// Source is the exchange account surface.
type Source interface {
	Assets(ctx context.Context) (equity, available float64, err error)
	Positions(ctx context.Context) ([]ExchangePosition, error)
}

// Service fetches a fresh account view on every call and keeps nothing
// between cycles. Drawdown is always reported as 0.
type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// State fetches assets and positions. Either failure fails the call; the
// caller must not act on a partial view.
func (s *Service) State(ctx context.Context) (State, error) {
	equity, available, err := s.src.Assets(ctx)
	if err != nil {
		return State{}, fmt.Errorf("fetch account assets: %w", err)
	}
	positions, err := s.src.Positions(ctx)
	if err != nil {
		return State{}, fmt.Errorf("fetch open positions: %w", err)
	}
	for i := range positions {
		positions[i].Symbol = strings.ToLower(strings.TrimSpace(positions[i].Symbol))
		positions[i].Side = strings.ToUpper(strings.TrimSpace(positions[i].Side))
	}
	return State{
		Equity:        equity,
		Balance:       available,
		OpenPositions: positions,
	}, nil
}
