package position

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"aegis/internal/account"
)

var ErrAlreadyOpen = errors.New("position already open")

// Tracker holds at most one open position per symbol. Entries are recorded
// only after the exchange accepted the order, so there is no pending state.
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]*Position
	maxOpen   int
	now       func() time.Time
}

func NewTracker(maxOpen int) *Tracker {
	if maxOpen < 1 {
		maxOpen = 1
	}
	return &Tracker{
		positions: make(map[string]*Position),
		maxOpen:   maxOpen,
		now:       time.Now,
	}
}

func key(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

// Open records a filled entry.
func (t *Tracker) Open(p Position) error {
	k := key(p.Symbol)
	if k == "" {
		return errors.New("position symbol is empty")
	}
	if !(p.Size > 0) || !(p.EntryPrice > 0) {
		return fmt.Errorf("invalid position %s size=%v entry=%v", k, p.Size, p.EntryPrice)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.positions[k]; ok {
		return fmt.Errorf("%s: %w", k, ErrAlreadyOpen)
	}
	p.Symbol = k
	if p.OpenedAt.IsZero() {
		p.OpenedAt = t.now().UTC()
	}
	p.MarkPrice = p.EntryPrice
	p.PnLUSDT = 0
	t.positions[k] = &p
	return nil
}

// Close forgets the position after a successful close order.
func (t *Tracker) Close(symbol string) (Position, bool) {
	k := key(symbol)
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.positions[k]
	if !ok {
		return Position{}, false
	}
	delete(t.positions, k)
	return *p, true
}

func (t *Tracker) Get(symbol string) (Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.positions[key(symbol)]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// RefreshPnL marks the position to price. No-op when flat or price is not positive.
func (t *Tracker) RefreshPnL(symbol string, price float64) (float64, bool) {
	if !(price > 0) {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.positions[key(symbol)]
	if !ok {
		return 0, false
	}
	p.MarkPrice = price
	p.PnLUSDT = UnrealizedPnL(p.Side, p.EntryPrice, price, p.Size)
	return p.PnLUSDT, true
}

// HasPosition treats an exchange-reported position as open even when the
// local record is flat.
func (t *Tracker) HasPosition(symbol string, reported []account.ExchangePosition) bool {
	if t.Status(symbol) == StatusOpen {
		return true
	}
	k := key(symbol)
	for _, p := range reported {
		if key(p.Symbol) == k && p.Size > 0 {
			return true
		}
	}
	return false
}

// OpenCount is the size of the union of local and exchange-reported open symbols.
func (t *Tracker) OpenCount(reported []account.ExchangePosition) int {
	return len(t.openSet(reported))
}

func (t *Tracker) openSet(reported []account.ExchangePosition) map[string]struct{} {
	t.mu.RLock()
	set := make(map[string]struct{}, len(t.positions)+len(reported))
	for k := range t.positions {
		set[k] = struct{}{}
	}
	t.mu.RUnlock()
	for _, p := range reported {
		if k := key(p.Symbol); k != "" && p.Size > 0 {
			set[k] = struct{}{}
		}
	}
	return set
}

// Admit reports whether symbol may be evaluated this cycle. An open symbol is
// always admitted so it can be managed; a flat one only below the cap.
func (t *Tracker) Admit(symbol string, reported []account.ExchangePosition) bool {
	set := t.openSet(reported)
	if _, ok := set[key(symbol)]; ok {
		return true
	}
	return len(set) < t.maxOpen
}

func (t *Tracker) MaxOpen() int { return t.maxOpen }

func (t *Tracker) Status(symbol string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.positions[key(symbol)]; ok {
		return StatusOpen
	}
	return StatusFlat
}

// Snapshot copies all open positions ordered by symbol.
func (t *Tracker) Snapshot() []Position {
	t.mu.RLock()
	out := make([]Position, 0, len(t.positions))
	for _, p := range t.positions {
		out = append(out, *p)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
