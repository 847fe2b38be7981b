package statushttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"aegis/internal/audit"
	"aegis/internal/position"
	"aegis/internal/trader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubPositions struct{ items []position.Position }

func (s stubPositions) Positions() []position.Position { return s.items }

func (s stubPositions) Position(symbol string) (position.Position, bool) {
	for _, p := range s.items {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return position.Position{}, false
}

type stubAudit struct {
	failures int
	tripped  bool
}

func (s stubAudit) Failures() int { return s.failures }
func (s stubAudit) Tripped() bool { return s.tripped }
func (s stubAudit) Recent() []audit.Entry {
	return []audit.Entry{{Stage: "Decision Making", Model: "gpt", OK: true}}
}

type stubCycles struct{}

func (stubCycles) LastOutcomes() []trader.Outcome {
	return []trader.Outcome{{Symbol: "cmt_btcusdt", Status: trader.StatusHold}}
}

func newTestServer(t *testing.T, a stubAudit) *Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Positions: stubPositions{items: []position.Position{{Symbol: "cmt_btcusdt", Side: position.SideShort, Size: 0.001, EntryPrice: 50000}}},
		Audit:     a,
		Cycles:    stubCycles{},
	})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresReaders(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, stubAudit{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())

	rec = get(t, newTestServer(t, stubAudit{failures: 3, tripped: true}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "halted", gjson.Get(rec.Body.String(), "status").String())
}

func TestPositionsEndpoints(t *testing.T) {
	srv := newTestServer(t, stubAudit{})
	rec := get(t, srv, "/api/positions")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "count").Int())
	assert.Equal(t, "SHORT", gjson.Get(body, "positions.0.side").String())

	rec = get(t, srv, "/api/positions/cmt_btcusdt")
	assert.Equal(t, "OPEN", gjson.Get(rec.Body.String(), "status").String())
	rec = get(t, srv, "/api/positions/cmt_ethusdt")
	assert.Equal(t, "FLAT", gjson.Get(rec.Body.String(), "status").String())
}

func TestAuditAndCycles(t *testing.T) {
	srv := newTestServer(t, stubAudit{failures: 2})
	body := get(t, srv, "/api/audit").Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "consecutive_failures").Int())
	assert.False(t, gjson.Get(body, "tripped").Bool())
	assert.Equal(t, "Decision Making", gjson.Get(body, "recent.0.stage").String())

	body = get(t, srv, "/api/cycles").Body.String()
	assert.Equal(t, "hold", gjson.Get(body, "cycles.0.status").String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, stubAudit{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aegis_halted")
}
