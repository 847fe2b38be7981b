package weex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aegis/internal/audit"
	"aegis/internal/config"
	"aegis/internal/decision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(config.ExchangeConfig{
		BaseURL:        srv.URL,
		APIKey:         "key",
		SecretKey:      "secret",
		Passphrase:     "pass",
		TimeoutSeconds: 5,
		RatePerSecond:  1000,
	})
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestSignKnownVector(t *testing.T) {
	sig := Sign("secret", "1700000000000", "get", "/capi/v2/account/assets", "", "")
	assert.Equal(t, Sign("secret", "1700000000000", "GET", "/capi/v2/account/assets", "", ""), sig)
	assert.NotEqual(t, sig, Sign("other", "1700000000000", "GET", "/capi/v2/account/assets", "", ""))
	assert.Equal(t, "?a=1&b=x+y", encodeQuery(map[string]string{"b": "x y", "a": "1"}))
}

func TestParseOrderAckShapes(t *testing.T) {
	ack, err := ParseOrderAck([]byte(`{"code":"00000","msg":"success","data":{"orderId":"123","clientOid":"c1"}}`))
	require.NoError(t, err)
	assert.Equal(t, OrderAck{OrderID: "123", ClientOID: "c1"}, ack)

	ack, err = ParseOrderAck([]byte(`{"order_id":"456","client_oid":"c2"}`))
	require.NoError(t, err)
	assert.Equal(t, "456", ack.OrderID)

	ack, err = ParseOrderAck([]byte(`{"orderId":789}`))
	require.NoError(t, err)
	assert.Equal(t, "789", ack.OrderID)

	_, err = ParseOrderAck([]byte(`{"code":"40001","msg":"bad"}`))
	assert.ErrorIs(t, err, ErrEnvelope)

	_, err = ParseOrderAck([]byte(`{"code":"00000","data":{}}`))
	assert.ErrorIs(t, err, ErrEnvelope)

	_, err = ParseOrderAck([]byte(`not json`))
	assert.Error(t, err)
}

func TestPrivateGetIsSigned(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAssets, r.URL.Path)
		assert.Equal(t, "futures", r.URL.Query().Get("accountType"))
		assert.Equal(t, "key", r.Header.Get("ACCESS-KEY"))
		assert.Equal(t, "pass", r.Header.Get("ACCESS-PASSPHRASE"))
		assert.Equal(t, "1700000000000", r.Header.Get("ACCESS-TIMESTAMP"))
		assert.Equal(t, Sign("secret", "1700000000000", "GET", PathAssets, "?accountType=futures", ""), r.Header.Get("ACCESS-SIGN"))
		_, _ = w.Write([]byte(`{"code":"00000","data":[{"coinName":"BTC","equity":"1"},{"coinName":"USDT","equity":"1000.5","available":"800"}]}`))
	})
	equity, avail, err := c.Assets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.5, equity)
	assert.Equal(t, 800.0, avail)
}

func TestAssetsObjectPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"00000","data":{"equity":"500","availableBalance":"250"}}`))
	})
	equity, avail, err := c.Assets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, equity)
	assert.Equal(t, 250.0, avail)
}

func TestPositionsParsing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"symbol":"CMT_BTCUSDT","side":"short","size":"0.01","open_avg_price":"50000","leverage":"5"},{"symbol":"cmt_ethusdt","side":"LONG","size":"0"}]`))
	})
	ps, err := c.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "cmt_btcusdt", ps[0].Symbol)
	assert.Equal(t, "SHORT", ps[0].Side)
	assert.Equal(t, 0.01, ps[0].Size)
	assert.Equal(t, 50000.0, ps[0].EntryPrice)
	assert.Equal(t, 5, ps[0].Leverage)
}

func TestMarketEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("ACCESS-SIGN"))
		switch r.URL.Path {
		case PathTicker:
			assert.Equal(t, "cmt_btcusdt", r.URL.Query().Get("symbol"))
			_, _ = w.Write([]byte(`{"symbol":"cmt_btcusdt","last":"50123.5"}`))
		case PathCandles:
			assert.Equal(t, "5m", r.URL.Query().Get("granularity"))
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[["2000","2","3","1","2.5","10"],["1000","1","2","0.5","1.5","9"],["bad"]]`))
		case PathFundingRate:
			_, _ = w.Write([]byte(`[{"symbol":"cmt_btcusdt","fundingRate":"0.0001"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()
	last, err := c.Ticker(ctx, "cmt_btcusdt")
	require.NoError(t, err)
	assert.Equal(t, 50123.5, last)

	candles, err := c.Candles(ctx, "cmt_btcusdt", "5m", 50)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1000), candles[0].OpenTime)
	assert.Equal(t, 2.5, candles[1].Close)

	rate, err := c.FundingRate(ctx, "cmt_btcusdt")
	require.NoError(t, err)
	assert.Equal(t, 0.0001, rate)
}

func TestHTTPErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Ticker(context.Background(), "cmt_btcusdt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
}

func TestPlaceOrderBodyAndSignature(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, Sign("secret", "1700000000000", "POST", PathPlaceOrder, "", string(raw)), r.Header.Get("ACCESS-SIGN"))
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "2", body["type"])
		assert.Equal(t, "0.01", body["size"])
		assert.Equal(t, "1", body["match_price"])
		assert.Equal(t, "49000", body["presetTakeProfitPrice"])
		assert.Equal(t, "50500", body["presetStopLossPrice"])
		_, _ = w.Write([]byte(`{"code":"00000","data":{"orderId":"777"}}`))
	})
	ack, err := c.PlaceOrder(context.Background(), PlaceOrderRequest{
		Symbol: "cmt_btcusdt", Type: OpenShort, Size: 0.01, ClientOID: "c-1", TakeProfit: 49000, StopLoss: 50500,
	})
	require.NoError(t, err)
	assert.Equal(t, "777", ack.OrderID)
	assert.Equal(t, "c-1", ack.ClientOID)
}

func TestOrderTypeFor(t *testing.T) {
	assert.Equal(t, OpenLong, OrderTypeFor(true, false))
	assert.Equal(t, OpenShort, OrderTypeFor(false, false))
	assert.Equal(t, CloseLong, OrderTypeFor(true, true))
	assert.Equal(t, CloseShort, OrderTypeFor(false, true))
}

func TestUploadAILog(t *testing.T) {
	var got map[string]any
	code := "00000"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathUploadAILog, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"code":"` + code + `","msg":"x"}`))
	})
	rec := audit.Record{Stage: "Decision Making", Model: "m", Input: map[string]any{}, Output: map[string]any{}, Explanation: "e"}
	require.NoError(t, c.UploadAILog(context.Background(), rec))
	assert.Contains(t, got, "orderId")
	assert.Nil(t, got["orderId"])

	code = "50001"
	err := c.UploadAILog(context.Background(), rec)
	assert.ErrorIs(t, err, ErrEnvelope)
}

func TestUploadAILogRejectsNonEnvelopeBodies(t *testing.T) {
	rec := audit.Record{Stage: "Decision Making", Model: "m", Explanation: "e"}
	for _, body := range []string{`{}`, `{"msg":"x"}`, `{"msg":"invalid signature"}`, `"error"`, `[]`, `{"code":""}`} {
		t.Run(body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			assert.ErrorIs(t, c.UploadAILog(context.Background(), rec), ErrEnvelope)
		})
	}
}

func TestKillSwitchTripsOnNonEnvelopeUploads(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"msg":"invalid signature"}`))
	})
	ks := audit.NewKillSwitch(c, audit.Options{MaxFailures: 3, DefaultStage: "Decision Making", DefaultModel: "m"})
	p := decision.AuditPayload{Stage: decision.StageDecision, Model: "m", Explanation: "quiet market"}

	require.NoError(t, ks.Record(context.Background(), "", p))
	require.NoError(t, ks.Record(context.Background(), "", p))
	assert.Equal(t, 2, ks.Failures())
	err := ks.Record(context.Background(), "", p)
	assert.ErrorIs(t, err, audit.ErrKillSwitch)
	assert.True(t, ks.Tripped())

	assert.ErrorIs(t, ks.Record(context.Background(), "", p), audit.ErrKillSwitch)
	assert.Equal(t, 3, calls)
}

func TestSetLeverageRequiresEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	assert.ErrorIs(t, c.SetLeverage(context.Background(), "cmt_btcusdt", 5), ErrEnvelope)
}

func TestSetLeverageEnvelopeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"40015","msg":"leverage too high"}`))
	})
	assert.ErrorIs(t, c.SetLeverage(context.Background(), "cmt_btcusdt", 50), ErrEnvelope)
}
