package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSendTextRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body["chat_id"])
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "TOKEN", "42")
	tg.backoff = func(int) time.Duration { return 0 }
	require.NoError(t, tg.SendText("hello"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTelegramSendTextGivesUpAfterThreeAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "TOKEN", "42")
	tg.backoff = func(int) time.Duration { return 0 }
	err := tg.SendText("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=500")
	assert.Equal(t, int32(telegramAttempts), atomic.LoadInt32(&calls))
}

func TestTelegramRequiresCredentials(t *testing.T) {
	assert.Error(t, NewTelegram("", "", "42").SendText("x"))
}

func TestStructuredMessageRender(t *testing.T) {
	msg := StructuredMessage{
		Icon:  "!",
		Title: "Entry",
		Sections: []MessageSection{
			{Title: "Order", Lines: []string{"symbol cmt_btcusdt", "  ", "side SELL"}},
			{Title: "Empty", Lines: []string{""}},
		},
		Footer:    "aegis",
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	out := msg.RenderMarkdown()
	assert.Contains(t, out, "! Entry")
	assert.Contains(t, out, "- symbol cmt_btcusdt")
	assert.Contains(t, out, "- side SELL")
	assert.NotContains(t, out, "Empty")
	assert.Contains(t, out, "Time: 2025-01-02 03:04:05 UTC")
}
