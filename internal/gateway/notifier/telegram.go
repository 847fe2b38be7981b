package notifier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTelegramAPI = "https://api.telegram.org"
	telegramAttempts   = 3
)

// Telegram pushes entry, close and halt notices to one chat.
type Telegram struct {
	BotToken string
	ChatID   string

	client  *resty.Client
	backoff func(attempt int) time.Duration
}

func NewTelegram(apiURL, botToken, chatID string) *Telegram {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = defaultTelegramAPI
	}
	client := resty.New()
	client.SetBaseURL(apiURL)
	client.SetTimeout(15 * time.Second)
	client.SetHeader("Content-Type", "application/json")
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		client:   client,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt+1) * time.Second },
	}
}

// SendText posts a Markdown message, retrying up to three times.
func (t *Telegram) SendText(text string) error {
	if t == nil || t.BotToken == "" || t.ChatID == "" {
		return errors.New("telegram config incomplete")
	}
	payload := map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	var lastErr error
	for i := 0; i < telegramAttempts; i++ {
		resp, err := t.client.R().
			SetBody(payload).
			Post(fmt.Sprintf("/bot%s/sendMessage", t.BotToken))
		switch {
		case err != nil:
			lastErr = err
		case resp.IsSuccess():
			return nil
		default:
			lastErr = fmt.Errorf("telegram status=%d", resp.StatusCode())
		}
		if i < telegramAttempts-1 && t.backoff != nil {
			time.Sleep(t.backoff(i))
		}
	}
	return lastErr
}
