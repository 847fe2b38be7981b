package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aegis/internal/logger"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	defaultOpenAIBase   = "https://api.openai.com/v1"
	defaultChatTimeout  = 60 * time.Second
	defaultChatRetries  = 2
	maxRetryBackoff     = 8 * time.Second
	chatCompletionsPath = "/chat/completions"
	defaultTemperature  = 0.2
)

// OpenAIChatClient speaks the OpenAI-compatible /chat/completions protocol.
type OpenAIChatClient struct {
	id          string
	model       string
	apiKey      string
	temperature float64
	maxRetries  int

	client *resty.Client
	sleep  func(context.Context, time.Duration) error
}

func NewOpenAIChatClient(cfg ModelCfg) *OpenAIChatClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if base == "" {
		base = defaultOpenAIBase
	}
	// tolerate a full endpoint pasted into the config
	base = strings.TrimSuffix(base, chatCompletionsPath)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultChatRetries
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = defaultTemperature
	}
	client := resty.New()
	client.SetBaseURL(base)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		id = "openai:" + cfg.Model
	}
	return &OpenAIChatClient{
		id:          id,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: temp,
		maxRetries:  retries,
		client:      client,
		sleep:       sleepCtx,
	}
}

func (c *OpenAIChatClient) ID() string { return c.id }

// Call sends one system+user exchange and returns the first choice content.
// 429 and 5xx responses are retried with Retry-After or exponential backoff.
func (c *OpenAIChatClient) Call(ctx context.Context, payload ChatPayload) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if payload.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": payload.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": payload.User})
	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
	}
	if payload.ExpectJSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	if payload.MaxTokens > 0 {
		body["max_tokens"] = payload.MaxTokens
	}
	logger.Debugf("[AI] POST %s%s model=%s key=%s", c.client.BaseURL, chatCompletionsPath, c.model, maskKey(c.apiKey))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.R().SetContext(ctx).SetBody(body).Post(chatCompletionsPath)
		if err != nil {
			return "", fmt.Errorf("chat request failed: %w", err)
		}
		raw := resp.Body()
		if resp.IsSuccess() {
			content := gjson.GetBytes(raw, "choices.0.message.content")
			if !content.Exists() {
				return "", errors.New("chat response has no choices")
			}
			return content.String(), nil
		}
		msg := strings.TrimSpace(gjson.GetBytes(raw, "error.message").String())
		if msg == "" {
			msg = resp.Status()
		}
		lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode(), msg)
		if !retryable(resp.StatusCode()) || attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, retryWait(resp.Header().Get("Retry-After"), attempt)); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func retryable(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

func retryWait(retryAfter string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	wait := (800 * time.Millisecond) << attempt
	if wait > maxRetryBackoff {
		wait = maxRetryBackoff
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
