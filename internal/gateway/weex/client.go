package weex

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aegis/internal/config"
	"aegis/internal/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api-contract.weex.com"

// Client is a signed REST client for the WEEX contract API.
type Client struct {
	apiKey     string
	secretKey  string
	passphrase string

	http    *resty.Client
	limiter *rate.Limiter
	now     func() time.Time
}

func New(cfg config.ExchangeConfig) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 8
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	httpc := resty.New()
	httpc.SetBaseURL(base)
	httpc.SetTimeout(timeout)
	httpc.SetHeader("Content-Type", "application/json")
	httpc.SetHeader("locale", "en-US")
	return &Client{
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		passphrase: cfg.Passphrase,
		http:       httpc,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		now:        time.Now,
	}
}

func (c *Client) timestamp() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}

func (c *Client) authHeaders(sig, ts string) map[string]string {
	return map[string]string{
		"ACCESS-KEY":        c.apiKey,
		"ACCESS-SIGN":       sig,
		"ACCESS-TIMESTAMP":  ts,
		"ACCESS-PASSPHRASE": c.passphrase,
	}
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, private bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	query := encodeQuery(params)
	req := c.http.R().SetContext(ctx)
	if private {
		ts := c.timestamp()
		req.SetHeaders(c.authHeaders(Sign(c.secretKey, ts, "GET", path, query, ""), ts))
	}
	resp, err := req.Get(path + query)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("GET %s: status=%d body=%.200s", path, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", path, err)
	}
	ts := c.timestamp()
	logger.Debugf("weex POST %s body=%s", path, payload)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.authHeaders(Sign(c.secretKey, ts, "POST", path, "", string(payload)), ts)).
		SetBody(payload).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("POST %s: status=%d body=%.200s", path, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
