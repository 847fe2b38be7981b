package provider

import (
	"time"

	"aegis/internal/config"
)

type ModelCfg struct {
	ID          string
	APIURL      string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxRetries  int
}

// NewFromConfig builds the chat provider the LLM decision source talks to.
func NewFromConfig(cfg config.AIConfig) ModelProvider {
	return NewOpenAIChatClient(ModelCfg{
		APIURL:      cfg.APIURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout(),
		Temperature: cfg.Temperature,
		MaxRetries:  cfg.MaxRetries,
	})
}
