package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces overrides such as AEGIS_TRADING_MAX_OPEN_TRADES.
const EnvPrefix = "AEGIS"

// Credential variables keep the names the exchange and model docs use.
var credentialEnv = map[string]string{
	"exchange.api_key":    "WEEX_API_KEY",
	"exchange.secret_key": "WEEX_SECRET_KEY",
	"exchange.passphrase": "WEEX_PASSPHRASE",
	"exchange.base_url":   "WEEX_BASE_URL",
	"ai.api_key":          "OPENAI_API_KEY",
}

// Load reads the optional YAML file at path, overlays environment variables,
// applies defaults and validates. An empty or missing path is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := mergeConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	if err := bindEnv(v); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	tmp := viper.New()
	tmp.SetConfigFile(abs)
	if err := tmp.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(tmp.AllSettings())
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s failed: %w", env, err)
		}
	}
	for _, key := range overridableKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s failed: %w", key, err)
		}
	}
	return nil
}

// overridableKeys are exposed as AEGIS_<SECTION>_<KEY>; AutomaticEnv alone
// only covers keys already present in the file.
var overridableKeys = []string{
	"app.env",
	"app.log_level",
	"app.log_path",
	"app.http_addr",
	"trading.symbols",
	"trading.max_leverage",
	"trading.max_risk_per_trade_pct",
	"trading.max_open_trades",
	"trading.take_profit_usdt",
	"trading.stop_loss_usdt",
	"trading.poll_interval_seconds",
	"trading.allow_long",
	"ai.mode",
	"ai.model",
	"ai.api_url",
	"audit.max_failures",
	"notify.telegram.enabled",
	"notify.telegram.bot_token",
	"notify.telegram.chat_id",
}

func collectSettingsKeys(settings map[string]any, dest keySet) {
	if dest == nil || len(settings) == 0 {
		return
	}
	flattenConfigKeys("", settings, dest)
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	case map[interface{}]interface{}:
		for k, v := range val {
			keyStr, ok := k.(string)
			if !ok {
				continue
			}
			next := strings.ToLower(strings.TrimSpace(keyStr))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	case []any:
		if prefix != "" {
			dest.mark(prefix)
		}
	default:
		if prefix != "" {
			dest.mark(prefix)
		}
	}
}
