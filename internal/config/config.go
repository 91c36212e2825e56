package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds settings merged from flags, env, and an optional config
// file. Addresses of the pool and token contracts come from here; the
// core never hardcodes them.
type Config struct {
	RPCURL        string
	DexAddress    string
	TokenAAddress string
	TokenBAddress string
	PrivateKey    string

	SlippageBps      uint32
	HistoryWindow    uint64
	HistoryBatchSize uint64
	BlockTime        time.Duration
	PollInterval     time.Duration
	Debounce         time.Duration
	TxTimeout        time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration

	Out      string
	LogLevel string
}

// Load merges config file, environment variables, and flags.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GARDENDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("slippage-bps", uint32(100))
	v.SetDefault("history-window", uint64(10000))
	v.SetDefault("history-batch-size", uint64(2000))
	v.SetDefault("block-time", time.Second)
	v.SetDefault("poll-interval", 10*time.Second)
	v.SetDefault("debounce", 300*time.Millisecond)
	v.SetDefault("tx-timeout", 2*time.Minute)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:           v.GetString("rpc"),
		DexAddress:       v.GetString("dex-address"),
		TokenAAddress:    v.GetString("token-a-address"),
		TokenBAddress:    v.GetString("token-b-address"),
		PrivateKey:       v.GetString("private-key"),
		SlippageBps:      v.GetUint32("slippage-bps"),
		HistoryWindow:    v.GetUint64("history-window"),
		HistoryBatchSize: v.GetUint64("history-batch-size"),
		BlockTime:        v.GetDuration("block-time"),
		PollInterval:     v.GetDuration("poll-interval"),
		Debounce:         v.GetDuration("debounce"),
		TxTimeout:        v.GetDuration("tx-timeout"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		Out:              v.GetString("out"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}

// ValidateAddresses checks that the contract addresses required by
// every command are present.
func (c Config) ValidateAddresses() error {
	if c.DexAddress == "" {
		return fmt.Errorf("dex address is required")
	}
	if c.TokenAAddress == "" {
		return fmt.Errorf("token A address is required")
	}
	if c.TokenBAddress == "" {
		return fmt.Errorf("token B address is required")
	}
	return nil
}
