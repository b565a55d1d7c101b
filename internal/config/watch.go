package config

import (
	"time"

	"github.com/spf13/pflag"
)

// WatchConfig holds configuration for the polling watcher.
type WatchConfig struct {
	ProjectConfig
	Interval       time.Duration
	Out            string
	PGDSN          string
	PendingTx      string
	TxPollInterval time.Duration
	MetricsAddr    string
}

// LoadWatch merges config file, environment variables, and flags into WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	defaults := map[string]interface{}{
		"interval":         10 * time.Second,
		"out":              "./data/projections.jsonl",
		"tx-poll-interval": 2 * time.Second,
	}
	for key, value := range projectDefaults {
		defaults[key] = value
	}

	v, err := newViper(cfgFile, flags, defaults)
	if err != nil {
		return WatchConfig{}, err
	}
	return WatchConfig{
		ProjectConfig:  projectConfig(v),
		Interval:       v.GetDuration("interval"),
		Out:            v.GetString("out"),
		PGDSN:          v.GetString("pg-dsn"),
		PendingTx:      v.GetString("pending-tx"),
		TxPollInterval: v.GetDuration("tx-poll-interval"),
		MetricsAddr:    v.GetString("metrics-addr"),
	}, nil
}
