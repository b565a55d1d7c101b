package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ProjectConfig holds configuration for a live account projection.
type ProjectConfig struct {
	SubgraphURL       string
	RPCURL            string
	Token             string
	Account           string
	Receiver          string
	Forwarder         string
	Flow              FlowConfig
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Timeout           time.Duration
	LogLevel          string
}

var projectDefaults = map[string]interface{}{
	"max-retries":   3,
	"retry-backoff": 500 * time.Millisecond,
	"rps":           5.0,
	"timeout":       15 * time.Second,
}

// LoadProject merges config file, environment variables, and flags into ProjectConfig.
func LoadProject(cfgFile string, flags *pflag.FlagSet) (ProjectConfig, error) {
	v, err := newViper(cfgFile, flags, projectDefaults)
	if err != nil {
		return ProjectConfig{}, err
	}
	return projectConfig(v), nil
}

func projectConfig(v *viper.Viper) ProjectConfig {
	return ProjectConfig{
		SubgraphURL:       v.GetString("subgraph"),
		RPCURL:            v.GetString("rpc"),
		Token:             v.GetString("token"),
		Account:           v.GetString("account"),
		Receiver:          v.GetString("receiver"),
		Forwarder:         v.GetString("forwarder"),
		Flow:              flowConfig(v),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RequestsPerSecond: v.GetFloat64("rps"),
		Timeout:           v.GetDuration("timeout"),
		LogLevel:          v.GetString("log-level"),
	}
}
