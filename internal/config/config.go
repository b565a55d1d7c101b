package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlowConfig describes the proposed flow change shared by every command.
type FlowConfig struct {
	// FlowRate is the outgoing rate in token base units per second.
	FlowRate string
	// Amount is a token amount per Unit, used when FlowRate is empty.
	Amount string
	Unit   string
	TopUp  string
	// Now is unix seconds or RFC3339; empty means the current time.
	Now string
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("FLOWSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("unit", "month")
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("flowscope")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func flowConfig(v *viper.Viper) FlowConfig {
	return FlowConfig{
		FlowRate: strings.TrimSpace(v.GetString("flow-rate")),
		Amount:   strings.TrimSpace(v.GetString("amount")),
		Unit:     v.GetString("unit"),
		TopUp:    strings.TrimSpace(v.GetString("top-up")),
		Now:      v.GetString("now"),
	}
}

// ResolveNow returns the configured timestamp, or fallback when none is set.
func (f FlowConfig) ResolveNow(fallback time.Time) (int64, error) {
	if strings.TrimSpace(f.Now) == "" {
		return fallback.Unix(), nil
	}
	ts, err := ParseTimestamp(f.Now)
	if err != nil {
		return 0, fmt.Errorf("parse now: %w", err)
	}
	return ts, nil
}

// ParseTimestamp parses a timestamp value (signed unix seconds or RFC3339).
// An empty input yields zero; callers that need "unset" check for "" first.
func ParseTimestamp(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return tm.Unix(), nil
}

func isNumeric(input string) bool {
	if input != "" && (input[0] == '-' || input[0] == '+') {
		input = input[1:]
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
