package config

import (
	"github.com/spf13/pflag"
)

// EstimateConfig holds an offline snapshot and flow change.
type EstimateConfig struct {
	Balance           string
	SnapshotTimestamp string
	NetFlowRate       string
	ReplacedFlowRate  string
	Decimals          uint8
	Flow              FlowConfig
	LogLevel          string
}

// LoadEstimate merges config file, environment variables, and flags into EstimateConfig.
func LoadEstimate(cfgFile string, flags *pflag.FlagSet) (EstimateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"decimals": 18,
		"balance":  "0",
	})
	if err != nil {
		return EstimateConfig{}, err
	}

	return EstimateConfig{
		Balance:           v.GetString("balance"),
		SnapshotTimestamp: v.GetString("snapshot-ts"),
		NetFlowRate:       v.GetString("net-flow-rate"),
		ReplacedFlowRate:  v.GetString("replaced-flow-rate"),
		Decimals:          uint8(v.GetUint("decimals")),
		Flow:              flowConfig(v),
		LogLevel:          v.GetString("log-level"),
	}, nil
}
