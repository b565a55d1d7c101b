package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "flowscope",
		Short:        "Streaming balance projector",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Project a balance snapshot offline",
		RunE:  runEstimate,
	}

	estimateCmd.Flags().String("balance", "0", "balance at snapshot time in base units")
	estimateCmd.Flags().String("snapshot-ts", "", "snapshot timestamp (unix seconds or RFC3339), empty means now")
	estimateCmd.Flags().String("net-flow-rate", "0", "signed net flow rate in base units per second")
	estimateCmd.Flags().String("replaced-flow-rate", "0", "outgoing rate of the stream being replaced, base units per second")
	estimateCmd.Flags().Uint8("decimals", 18, "token decimals for amounts and display")
	addFlowFlags(estimateCmd.Flags())

	root.AddCommand(estimateCmd)

	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Fetch an account and project a flow change",
		RunE:  runProject,
	}

	addSourceFlags(projectCmd.Flags())
	addFlowFlags(projectCmd.Flags())

	root.AddCommand(projectCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll an account and record projections",
		RunE:  runWatch,
	}

	addSourceFlags(watchCmd.Flags())
	addFlowFlags(watchCmd.Flags())
	watchCmd.Flags().Duration("interval", 10*time.Second, "poll interval")
	watchCmd.Flags().String("out", "./data/projections.jsonl", "output JSONL path, empty disables")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	watchCmd.Flags().String("pending-tx", "", "transaction hash to hold the projection for")
	watchCmd.Flags().Duration("tx-poll-interval", 2*time.Second, "receipt poll interval for --pending-tx")
	watchCmd.Flags().String("metrics-addr", "", "listen address for /metrics, empty disables")

	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSourceFlags(flags *pflag.FlagSet) {
	flags.String("subgraph", "", "protocol subgraph GraphQL endpoint")
	flags.String("rpc", "", "chain RPC URL for realtime balances and token metadata")
	flags.String("token", "", "super token address")
	flags.String("account", "", "account address")
	flags.String("receiver", "", "receiver of the stream being changed")
	flags.String("forwarder", "", "flow forwarder address, empty means the canonical deployment")
	flags.Int("max-retries", 3, "maximum retry attempts per read")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Float64("rps", 5, "subgraph requests per second, 0 disables limiting")
	flags.Duration("timeout", 15*time.Second, "subgraph request timeout")
}

func addFlowFlags(flags *pflag.FlagSet) {
	flags.String("flow-rate", "", "proposed outgoing flow rate in base units per second")
	flags.String("amount", "", "proposed outgoing amount per --unit, in tokens")
	flags.String("unit", "month", "time unit for --amount and display (second, minute, hour, day, week, month, year)")
	flags.String("top-up", "", "one-time deposit in tokens added before the change")
	flags.String("now", "", "projection time (unix seconds or RFC3339), empty means now")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
