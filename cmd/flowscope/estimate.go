package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowScope/internal/config"
	"flowScope/internal/model"
	"flowScope/internal/projector"
)

func runEstimate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEstimate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	now, err := cfg.Flow.ResolveNow(time.Now())
	if err != nil {
		return err
	}
	snapshotTS := now
	if strings.TrimSpace(cfg.SnapshotTimestamp) != "" {
		snapshotTS, err = config.ParseTimestamp(cfg.SnapshotTimestamp)
		if err != nil {
			return fmt.Errorf("parse snapshot timestamp: %w", err)
		}
	}

	balance, err := projector.ParseBigInt(cfg.Balance)
	if err != nil {
		return fmt.Errorf("parse balance: %w", err)
	}
	netFlow, err := projector.ParseBigInt(cfg.NetFlowRate)
	if err != nil {
		return fmt.Errorf("parse net flow rate: %w", err)
	}
	replaced, err := projector.ParseBigInt(cfg.ReplacedFlowRate)
	if err != nil {
		return fmt.Errorf("parse replaced flow rate: %w", err)
	}

	change, err := parseFlowChange(cfg.Flow, cfg.Decimals)
	if err != nil {
		return err
	}

	snapshot := projector.BalanceSnapshot{
		BalanceAtSnapshotTime: balance,
		SnapshotTimestamp:     snapshotTS,
		NetFlowRate:           netFlow,
	}
	flows := projector.FlowContext{
		AccountNetFlowRate: netFlow,
		ReplacedFlowRate:   replaced.Neg(replaced),
	}
	p := projector.NewFlowChangeProjection(snapshot, flows, change.candidate, change.topUp, now)

	logger.Debug("estimate",
		zap.Int64("snapshot_ts", snapshotTS),
		zap.Int64("now", now),
		zap.String("current_rate", p.CurrentTotalFlowRate.String()),
		zap.String("new_rate", p.NewTotalFlowRate.String()),
	)

	return writeReport(os.Stdout, buildReport(model.TokenMeta{Decimals: cfg.Decimals}, snapshot, p, change.unit, now))
}
