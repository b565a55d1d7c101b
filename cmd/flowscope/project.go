package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowScope/internal/config"
	"flowScope/internal/projector"
)

func runProject(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProject(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newAccountEnv(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	change, err := parseFlowChange(cfg.Flow, env.meta.Decimals)
	if err != nil {
		return err
	}

	state, err := env.source.Fetch(ctx)
	if err != nil {
		return err
	}
	fallback := state.FetchedAt
	if env.client != nil {
		if ts, err := env.client.LatestTimestamp(ctx); err != nil {
			logger.Warn("latest block time unavailable, using fetch time", zap.Error(err))
		} else {
			fallback = time.Unix(ts, 0)
		}
	}
	now, err := cfg.Flow.ResolveNow(fallback)
	if err != nil {
		return err
	}

	snapshot, flows, err := projector.FromAccountState(state)
	if err != nil {
		return err
	}
	p := projector.NewFlowChangeProjection(snapshot, flows, change.candidate, change.topUp, now)

	logger.Info("projection computed",
		zap.Int64("now", now),
		zap.Int64("snapshot_ts", snapshot.SnapshotTimestamp),
		zap.Bool("realtime", state.Realtime != nil),
		zap.Int("memberships", len(state.Memberships)),
	)

	r := buildReport(env.meta, snapshot, p, change.unit, now)
	r.Account = state.Account
	r.Receiver = state.Receiver
	return writeReport(os.Stdout, r)
}
