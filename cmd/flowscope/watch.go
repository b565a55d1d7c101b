package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowScope/internal/chain"
	"flowScope/internal/config"
	"flowScope/internal/feed"
	"flowScope/internal/metrics"
	"flowScope/internal/model"
	"flowScope/internal/projector"
	"flowScope/internal/storage"
	"flowScope/internal/storage/postgres"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Flow.Now != "" {
		logger.Warn("--now is ignored by watch, projections use each fetch time")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newAccountEnv(ctx, cfg.ProjectConfig, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	change, err := parseFlowChange(cfg.Flow, env.meta.Decimals)
	if err != nil {
		return err
	}

	var sinks storage.Multi
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	holder := &feed.Holder{}
	if cfg.PendingTx != "" {
		if env.client == nil {
			return fmt.Errorf("--pending-tx requires --rpc")
		}
		hash, err := chain.ParseTxHash(cfg.PendingTx)
		if err != nil {
			return err
		}
		seedHolder(ctx, holder, sinks, env.source.Account(), env.meta.Address, env.source.Receiver(), logger)
		holder.Hold()
		go func() {
			if _, err := feed.WatchTransaction(ctx, env.client, hash, holder, cfg.TxPollInterval, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("pending transaction watch ended", zap.Error(err))
			}
		}()
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	poller, err := feed.NewPoller(env.source, cfg.Interval, logger)
	if err != nil {
		return err
	}
	updates, unsubscribe := poller.Subscribe()
	defer unsubscribe()
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	logger.Info("watch start",
		zap.Duration("interval", cfg.Interval),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("pending_tx", cfg.PendingTx),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.Err != nil {
				logger.Warn("poll failed", zap.Uint64("seq", u.Seq), zap.Error(u.Err))
				continue
			}
			if err := handleUpdate(ctx, u, change, holder, sinks, logger); err != nil {
				logger.Error("handle update failed", zap.Uint64("seq", u.Seq), zap.Error(err))
			}
		}
	}
}

func handleUpdate(ctx context.Context, u feed.Update, change flowChange, holder *feed.Holder, sink storage.Storage, logger *zap.Logger) error {
	snapshot, flows, err := projector.FromAccountState(u.State)
	if err != nil {
		return fmt.Errorf("convert account state: %w", err)
	}
	now := u.State.FetchedAt.Unix()
	fresh := projector.NewFlowChangeProjection(snapshot, flows, change.candidate, change.topUp, now)
	p, held := holder.Resolve(fresh)

	metrics.ObserveProjection(held)
	metrics.SetDepletion("current", p.CurrentLiquidation)
	metrics.SetDepletion("new", p.NewLiquidation)

	logger.Info("projection",
		zap.Uint64("seq", u.Seq),
		zap.Bool("held", held),
		zap.String("current_balance", p.CurrentStartingBalance.String()),
		zap.String("current_rate", p.CurrentTotalFlowRate.String()),
		zap.String("new_rate", p.NewTotalFlowRate.String()),
		zap.Any("current_liquidation", p.CurrentLiquidation),
		zap.Any("new_liquidation", p.NewLiquidation),
	)

	record := projector.ToRecord(u.State, snapshot, p, held)
	if err := sink.PutProjectionBatch(ctx, []model.ProjectionRecord{record}); err != nil {
		return fmt.Errorf("store projection: %w", err)
	}
	return nil
}

// seedHolder pins the newest stored projection so the pending transaction
// cannot leak into the first displayed value.
func seedHolder(ctx context.Context, holder *feed.Holder, reader storage.Reader, account, token, receiver string, logger *zap.Logger) {
	record, ok, err := reader.LatestProjection(ctx, account, token, receiver)
	if err != nil {
		logger.Warn("load stored projection failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	p, err := projector.FromRecord(record)
	if err != nil {
		logger.Warn("stored projection invalid", zap.Error(err))
		return
	}
	holder.Seed(p)
	logger.Info("holding stored projection", zap.Time("observed_at", record.ObservedAt))
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics server start", zap.String("addr", addr))
	return srv
}
