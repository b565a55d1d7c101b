package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"flowScope/internal/chain"
	"flowScope/internal/config"
	"flowScope/internal/feed"
	"flowScope/internal/model"
	"flowScope/internal/subgraph"
	"flowScope/internal/superfluid"
	"flowScope/internal/token"
)

const defaultDecimals = 18

// accountEnv is the wiring shared by project and watch.
type accountEnv struct {
	source *feed.AccountSource
	meta   model.TokenMeta
	client *chain.Client
}

func (e *accountEnv) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

func newAccountEnv(ctx context.Context, cfg config.ProjectConfig, logger *zap.Logger) (*accountEnv, error) {
	if cfg.SubgraphURL == "" {
		return nil, fmt.Errorf("subgraph url is required")
	}
	tokenAddr, err := chain.ParseAddress(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	account, err := chain.ParseAddress(cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}
	receiver, hasReceiver, err := chain.ParseOptionalAddress(cfg.Receiver)
	if err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}
	forwarder, hasForwarder, err := chain.ParseOptionalAddress(cfg.Forwarder)
	if err != nil {
		return nil, fmt.Errorf("forwarder: %w", err)
	}
	if !hasForwarder {
		forwarder = superfluid.DefaultCFAForwarder
	}

	index := subgraph.NewClient(cfg.SubgraphURL, subgraph.Options{
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	env := &accountEnv{
		meta: model.TokenMeta{Address: tokenAddr.Hex(), Decimals: defaultDecimals},
	}

	var reader feed.BalanceReader
	if cfg.RPCURL != "" {
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		env.client = client
		if chainID, err := client.GetChainID(ctx); err != nil {
			logger.Warn("chain id unavailable", zap.Error(err))
		} else {
			logger.Info("rpc connected", zap.String("chain_id", chainID.String()))
		}
		sf := superfluid.NewReader(client, forwarder)
		reader = sf

		meta, err := token.NewResolver(client, logger).Resolve(ctx, tokenAddr)
		if err != nil {
			logger.Warn("token metadata unavailable", zap.String("token", tokenAddr.Hex()), zap.Error(err))
		} else {
			env.meta = meta
		}
		if underlying, err := sf.UnderlyingToken(ctx, tokenAddr); err != nil {
			logger.Warn("underlying token unavailable", zap.String("token", tokenAddr.Hex()), zap.Error(err))
		} else if underlying != (common.Address{}) {
			env.meta.Underlying = underlying.Hex()
		}
	} else if hasReceiver {
		logger.Warn("receiver flow needs --rpc, treating the existing stream as absent",
			zap.String("receiver", receiver.Hex()))
	}

	env.source = feed.NewAccountSource(feed.AccountSourceConfig{
		Token:        tokenAddr,
		Account:      account,
		Receiver:     receiver,
		HasReceiver:  hasReceiver,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, index, reader, logger)

	logger.Info("account source ready",
		zap.String("subgraph", cfg.SubgraphURL),
		zap.Bool("rpc", env.client != nil),
		zap.String("token", env.meta.Label()),
		zap.Uint8("decimals", env.meta.Decimals),
		zap.String("account", account.Hex()),
		zap.Bool("has_receiver", hasReceiver),
	)
	return env, nil
}
