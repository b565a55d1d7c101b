package feed

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"flowScope/internal/metrics"
	"flowScope/internal/model"
)

// Source produces one observation of an account per call.
type Source interface {
	Fetch(ctx context.Context) (model.AccountState, error)
}

// FlowIndex is the indexer read used by AccountSource.
type FlowIndex interface {
	AccountFlows(ctx context.Context, account, token string) (*model.AccountTokenSnapshot, []model.PoolMembership, error)
}

// BalanceReader is the on-chain read used by AccountSource.
type BalanceReader interface {
	RealtimeBalanceOfNow(ctx context.Context, token, account common.Address) (model.RealtimeBalance, error)
	GetFlowrate(ctx context.Context, token, sender, receiver common.Address) (*big.Int, error)
}

// AccountSourceConfig identifies the observed account.
type AccountSourceConfig struct {
	Token        common.Address
	Account      common.Address
	Receiver     common.Address
	HasReceiver  bool
	MaxRetries   int
	RetryBackoff time.Duration
}

// AccountSource combines the indexer aggregate with authoritative chain reads.
// Chain reads are skipped when no reader is configured.
type AccountSource struct {
	cfg    AccountSourceConfig
	index  FlowIndex
	reader BalanceReader
	logger *zap.Logger
	now    func() time.Time
}

func NewAccountSource(cfg AccountSourceConfig, index FlowIndex, reader BalanceReader, logger *zap.Logger) *AccountSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountSource{
		cfg:    cfg,
		index:  index,
		reader: reader,
		logger: logger,
		now:    time.Now,
	}
}

// Account returns the observed account in checksum form.
func (s *AccountSource) Account() string {
	return s.cfg.Account.Hex()
}

// Receiver returns the receiver in checksum form, or "" when none is set.
func (s *AccountSource) Receiver() string {
	if !s.cfg.HasReceiver {
		return ""
	}
	return s.cfg.Receiver.Hex()
}

// Fetch implements Source.
func (s *AccountSource) Fetch(ctx context.Context) (model.AccountState, error) {
	if s.index == nil {
		return model.AccountState{}, fmt.Errorf("flow index is nil")
	}

	state := model.AccountState{
		Token:   s.cfg.Token.Hex(),
		Account: s.cfg.Account.Hex(),
	}
	if s.cfg.HasReceiver {
		state.Receiver = s.cfg.Receiver.Hex()
	}

	err := s.observe(ctx, "subgraph", func(ctx context.Context) error {
		snapshot, memberships, err := s.index.AccountFlows(ctx, state.Account, state.Token)
		if err != nil {
			return err
		}
		state.Snapshot = snapshot
		state.Memberships = memberships
		return nil
	})
	if err != nil {
		return model.AccountState{}, fmt.Errorf("fetch account flows: %w", err)
	}

	if s.reader != nil {
		err := s.observe(ctx, "realtime_balance", func(ctx context.Context) error {
			balance, err := s.reader.RealtimeBalanceOfNow(ctx, s.cfg.Token, s.cfg.Account)
			if err != nil {
				return err
			}
			state.Realtime = &balance
			return nil
		})
		if err != nil {
			return model.AccountState{}, fmt.Errorf("fetch realtime balance: %w", err)
		}

		if s.cfg.HasReceiver {
			err := s.observe(ctx, "receiver_flow", func(ctx context.Context) error {
				rate, err := s.reader.GetFlowrate(ctx, s.cfg.Token, s.cfg.Account, s.cfg.Receiver)
				if err != nil {
					return err
				}
				state.ReceiverFlowRate = rate.String()
				return nil
			})
			if err != nil {
				return model.AccountState{}, fmt.Errorf("fetch receiver flow rate: %w", err)
			}
		}
	}

	state.FetchedAt = s.now().UTC()
	return state, nil
}

func (s *AccountSource) observe(ctx context.Context, source string, fn func(context.Context) error) error {
	start := time.Now()
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context, attempt int) error {
		err := fn(ctx)
		if err != nil {
			s.logger.Warn("source read failed",
				zap.String("source", source),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
		return err
	})
	metrics.ObserveFetch(source, err, time.Since(start))
	return err
}
