package feed

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ReceiptChecker reports whether a transaction has been mined.
type ReceiptChecker interface {
	TransactionMined(ctx context.Context, hash common.Hash) (mined bool, success bool, err error)
}

// WatchTransaction holds h until the transaction is mined, then releases it.
// It returns whether the transaction succeeded, or ctx.Err() if ctx ends first.
func WatchTransaction(ctx context.Context, checker ReceiptChecker, hash common.Hash, h *Holder, interval time.Duration, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	h.Hold()
	defer h.Release()
	logger.Info("holding projection for pending transaction", zap.String("tx", hash.Hex()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		mined, success, err := checker.TransactionMined(ctx, hash)
		switch {
		case err != nil:
			logger.Warn("receipt lookup failed", zap.String("tx", hash.Hex()), zap.Error(err))
		case mined:
			logger.Info("transaction mined", zap.String("tx", hash.Hex()), zap.Bool("success", success))
			return success, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}
