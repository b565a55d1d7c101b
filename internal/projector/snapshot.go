package projector

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// BalanceSnapshot is the last observed balance of an account together with the
// net flow rate that applies from SnapshotTimestamp onward.
type BalanceSnapshot struct {
	BalanceAtSnapshotTime *big.Int
	SnapshotTimestamp     int64
	NetFlowRate           *big.Int
}

type snapshotJSON struct {
	BalanceAtSnapshotTime string `json:"balance_at_snapshot_time"`
	SnapshotTimestamp     int64  `json:"snapshot_timestamp"`
	NetFlowRate           string `json:"net_flow_rate"`
}

// EmptySnapshot is the snapshot of an account the indexer has never seen.
func EmptySnapshot(now int64) BalanceSnapshot {
	return BalanceSnapshot{
		BalanceAtSnapshotTime: big.NewInt(0),
		SnapshotTimestamp:     now,
		NetFlowRate:           big.NewInt(0),
	}
}

// MarshalJSON encodes big integers as base-10 strings.
func (s BalanceSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		BalanceAtSnapshotTime: orZero(s.BalanceAtSnapshotTime).String(),
		SnapshotTimestamp:     s.SnapshotTimestamp,
		NetFlowRate:           orZero(s.NetFlowRate).String(),
	})
}

// UnmarshalJSON decodes a BalanceSnapshot written by MarshalJSON.
func (s *BalanceSnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	balance, err := ParseBigInt(raw.BalanceAtSnapshotTime)
	if err != nil {
		return fmt.Errorf("balance_at_snapshot_time: %w", err)
	}
	rate, err := ParseBigInt(raw.NetFlowRate)
	if err != nil {
		return fmt.Errorf("net_flow_rate: %w", err)
	}
	*s = BalanceSnapshot{
		BalanceAtSnapshotTime: balance,
		SnapshotTimestamp:     raw.SnapshotTimestamp,
		NetFlowRate:           rate,
	}
	return nil
}

// At returns a snapshot re-based at the given time with the same flow rate.
func (s BalanceSnapshot) At(ts int64) BalanceSnapshot {
	return BalanceSnapshot{
		BalanceAtSnapshotTime: ProjectBalanceAt(s, ts),
		SnapshotTimestamp:     ts,
		NetFlowRate:           new(big.Int).Set(orZero(s.NetFlowRate)),
	}
}

// ProjectBalanceAt returns balance + netFlowRate * (at - snapshotTimestamp).
// The result is not clamped; a negative value means the balance is already depleted.
func ProjectBalanceAt(s BalanceSnapshot, at int64) *big.Int {
	elapsed := new(big.Int).Sub(big.NewInt(at), big.NewInt(s.SnapshotTimestamp))
	out := new(big.Int).Mul(orZero(s.NetFlowRate), elapsed)
	return out.Add(out, orZero(s.BalanceAtSnapshotTime))
}

// ParseBigInt parses a base-10 integer; the empty string is zero.
func ParseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
