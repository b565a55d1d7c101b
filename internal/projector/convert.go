package projector

import (
	"fmt"
	"math/big"

	"flowScope/internal/model"
)

// ParseMembership converts an indexer membership into integer form.
func ParseMembership(m model.PoolMembership) (Membership, error) {
	units, err := ParseBigInt(m.Units)
	if err != nil {
		return Membership{}, fmt.Errorf("units: %w", err)
	}
	flowRate, err := ParseBigInt(m.Pool.FlowRate)
	if err != nil {
		return Membership{}, fmt.Errorf("pool flow rate: %w", err)
	}
	adjustment, err := ParseBigInt(m.Pool.AdjustmentFlowRate)
	if err != nil {
		return Membership{}, fmt.Errorf("pool adjustment flow rate: %w", err)
	}
	totalUnits, err := ParseBigInt(m.Pool.TotalUnits)
	if err != nil {
		return Membership{}, fmt.Errorf("pool total units: %w", err)
	}
	return Membership{
		Units:                  units,
		Connected:              m.IsConnected,
		PoolFlowRate:           flowRate,
		PoolAdjustmentFlowRate: adjustment,
		PoolTotalUnits:         totalUnits,
	}, nil
}

// FromAccountState builds the snapshot and flow context for an observation.
// The on-chain realtime balance wins over the indexer balance; an account the
// indexer has not seen starts from zero at FetchedAt. The receiver flow becomes
// the replaced flow.
func FromAccountState(state model.AccountState) (BalanceSnapshot, FlowContext, error) {
	flows := FlowContext{
		AccountNetFlowRate: new(big.Int),
		Memberships:        make([]Membership, 0, len(state.Memberships)),
	}
	for i, m := range state.Memberships {
		parsed, err := ParseMembership(m)
		if err != nil {
			return BalanceSnapshot{}, FlowContext{}, fmt.Errorf("membership %d: %w", i, err)
		}
		flows.Memberships = append(flows.Memberships, parsed)
	}

	snapshot := EmptySnapshot(state.FetchedAt.Unix())
	if state.Snapshot != nil {
		netFlow, err := ParseBigInt(state.Snapshot.TotalNetFlowRate)
		if err != nil {
			return BalanceSnapshot{}, FlowContext{}, fmt.Errorf("total net flow rate: %w", err)
		}
		balance, err := ParseBigInt(state.Snapshot.BalanceUntilUpdatedAt)
		if err != nil {
			return BalanceSnapshot{}, FlowContext{}, fmt.Errorf("balance until updated at: %w", err)
		}
		flows.AccountNetFlowRate = netFlow
		snapshot.BalanceAtSnapshotTime = balance
		snapshot.SnapshotTimestamp = state.Snapshot.UpdatedAtTimestamp
	}
	if state.Realtime != nil {
		available, err := ParseBigInt(state.Realtime.Available)
		if err != nil {
			return BalanceSnapshot{}, FlowContext{}, fmt.Errorf("realtime balance: %w", err)
		}
		snapshot.BalanceAtSnapshotTime = available
		snapshot.SnapshotTimestamp = state.Realtime.Timestamp
	}
	snapshot.NetFlowRate = EffectiveNetFlowRate(flows, nil)

	outgoing, err := ParseBigInt(state.ReceiverFlowRate)
	if err != nil {
		return BalanceSnapshot{}, FlowContext{}, fmt.Errorf("receiver flow rate: %w", err)
	}
	flows.ReplacedFlowRate = outgoing.Neg(outgoing)

	return snapshot, flows, nil
}

// ToRecord flattens a projection for storage.
func ToRecord(state model.AccountState, s BalanceSnapshot, p FlowChangeProjection, held bool) model.ProjectionRecord {
	return model.ProjectionRecord{
		Account:                state.Account,
		Token:                  state.Token,
		Receiver:               state.Receiver,
		ObservedAt:             state.FetchedAt.UTC(),
		SnapshotTimestamp:      s.SnapshotTimestamp,
		CurrentStartingBalance: orZero(p.CurrentStartingBalance).String(),
		NewStartingBalance:     orZero(p.NewStartingBalance).String(),
		CurrentTotalFlowRate:   orZero(p.CurrentTotalFlowRate).String(),
		NewTotalFlowRate:       orZero(p.NewTotalFlowRate).String(),
		CurrentLiquidation:     p.CurrentLiquidation,
		NewLiquidation:         p.NewLiquidation,
		Held:                   held,
	}
}

// FromRecord restores the projection stored by ToRecord.
func FromRecord(r model.ProjectionRecord) (FlowChangeProjection, error) {
	p := FlowChangeProjection{
		CurrentLiquidation: r.CurrentLiquidation,
		NewLiquidation:     r.NewLiquidation,
	}
	fields := []struct {
		name  string
		value string
		dst   **big.Int
	}{
		{"current starting balance", r.CurrentStartingBalance, &p.CurrentStartingBalance},
		{"new starting balance", r.NewStartingBalance, &p.NewStartingBalance},
		{"current total flow rate", r.CurrentTotalFlowRate, &p.CurrentTotalFlowRate},
		{"new total flow rate", r.NewTotalFlowRate, &p.NewTotalFlowRate},
	}
	for _, f := range fields {
		v, err := ParseBigInt(f.value)
		if err != nil {
			return FlowChangeProjection{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return p, nil
}
