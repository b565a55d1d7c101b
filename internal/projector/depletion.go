package projector

import "math/big"

// Membership is an account's share of a distribution pool.
type Membership struct {
	Units                  *big.Int
	Connected              bool
	PoolFlowRate           *big.Int
	PoolAdjustmentFlowRate *big.Int
	PoolTotalUnits         *big.Int
}

// FlowContext describes the account's flows around a proposed change. Every rate
// is a signed contribution to the account's net flow: an outgoing stream of r
// tokens per second contributes -r.
type FlowContext struct {
	AccountNetFlowRate *big.Int
	Memberships        []Membership
	ReplacedFlowRate   *big.Int
}

// MembershipInflow returns units * (flowRate - adjustmentFlowRate) / totalUnits for a
// connected membership and zero otherwise.
func MembershipInflow(m Membership) *big.Int {
	if !m.Connected {
		return new(big.Int)
	}
	total := orZero(m.PoolTotalUnits)
	if total.Sign() <= 0 {
		return new(big.Int)
	}
	rate := new(big.Int).Sub(orZero(m.PoolFlowRate), orZero(m.PoolAdjustmentFlowRate))
	rate.Mul(rate, orZero(m.Units))
	return rate.Quo(rate, total)
}

// TotalMembershipInflow sums MembershipInflow over all memberships.
func TotalMembershipInflow(memberships []Membership) *big.Int {
	sum := new(big.Int)
	for _, m := range memberships {
		sum.Add(sum, MembershipInflow(m))
	}
	return sum
}

// EffectiveNetFlowRate combines the account's aggregate flow, connected pool
// inflow, the removed flow and the candidate flow into one net rate.
func EffectiveNetFlowRate(flows FlowContext, candidate *big.Int) *big.Int {
	rate := new(big.Int).Set(orZero(flows.AccountNetFlowRate))
	rate.Add(rate, TotalMembershipInflow(flows.Memberships))
	rate.Sub(rate, orZero(flows.ReplacedFlowRate))
	return rate.Add(rate, orZero(candidate))
}

// EstimateDepletionTimestamp returns when the snapshot balance reaches zero if
// candidate becomes the net flow rate. It reports false when the balance is flat
// or growing. Division truncates, so the estimate is never later than the true
// zero crossing.
func EstimateDepletionTimestamp(s BalanceSnapshot, candidate *big.Int) (int64, bool) {
	drain := new(big.Int).Neg(orZero(candidate))
	if drain.Sign() <= 0 {
		return 0, false
	}
	balance := orZero(s.BalanceAtSnapshotTime)
	if balance.Sign() <= 0 {
		return s.SnapshotTimestamp, true
	}
	seconds := new(big.Int).Quo(balance, drain)
	if !seconds.IsInt64() || seconds.Int64() > maxOffset(s.SnapshotTimestamp) {
		return maxTimestamp, true
	}
	return s.SnapshotTimestamp + seconds.Int64(), true
}

// EstimateDepletionWithFlows is EstimateDepletionTimestamp over the combined rate
// of flows and candidate.
func EstimateDepletionWithFlows(s BalanceSnapshot, flows FlowContext, candidate *big.Int) (int64, bool) {
	return EstimateDepletionTimestamp(s, EffectiveNetFlowRate(flows, candidate))
}

const maxTimestamp = int64(^uint64(0) >> 1)

func maxOffset(from int64) int64 {
	if from < 0 {
		return maxTimestamp
	}
	return maxTimestamp - from
}
