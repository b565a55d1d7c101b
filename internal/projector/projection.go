package projector

import "math/big"

// FlowChangeProjection compares the account trajectory under its current flows
// with the trajectory after a proposed flow change and optional top-up.
type FlowChangeProjection struct {
	CurrentStartingBalance *big.Int
	NewStartingBalance     *big.Int
	CurrentTotalFlowRate   *big.Int
	NewTotalFlowRate       *big.Int
	CurrentLiquidation     *int64
	NewLiquidation         *int64
}

// Point is a balance at a timestamp.
type Point struct {
	Timestamp int64
	Balance   *big.Int
}

// Segment is a straight balance line between two points.
type Segment struct {
	Start Point
	End   Point
}

// AnnualRange holds the plotted current and new trajectories.
type AnnualRange struct {
	Current Segment
	New     Segment
}

// NewFlowChangeProjection projects the balance to now and estimates depletion
// under the current flows and under flows with candidate replacing
// flows.ReplacedFlowRate. topUp may be nil.
func NewFlowChangeProjection(s BalanceSnapshot, flows FlowContext, candidate, topUp *big.Int, now int64) FlowChangeProjection {
	currentStart := ProjectBalanceAt(s, now)
	newStart := new(big.Int).Add(currentStart, orZero(topUp))

	currentRate := EffectiveNetFlowRate(FlowContext{
		AccountNetFlowRate: flows.AccountNetFlowRate,
		Memberships:        flows.Memberships,
	}, nil)
	newRate := EffectiveNetFlowRate(flows, candidate)

	return FlowChangeProjection{
		CurrentStartingBalance: currentStart,
		NewStartingBalance:     newStart,
		CurrentTotalFlowRate:   currentRate,
		NewTotalFlowRate:       newRate,
		CurrentLiquidation:     liquidation(currentStart, currentRate, now),
		NewLiquidation:         liquidation(newStart, newRate, now),
	}
}

// SameRate reports whether both scenarios share a flow rate, in which case only
// one trajectory needs drawing.
func (p FlowChangeProjection) SameRate() bool {
	return orZero(p.CurrentTotalFlowRate).Cmp(orZero(p.NewTotalFlowRate)) == 0
}

// AnnualRange returns the plotted trajectories of the projection starting at now.
func (p FlowChangeProjection) AnnualRange(now int64) AnnualRange {
	return AnnualRange{
		Current: yearSegment(p.CurrentStartingBalance, p.CurrentTotalFlowRate, now),
		New:     yearSegment(p.NewStartingBalance, p.NewTotalFlowRate, now),
	}
}

// ProjectAnnualRange builds the current trajectory from the snapshot rate and the
// new trajectory from candidate plus an immediate topUp, each running one year
// from now or until depletion, whichever is sooner.
func ProjectAnnualRange(s BalanceSnapshot, candidate, topUp *big.Int, now int64) AnnualRange {
	start := ProjectBalanceAt(s, now)
	return AnnualRange{
		Current: yearSegment(start, s.NetFlowRate, now),
		New:     yearSegment(new(big.Int).Add(start, orZero(topUp)), candidate, now),
	}
}

func yearSegment(start, rate *big.Int, now int64) Segment {
	base := BalanceSnapshot{
		BalanceAtSnapshotTime: orZero(start),
		SnapshotTimestamp:     now,
		NetFlowRate:           orZero(rate),
	}
	end := maxTimestamp
	if int64(Year) <= maxOffset(now) {
		end = now + int64(Year)
	}
	endBalance := ProjectBalanceAt(base, end)
	if ts, ok := EstimateDepletionTimestamp(base, base.NetFlowRate); ok && ts < end {
		end = ts
		endBalance = new(big.Int)
	}
	return Segment{
		Start: Point{Timestamp: now, Balance: new(big.Int).Set(base.BalanceAtSnapshotTime)},
		End:   Point{Timestamp: end, Balance: endBalance},
	}
}

func liquidation(balance, rate *big.Int, now int64) *int64 {
	ts, ok := EstimateDepletionTimestamp(BalanceSnapshot{
		BalanceAtSnapshotTime: balance,
		SnapshotTimestamp:     now,
		NetFlowRate:           rate,
	}, rate)
	if !ok {
		return nil
	}
	return &ts
}
