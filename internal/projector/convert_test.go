package projector

import (
	"math/big"
	"testing"
	"time"

	"flowScope/internal/model"
)

func TestFromAccountStateUnknownAccount(t *testing.T) {
	fetched := time.Unix(baseTS, 0)
	s, flows, err := FromAccountState(model.AccountState{FetchedAt: fetched})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SnapshotTimestamp != baseTS || s.BalanceAtSnapshotTime.Sign() != 0 || s.NetFlowRate.Sign() != 0 {
		t.Fatalf("unknown account should start empty at fetch time: %+v", s)
	}
	if flows.ReplacedFlowRate.Sign() != 0 {
		t.Fatalf("no receiver flow expected, got %s", flows.ReplacedFlowRate)
	}
}

func TestFromAccountStateIndexerOnly(t *testing.T) {
	state := model.AccountState{
		Snapshot: &model.AccountTokenSnapshot{
			TotalNetFlowRate:      "-200",
			BalanceUntilUpdatedAt: "50000",
			UpdatedAtTimestamp:    baseTS,
		},
		Memberships: []model.PoolMembership{
			{Units: "10", IsConnected: true, Pool: model.MembershipPool{FlowRate: "1000", AdjustmentFlowRate: "0", TotalUnits: "100"}},
			{Units: "10", IsConnected: false, Pool: model.MembershipPool{FlowRate: "1000", AdjustmentFlowRate: "0", TotalUnits: "100"}},
		},
		ReceiverFlowRate: "40",
		FetchedAt:        time.Unix(baseTS+30, 0),
	}

	s, flows, err := FromAccountState(state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SnapshotTimestamp != baseTS || s.BalanceAtSnapshotTime.Int64() != 50000 {
		t.Fatalf("snapshot should come from the indexer: %+v", s)
	}
	// -200 + 100 from the connected membership only
	if s.NetFlowRate.Int64() != -100 {
		t.Fatalf("net flow rate: got %s", s.NetFlowRate)
	}
	if flows.ReplacedFlowRate.Int64() != -40 {
		t.Fatalf("replaced flow should be the negated outgoing rate, got %s", flows.ReplacedFlowRate)
	}
	if len(flows.Memberships) != 2 {
		t.Fatalf("memberships: got %d", len(flows.Memberships))
	}

	// Replacing the 40/s stream with a 90/s stream: -200 + 100 + 40 - 90 = -150.
	p := NewFlowChangeProjection(s, flows, big.NewInt(-90), nil, baseTS+30)
	if p.CurrentTotalFlowRate.Int64() != -100 || p.NewTotalFlowRate.Int64() != -150 {
		t.Fatalf("rates: current %s new %s", p.CurrentTotalFlowRate, p.NewTotalFlowRate)
	}
	if p.CurrentStartingBalance.Int64() != 47000 {
		t.Fatalf("starting balance: got %s", p.CurrentStartingBalance)
	}

	record := ToRecord(state, s, p, true)
	if record.NewTotalFlowRate != "-150" || !record.Held || record.NewLiquidation == nil {
		t.Fatalf("record mismatch: %+v", record)
	}
}

func TestFromAccountStateInvalidInteger(t *testing.T) {
	_, _, err := FromAccountState(model.AccountState{
		Memberships: []model.PoolMembership{{Units: "ten"}},
	})
	if err == nil {
		t.Fatalf("expected error for invalid units")
	}
	_, _, err = FromAccountState(model.AccountState{ReceiverFlowRate: "0x10"})
	if err == nil {
		t.Fatalf("expected error for invalid receiver flow rate")
	}
}

func TestFromRecordRestoresProjection(t *testing.T) {
	s := snap(10_000, -10)
	p := NewFlowChangeProjection(s, FlowContext{AccountNetFlowRate: big.NewInt(-10)}, big.NewInt(-5), big.NewInt(100), baseTS+10)
	record := ToRecord(model.AccountState{Account: "0xa", Token: "0xb", FetchedAt: time.Unix(baseTS+10, 0)}, s, p, false)

	restored, err := FromRecord(record)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.NewStartingBalance.Cmp(p.NewStartingBalance) != 0 || restored.NewTotalFlowRate.Cmp(p.NewTotalFlowRate) != 0 {
		t.Fatalf("restored mismatch: %+v", restored)
	}
	if restored.NewLiquidation == nil || *restored.NewLiquidation != *p.NewLiquidation {
		t.Fatalf("liquidation mismatch: %v", restored.NewLiquidation)
	}

	record.NewTotalFlowRate = "fast"
	if _, err := FromRecord(record); err == nil {
		t.Fatalf("expected error for invalid rate")
	}
}
