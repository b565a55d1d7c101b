package projector

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
)

const baseTS = int64(1_700_000_000)

func snap(balance, rate int64) BalanceSnapshot {
	return BalanceSnapshot{
		BalanceAtSnapshotTime: big.NewInt(balance),
		SnapshotTimestamp:     baseTS,
		NetFlowRate:           big.NewInt(rate),
	}
}

func TestProjectBalanceAtDraining(t *testing.T) {
	s := snap(1000, -10)

	if got := ProjectBalanceAt(s, baseTS); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("identity at snapshot: got %s", got)
	}
	if got := ProjectBalanceAt(s, baseTS+50); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("balance at T+50: got %s", got)
	}
	if got := ProjectBalanceAt(s, baseTS+150); got.Cmp(big.NewInt(-500)) != 0 {
		t.Fatalf("projection must not clamp: got %s", got)
	}
	if got := ProjectBalanceAt(s, baseTS-10); got.Cmp(big.NewInt(1100)) != 0 {
		t.Fatalf("projection before snapshot: got %s", got)
	}
}

func TestProjectBalanceAtGrowing(t *testing.T) {
	s := snap(1000, 5)
	if got := ProjectBalanceAt(s, baseTS+1_000_000); got.Cmp(big.NewInt(5_001_000)) != 0 {
		t.Fatalf("balance at T+1e6: got %s", got)
	}
	if _, ok := EstimateDepletionTimestamp(s, s.NetFlowRate); ok {
		t.Fatalf("growing balance must not deplete")
	}
}

func TestProjectBalanceAtExactForLargeValues(t *testing.T) {
	balance, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	rate, _ := new(big.Int).SetString("-3858024691358024", 10)
	s := BalanceSnapshot{BalanceAtSnapshotTime: balance, SnapshotTimestamp: baseTS, NetFlowRate: rate}

	for _, dt := range []int64{0, 1, 59, 86_400, 31_536_000} {
		want := new(big.Int).Mul(rate, big.NewInt(dt))
		want.Add(want, balance)
		if got := ProjectBalanceAt(s, baseTS+dt); got.Cmp(want) != 0 {
			t.Fatalf("dt=%d: got %s want %s", dt, got, want)
		}
	}
}

func TestProjectBalanceAtNilFields(t *testing.T) {
	var s BalanceSnapshot
	if got := ProjectBalanceAt(s, 100); got.Sign() != 0 {
		t.Fatalf("nil snapshot should project zero, got %s", got)
	}
}

func TestProjectBalanceAtDoesNotMutate(t *testing.T) {
	s := snap(1000, -10)
	ProjectBalanceAt(s, baseTS+30)
	if s.BalanceAtSnapshotTime.Int64() != 1000 || s.NetFlowRate.Int64() != -10 {
		t.Fatalf("inputs mutated: %+v", s)
	}
}

func TestEstimateDepletionTimestamp(t *testing.T) {
	s := snap(1000, -10)
	ts, ok := EstimateDepletionTimestamp(s, s.NetFlowRate)
	if !ok {
		t.Fatalf("expected depletion")
	}
	if ts != baseTS+100 {
		t.Fatalf("depletion: got %d want %d", ts, baseTS+100)
	}
}

func TestEstimateDepletionTimestampNoDrain(t *testing.T) {
	s := snap(1000, 0)
	for _, rate := range []int64{0, 1, 1_000_000} {
		if _, ok := EstimateDepletionTimestamp(s, big.NewInt(rate)); ok {
			t.Fatalf("rate %d must not deplete", rate)
		}
	}
	if _, ok := EstimateDepletionTimestamp(s, nil); ok {
		t.Fatalf("nil rate must not deplete")
	}
}

func TestEstimateDepletionTimestampTruncates(t *testing.T) {
	for _, tc := range []struct{ balance, drain int64 }{
		{1000, 7}, {1, 3}, {999_999, 1000}, {10, 10}, {123_456_789, 98_765},
	} {
		s := snap(tc.balance, -tc.drain)
		ts, ok := EstimateDepletionTimestamp(s, s.NetFlowRate)
		if !ok {
			t.Fatalf("%+v: expected depletion", tc)
		}
		if ts < s.SnapshotTimestamp {
			t.Fatalf("%+v: depletion %d before snapshot", tc, ts)
		}
		left := ProjectBalanceAt(s, ts)
		if left.Sign() < 0 || left.Cmp(big.NewInt(tc.drain)) >= 0 {
			t.Fatalf("%+v: balance at estimate %s not in [0, %d)", tc, left, tc.drain)
		}
	}
}

func TestEstimateDepletionTimestampEmptyAccount(t *testing.T) {
	s := EmptySnapshot(baseTS)
	ts, ok := EstimateDepletionTimestamp(s, big.NewInt(-1))
	if !ok || ts != baseTS {
		t.Fatalf("empty account should deplete immediately: %d %v", ts, ok)
	}
}

func TestEstimateDepletionTimestampOverflowSaturates(t *testing.T) {
	balance := new(big.Int).Lsh(big.NewInt(1), 200)
	s := BalanceSnapshot{BalanceAtSnapshotTime: balance, SnapshotTimestamp: baseTS}
	ts, ok := EstimateDepletionTimestamp(s, big.NewInt(-1))
	if !ok || ts != maxTimestamp {
		t.Fatalf("expected saturated timestamp, got %d %v", ts, ok)
	}
}

func TestEstimateDepletionMonotonic(t *testing.T) {
	s := snap(1_000_000, 0)
	prev := int64(maxTimestamp)
	for drain := int64(1); drain <= 5000; drain += 37 {
		ts, ok := EstimateDepletionTimestamp(s, big.NewInt(-drain))
		if !ok {
			t.Fatalf("drain %d: expected depletion", drain)
		}
		if ts > prev {
			t.Fatalf("drain %d: depletion moved later (%d > %d)", drain, ts, prev)
		}
		prev = ts
	}
}

func TestMembershipInflow(t *testing.T) {
	m := Membership{
		Units:                  big.NewInt(10),
		Connected:              true,
		PoolFlowRate:           big.NewInt(1000),
		PoolAdjustmentFlowRate: big.NewInt(0),
		PoolTotalUnits:         big.NewInt(100),
	}
	if got := MembershipInflow(m); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("connected inflow: got %s", got)
	}

	m.Connected = false
	if got := MembershipInflow(m); got.Sign() != 0 {
		t.Fatalf("disconnected inflow: got %s", got)
	}

	m.Connected = true
	m.PoolAdjustmentFlowRate = big.NewInt(300)
	if got := MembershipInflow(m); got.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("adjusted inflow: got %s", got)
	}

	m.PoolTotalUnits = big.NewInt(0)
	if got := MembershipInflow(m); got.Sign() != 0 {
		t.Fatalf("empty pool inflow: got %s", got)
	}
}

func TestEstimateDepletionWithFlows(t *testing.T) {
	s := snap(10_000, 0)
	flows := FlowContext{
		AccountNetFlowRate: big.NewInt(-50),
		Memberships: []Membership{{
			Units:          big.NewInt(10),
			Connected:      true,
			PoolFlowRate:   big.NewInt(1000),
			PoolTotalUnits: big.NewInt(100),
		}},
		ReplacedFlowRate: big.NewInt(-20),
	}

	// -50 + 100 - (-20) + (-170) = -100
	ts, ok := EstimateDepletionWithFlows(s, flows, big.NewInt(-170))
	if !ok || ts != baseTS+100 {
		t.Fatalf("combined drain: got %d %v", ts, ok)
	}

	// -50 + 100 + 20 - 70 = 0
	if _, ok := EstimateDepletionWithFlows(s, flows, big.NewInt(-70)); ok {
		t.Fatalf("zero combined rate must not deplete")
	}
}

func TestBalanceSnapshotJSONRoundTrip(t *testing.T) {
	balance, _ := new(big.Int).SetString("987654321987654321987654321", 10)
	rate, _ := new(big.Int).SetString("-380517503805175", 10)
	original := BalanceSnapshot{BalanceAtSnapshotTime: balance, SnapshotTimestamp: baseTS, NetFlowRate: rate}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal map failed: %v", err)
	}
	if _, ok := fields["balance_at_snapshot_time"].(string); !ok {
		t.Fatalf("balance should be encoded as string")
	}

	var decoded BalanceSnapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, at := range []int64{baseTS, baseTS + 1, baseTS + 86_400*365} {
		if ProjectBalanceAt(original, at).Cmp(ProjectBalanceAt(decoded, at)) != 0 {
			t.Fatalf("projection differs after round trip at %d", at)
		}
	}
}

func TestBalanceSnapshotUnmarshalInvalid(t *testing.T) {
	var s BalanceSnapshot
	err := json.Unmarshal([]byte(`{"balance_at_snapshot_time":"1.5","snapshot_timestamp":1,"net_flow_rate":"0"}`), &s)
	if err == nil {
		t.Fatalf("expected error for fractional balance")
	}
}

func TestProjectBalanceAtExtremeTimestamps(t *testing.T) {
	s := BalanceSnapshot{
		BalanceAtSnapshotTime: big.NewInt(1000),
		SnapshotTimestamp:     math.MinInt64 + 10,
		NetFlowRate:           big.NewInt(1),
	}
	at := int64(math.MaxInt64 - 10)

	want := new(big.Int).Sub(big.NewInt(at), big.NewInt(s.SnapshotTimestamp))
	want.Add(want, big.NewInt(1000))
	if got := ProjectBalanceAt(s, at); got.Cmp(want) != 0 {
		t.Fatalf("elapsed must not wrap: got %s want %s", got, want)
	}

	back := ProjectBalanceAt(BalanceSnapshot{
		BalanceAtSnapshotTime: big.NewInt(0),
		SnapshotTimestamp:     at,
		NetFlowRate:           big.NewInt(-1),
	}, s.SnapshotTimestamp)
	if back.Cmp(new(big.Int).Sub(want, big.NewInt(1000))) != 0 {
		t.Fatalf("backwards projection: got %s", back)
	}
}

func TestProjectAnnualRangeNearMaxTimestamp(t *testing.T) {
	now := int64(math.MaxInt64 - 100)
	s := BalanceSnapshot{
		BalanceAtSnapshotTime: big.NewInt(1000),
		SnapshotTimestamp:     now,
		NetFlowRate:           big.NewInt(1),
	}
	r := ProjectAnnualRange(s, big.NewInt(1), nil, now)

	for name, seg := range map[string]Segment{"current": r.Current, "new": r.New} {
		if seg.End.Timestamp < seg.Start.Timestamp {
			t.Fatalf("%s: end %d before start %d", name, seg.End.Timestamp, seg.Start.Timestamp)
		}
		if seg.End.Timestamp != maxTimestamp {
			t.Fatalf("%s: end should saturate, got %d", name, seg.End.Timestamp)
		}
		if seg.End.Balance.Cmp(big.NewInt(1100)) != 0 {
			t.Fatalf("%s: end balance got %s", name, seg.End.Balance)
		}
	}
}
