package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProjectionRecordJSON(t *testing.T) {
	liq := int64(1_700_000_100)
	record := ProjectionRecord{
		Account:                "0xabc",
		Token:                  "0xdef",
		ObservedAt:             time.Unix(1_700_000_000, 0).UTC(),
		SnapshotTimestamp:      1_699_999_990,
		CurrentStartingBalance: "123456789012345678901234567890",
		NewStartingBalance:     "123456789012345678901234567890",
		CurrentTotalFlowRate:   "-3858024691358024",
		NewTotalFlowRate:       "-3858024691358024",
		NewLiquidation:         &liq,
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal map failed: %v", err)
	}
	if _, ok := fields["current_starting_balance"].(string); !ok {
		t.Fatalf("balances must be encoded as strings")
	}
	if _, ok := fields["receiver"]; ok {
		t.Fatalf("empty receiver should be omitted")
	}
	if _, ok := fields["current_liquidation"]; ok {
		t.Fatalf("nil liquidation should be omitted")
	}

	var decoded ProjectionRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.NewLiquidation == nil || *decoded.NewLiquidation != liq {
		t.Fatalf("liquidation mismatch: %v", decoded.NewLiquidation)
	}
	if !decoded.ObservedAt.Equal(record.ObservedAt) {
		t.Fatalf("observed_at mismatch: %s", decoded.ObservedAt)
	}
}

func TestTokenMetaLabel(t *testing.T) {
	if got := (TokenMeta{Address: "0x1", Symbol: "DAIx"}).Label(); got != "DAIx" {
		t.Fatalf("label: got %s", got)
	}
	if got := (TokenMeta{Address: "0x1"}).Label(); got != "0x1" {
		t.Fatalf("fallback label: got %s", got)
	}
}
