package superfluid

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type fakeCaller struct {
	parsed  abi.ABI
	outputs map[string][]interface{}
	lastTo  common.Address
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.lastTo = *msg.To
	for name, method := range f.parsed.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}
		out, ok := f.outputs[name]
		if !ok {
			return nil, fmt.Errorf("no output for %s", name)
		}
		return method.Outputs.Pack(out...)
	}
	return nil, fmt.Errorf("unknown selector %x", msg.Data[:4])
}

var (
	token    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	account  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	receiver = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func TestRealtimeBalanceOfNow(t *testing.T) {
	parsed, err := SuperTokenABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	available, _ := new(big.Int).SetString("-12345678901234567890", 10)
	caller := &fakeCaller{parsed: parsed, outputs: map[string][]interface{}{
		"realtimeBalanceOfNow": {available, big.NewInt(400), big.NewInt(0), big.NewInt(1_700_000_000)},
	}}

	got, err := NewReader(caller, common.Address{}).RealtimeBalanceOfNow(context.Background(), token, account)
	if err != nil {
		t.Fatalf("realtime balance: %v", err)
	}
	if got.Available != "-12345678901234567890" || got.Deposit != "400" || got.OwedDeposit != "0" {
		t.Fatalf("balance mismatch: %+v", got)
	}
	if got.Timestamp != 1_700_000_000 {
		t.Fatalf("timestamp mismatch: %d", got.Timestamp)
	}
	if caller.lastTo != token {
		t.Fatalf("call should target the token, got %s", caller.lastTo.Hex())
	}
}

func TestGetFlowrate(t *testing.T) {
	parsed, err := CFAForwarderABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	caller := &fakeCaller{parsed: parsed, outputs: map[string][]interface{}{
		"getFlowrate": {big.NewInt(385802469135)},
	}}

	rate, err := NewReader(caller, common.Address{}).GetFlowrate(context.Background(), token, account, receiver)
	if err != nil {
		t.Fatalf("get flowrate: %v", err)
	}
	if rate.Cmp(big.NewInt(385802469135)) != 0 {
		t.Fatalf("rate mismatch: %s", rate)
	}
	if caller.lastTo != DefaultCFAForwarder {
		t.Fatalf("call should target the forwarder, got %s", caller.lastTo.Hex())
	}
}

func TestUnderlyingToken(t *testing.T) {
	parsed, err := SuperTokenABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	caller := &fakeCaller{parsed: parsed, outputs: map[string][]interface{}{
		"getUnderlyingToken": {receiver},
	}}

	got, err := NewReader(caller, common.Address{}).UnderlyingToken(context.Background(), token)
	if err != nil {
		t.Fatalf("underlying: %v", err)
	}
	if got != receiver {
		t.Fatalf("underlying mismatch: %s", got.Hex())
	}
}

func TestReaderNilCaller(t *testing.T) {
	if _, err := NewReader(nil, common.Address{}).GetFlowrate(context.Background(), token, account, receiver); err == nil {
		t.Fatalf("expected error for nil caller")
	}
}
