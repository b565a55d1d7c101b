package superfluid

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"flowScope/internal/model"
)

// DefaultCFAForwarder is the CFAv1Forwarder address shared by Superfluid deployments.
var DefaultCFAForwarder = common.HexToAddress("0xcfA132E353cB4E398080B9700609bb008eceB125")

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader reads realtime balances and flow rates from Superfluid contracts.
type Reader struct {
	caller    ContractCaller
	forwarder common.Address
}

// NewReader builds a Reader; a zero forwarder selects DefaultCFAForwarder.
func NewReader(caller ContractCaller, forwarder common.Address) *Reader {
	if forwarder == (common.Address{}) {
		forwarder = DefaultCFAForwarder
	}
	return &Reader{caller: caller, forwarder: forwarder}
}

// RealtimeBalanceOfNow returns the account's balance tuple as of the latest block.
func (r *Reader) RealtimeBalanceOfNow(ctx context.Context, token, account common.Address) (model.RealtimeBalance, error) {
	tokenABI, err := SuperTokenABI()
	if err != nil {
		return model.RealtimeBalance{}, fmt.Errorf("parse super token abi: %w", err)
	}
	values, err := r.call(ctx, token, tokenABI, "realtimeBalanceOfNow", account)
	if err != nil {
		return model.RealtimeBalance{}, err
	}
	if len(values) != 4 {
		return model.RealtimeBalance{}, fmt.Errorf("realtimeBalanceOfNow return size %d", len(values))
	}

	ints := make([]*big.Int, 0, 4)
	for i, v := range values {
		n, ok := v.(*big.Int)
		if !ok {
			return model.RealtimeBalance{}, fmt.Errorf("realtimeBalanceOfNow value %d unexpected type %T", i, v)
		}
		ints = append(ints, n)
	}
	if !ints[3].IsInt64() {
		return model.RealtimeBalance{}, fmt.Errorf("realtimeBalanceOfNow timestamp out of range: %s", ints[3])
	}

	return model.RealtimeBalance{
		Available:   ints[0].String(),
		Deposit:     ints[1].String(),
		OwedDeposit: ints[2].String(),
		Timestamp:   ints[3].Int64(),
	}, nil
}

// GetFlowrate returns the CFA flow rate from sender to receiver in tokens per second.
func (r *Reader) GetFlowrate(ctx context.Context, token, sender, receiver common.Address) (*big.Int, error) {
	forwarderABI, err := CFAForwarderABI()
	if err != nil {
		return nil, fmt.Errorf("parse forwarder abi: %w", err)
	}
	values, err := r.call(ctx, r.forwarder, forwarderABI, "getFlowrate", token, sender, receiver)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("getFlowrate return size %d", len(values))
	}
	rate, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getFlowrate unexpected type %T", values[0])
	}
	return rate, nil
}

// UnderlyingToken returns the wrapped ERC20, or the zero address for native or pure super tokens.
func (r *Reader) UnderlyingToken(ctx context.Context, token common.Address) (common.Address, error) {
	tokenABI, err := SuperTokenABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse super token abi: %w", err)
	}
	values, err := r.call(ctx, token, tokenABI, "getUnderlyingToken")
	if err != nil {
		return common.Address{}, err
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("getUnderlyingToken return size %d", len(values))
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("getUnderlyingToken unexpected type %T", values[0])
	}
	return addr, nil
}

func (r *Reader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if r.caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
