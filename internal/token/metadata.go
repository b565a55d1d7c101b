package token

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"flowScope/internal/model"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Cache caches token metadata by address.
type Cache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewCache() *Cache {
	return &Cache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *Cache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Resolver loads token metadata once per address.
type Resolver struct {
	caller ContractCaller
	cache  *Cache
	logger *zap.Logger
}

func NewResolver(caller ContractCaller, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{caller: caller, cache: NewCache(), logger: logger}
}

// Resolve returns cached metadata or fetches it from chain.
func (r *Resolver) Resolve(ctx context.Context, address common.Address) (model.TokenMeta, error) {
	if meta, ok := r.cache.Get(address); ok {
		return meta, nil
	}
	meta, err := FetchMeta(ctx, r.caller, address, r.logger)
	if err != nil {
		return meta, err
	}
	r.cache.Set(address, meta)
	return meta, nil
}

// FetchMeta loads decimals, symbol and name. Decimals are required; symbol and
// name fall back to bytes32 encodings and are left empty when both fail.
func FetchMeta(ctx context.Context, caller ContractCaller, address common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: address.Hex()}
	if caller == nil {
		return meta, fmt.Errorf("contract caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	strABI, err := erc20StringABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	b32ABI, err := erc20Bytes32ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &address, Data: data}
		resp, err := caller.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("%s returned nothing", method)
		}
		return values, nil
	}

	values, err := call("decimals", strABI)
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("unsupported decimals type %T", values[0])
	}
	meta.Decimals = decimals

	text := func(method string) string {
		if values, err := call(method, strABI); err == nil {
			if s, ok := values[0].(string); ok {
				return s
			}
		}
		values, err := call(method, b32ABI)
		if err != nil {
			logger.Debug("token text call failed", zap.String("method", method), zap.String("token", address.Hex()), zap.Error(err))
			return ""
		}
		s, _ := bytes32ToString(values[0])
		return s
	}
	meta.Symbol = text("symbol")
	meta.Name = text("name")

	return meta, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
