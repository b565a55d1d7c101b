package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}

// ParseOptionalAddress is ParseAddress that maps the empty string to the zero address.
func ParseOptionalAddress(input string) (common.Address, bool, error) {
	if strings.TrimSpace(input) == "" {
		return common.Address{}, false, nil
	}
	addr, err := ParseAddress(input)
	if err != nil {
		return common.Address{}, false, err
	}
	return addr, true, nil
}

// ParseTxHash converts a 0x-prefixed 32-byte hex string into common.Hash.
func ParseTxHash(input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid tx hash: %s", input)
	}
	if len(data) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid tx hash length: %s", input)
	}
	return common.BytesToHash(data), nil
}
