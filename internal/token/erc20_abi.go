package token

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

// Some older tokens return bytes32 for symbol and name.
const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	stringABI     abi.ABI
	stringABIOnce sync.Once
	stringABIErr  error

	bytes32ABI     abi.ABI
	bytes32ABIOnce sync.Once
	bytes32ABIErr  error
)

func erc20StringABI() (abi.ABI, error) {
	stringABIOnce.Do(func() {
		stringABI, stringABIErr = abi.JSON(strings.NewReader(erc20ABIStringJSON))
	})
	return stringABI, stringABIErr
}

func erc20Bytes32ABI() (abi.ABI, error) {
	bytes32ABIOnce.Do(func() {
		bytes32ABI, bytes32ABIErr = abi.JSON(strings.NewReader(erc20ABIBytes32JSON))
	})
	return bytes32ABI, bytes32ABIErr
}
