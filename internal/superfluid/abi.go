package superfluid

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const superTokenABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "account", "type": "address"}],
    "name": "realtimeBalanceOfNow",
    "outputs": [
      {"internalType": "int256", "name": "availableBalance", "type": "int256"},
      {"internalType": "uint256", "name": "deposit", "type": "uint256"},
      {"internalType": "uint256", "name": "owedDeposit", "type": "uint256"},
      {"internalType": "uint256", "name": "timestamp", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getUnderlyingToken",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const cfaForwarderABIJSON = `[
  {
    "inputs": [
      {"internalType": "contract ISuperToken", "name": "token", "type": "address"},
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "address", "name": "receiver", "type": "address"}
    ],
    "name": "getFlowrate",
    "outputs": [{"internalType": "int96", "name": "flowrate", "type": "int96"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	superTokenABI     abi.ABI
	superTokenABIOnce sync.Once
	superTokenABIErr  error

	cfaForwarderABI     abi.ABI
	cfaForwarderABIOnce sync.Once
	cfaForwarderABIErr  error
)

// SuperTokenABI returns the parsed super token view ABI.
func SuperTokenABI() (abi.ABI, error) {
	superTokenABIOnce.Do(func() {
		superTokenABI, superTokenABIErr = abi.JSON(strings.NewReader(superTokenABIJSON))
	})
	return superTokenABI, superTokenABIErr
}

// CFAForwarderABI returns the parsed CFAv1Forwarder view ABI.
func CFAForwarderABI() (abi.ABI, error) {
	cfaForwarderABIOnce.Do(func() {
		cfaForwarderABI, cfaForwarderABIErr = abi.JSON(strings.NewReader(cfaForwarderABIJSON))
	})
	return cfaForwarderABI, cfaForwarderABIErr
}
