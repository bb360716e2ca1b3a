package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// transactionsABIJSON is the fixed ABI of the deployed Transactions contract.
// The pipeline is specific to this one value-transfer call shape; arbitrary
// contracts are out of scope.
const transactionsABIJSON = `[
  {
    "type": "function",
    "name": "transfer",
    "stateMutability": "payable",
    "inputs": [
      {"name": "receiver", "type": "address"},
      {"name": "amount", "type": "uint256"},
      {"name": "message", "type": "string"},
      {"name": "accountLabel", "type": "string"},
      {"name": "keyword", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "transferBatch",
    "stateMutability": "payable",
    "inputs": [
      {"name": "receivers", "type": "address[]"},
      {"name": "amounts", "type": "uint256[]"},
      {"name": "message", "type": "string"},
      {"name": "keyword", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getAllTransactions",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [
      {
        "name": "",
        "type": "tuple[]",
        "components": [
          {"name": "sender", "type": "address"},
          {"name": "receiver", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "message", "type": "string"},
          {"name": "timestamp", "type": "uint256"},
          {"name": "keyword", "type": "string"}
        ]
      }
    ]
  },
  {
    "type": "function",
    "name": "getTransactionCount",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256"}]
  }
]`

// transactionsABI is the parsed contract ABI, shared by all gateways.
var transactionsABI = mustParseABI(transactionsABIJSON)

func mustParseABI(jsonABI string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(jsonABI))
	if err != nil {
		panic("gateway: invalid contract ABI: " + err.Error())
	}
	return parsed
}
