package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress reports whether s is a syntactically valid EVM address:
// 40 hex characters, with or without a leading "0x".
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// CanonicalAddress lowercases a syntactically valid EVM address for use as
// a ledger/registry key. Callers must check IsValidAddress first.
func CanonicalAddress(s string) string {
	return strings.ToLower(common.HexToAddress(s).Hex())
}
