package types

import (
	"encoding/binary"

	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	ModuleName = "tokenhistory"

	StoreKey = ModuleName

	DefaultPageSize uint32 = 10
)

var (
	HistoryEntryKey = []byte("history_entry")
)

// ScopePrefix identifies the cache of one history kind of one token for one account.
// Key: len(chainID) + chainID + len(account) + account + len(contract) + contract + len(kind) + kind
func ScopePrefix(chainID, account, contract string, kind Kind) []byte {
	key := address.MustLengthPrefix([]byte(chainID))
	key = append(key, address.MustLengthPrefix([]byte(account))...)
	key = append(key, address.MustLengthPrefix([]byte(contract))...)
	return append(key, address.MustLengthPrefix([]byte(kind))...)
}

// EntryPrefix is the prefix of every cached entry of a scope.
func EntryPrefix(scope []byte) []byte {
	return append(append([]byte{}, HistoryEntryKey...), scope...)
}

// EntryKey creates the key of the entry at index.
// Key: HistoryEntryKey + Scope + Index (8)
func EntryKey(scope []byte, index uint64) []byte {
	indexBz := make([]byte, 8)
	binary.BigEndian.PutUint64(indexBz, index)
	return append(EntryPrefix(scope), indexBz...)
}
