package types

import (
	"encoding/binary"

	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	ModuleName = "incidents"

	StoreKey = ModuleName

	DefaultPageLimit uint64 = 100
)

var (
	IncidentByIDKey     = []byte("incident_by_id")
	IncidentByHeightKey = []byte("incident_by_height")
	SyncCursorKey       = []byte("sync_cursor")
)

// pendingIndexHeight sorts pending records above every synced height.
const pendingIndexHeight = ^uint64(0)

// ScopePrefix identifies the ledger of one account on one chain.
// Key: len(chainID) + chainID + len(account) + account
func ScopePrefix(chainID, account string) []byte {
	return append(address.MustLengthPrefix([]byte(chainID)), address.MustLengthPrefix([]byte(account))...)
}

// IncidentKey creates the primary key of an incident.
// Key: IncidentByIDKey + Scope + len(type) + type + id
func IncidentKey(scope []byte, typ IncidentType, id string) []byte {
	key := append([]byte{}, IncidentByIDKey...)
	key = append(key, scope...)
	key = append(key, address.MustLengthPrefix([]byte(typ))...)
	return append(key, id...)
}

// IncidentHeightKey creates the ordering index entry of an incident.
// Key: IncidentByHeightKey + Scope + Height (8) + len(type) + type + id
func IncidentHeightKey(scope []byte, inc Incident) []byte {
	h := pendingIndexHeight
	if inc.Stage == StageSynced {
		h = uint64(inc.Height)
	}
	heightBz := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBz, h)

	key := append([]byte{}, IncidentByHeightKey...)
	key = append(key, scope...)
	key = append(key, heightBz...)
	key = append(key, address.MustLengthPrefix([]byte(inc.Type))...)
	return append(key, inc.ID...)
}

func IncidentHeightPrefix(scope []byte) []byte {
	return append(append([]byte{}, IncidentByHeightKey...), scope...)
}

// SyncCursorStoreKey creates the key of the watermark for one sync key.
func SyncCursorStoreKey(syncKey string) []byte {
	return append(append([]byte{}, SyncCursorKey...), syncKey...)
}
