package keeper

import (
	"encoding/json"

	"github.com/TrustedSmartChain/walletcore/x/tokenhistory/types"
)

// LoadState reads the cached entries of a scope in insertion order.
func (k Keeper) LoadState(scope []byte) (*types.CacheState, error) {
	prefix := types.EntryPrefix(scope)
	iterator, err := k.db.Iterator(prefix, prefixEndBytes(prefix))
	if err != nil {
		return nil, err
	}
	defer iterator.Close()

	state := types.NewCacheState()
	for ; iterator.Valid(); iterator.Next() {
		var e types.Entry
		if err := json.Unmarshal(iterator.Value(), &e); err != nil {
			return nil, types.ErrCorruptCache.Wrapf("entry %x: %s", iterator.Key(), err)
		}
		if e.Index != uint64(len(state.Hashes)) {
			return nil, types.ErrCorruptCache.Wrapf("entry %s has index %d, expected %d", e.Hash, e.Index, len(state.Hashes))
		}
		state.Hashes = append(state.Hashes, e.Hash)
		state.Entries[e.Hash] = e
	}
	return state, iterator.Error()
}

// saveEntries appends entries to the scope in one batch.
func (k Keeper) saveEntries(scope []byte, entries []types.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := k.db.NewBatch()
	defer batch.Close()

	for _, e := range entries {
		bz, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := batch.Set(types.EntryKey(scope, e.Index), bz); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}

// History returns the cached entries of one token history in insertion order.
func (k Keeper) History(chainID, account, contract string, kind types.Kind) ([]types.Entry, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	state, err := k.LoadState(types.ScopePrefix(chainID, account, contract, kind))
	if err != nil {
		return nil, err
	}
	return state.Ordered(), nil
}

func prefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end
		}
	}
	return nil
}
