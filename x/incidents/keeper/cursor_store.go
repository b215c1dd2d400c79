package keeper

import (
	"encoding/json"

	"github.com/TrustedSmartChain/walletcore/metrics"
	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

// GetCursor returns the stored cursor of a sync key, or a zero watermark.
func (k *Keeper) GetCursor(req types.SyncRequest) (types.SyncCursor, error) {
	key := req.SyncKey()
	bz, err := k.db.Get(types.SyncCursorStoreKey(key))
	if err != nil {
		return types.SyncCursor{}, err
	}

	cursor := types.SyncCursor{ChainPath: req.ChainPath(), QueryKey: key}
	if bz == nil {
		return cursor, nil
	}
	if err := json.Unmarshal(bz, &cursor); err != nil {
		return types.SyncCursor{}, err
	}
	return cursor, nil
}

// AdvanceWatermark raises the watermark of req to height. A lower height
// leaves the stored value as is.
func (k *Keeper) AdvanceWatermark(req types.SyncRequest, height int64) (types.SyncCursor, error) {
	k.storeMu.Lock()
	defer k.storeMu.Unlock()

	cursor, err := k.GetCursor(req)
	if err != nil {
		return types.SyncCursor{}, err
	}
	if height <= cursor.Height {
		return cursor, nil
	}
	cursor.Height = height

	bz, err := json.Marshal(cursor)
	if err != nil {
		return types.SyncCursor{}, err
	}

	batch := k.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(types.SyncCursorStoreKey(cursor.QueryKey), bz); err != nil {
		return types.SyncCursor{}, err
	}
	if err := batch.WriteSync(); err != nil {
		return types.SyncCursor{}, err
	}

	metrics.SyncWatermark.WithLabelValues(req.Chain.ChainID).Set(float64(height))
	return cursor, nil
}
