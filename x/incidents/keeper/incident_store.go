package keeper

import (
	"bytes"
	"context"
	"encoding/json"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

// GetIncident retrieves one incident of an account ledger.
func (k *Keeper) GetIncident(chainID, account string, typ types.IncidentType, id string) (types.Incident, bool, error) {
	key := types.IncidentKey(types.ScopePrefix(chainID, account), typ, id)
	bz, err := k.db.Get(key)
	if err != nil {
		return types.Incident{}, false, err
	}
	if bz == nil {
		return types.Incident{}, false, nil
	}

	var inc types.Incident
	if err := json.Unmarshal(bz, &inc); err != nil {
		return types.Incident{}, false, types.ErrInvalidIncident.Wrapf("decode %s/%s: %s", typ, id, err)
	}
	return inc, true, nil
}

// HasSynced reports whether a synced record exists for (typ, id).
func (k *Keeper) HasSynced(chainID, account string, typ types.IncidentType, id string) (bool, error) {
	inc, found, err := k.GetIncident(chainID, account, typ, id)
	if err != nil || !found {
		return false, err
	}
	return inc.Stage == types.StageSynced, nil
}

// SetIncidents stores incidents in one batch. A record replaces any previous
// record with the same (type, id), moving its ordering index entry.
func (k *Keeper) SetIncidents(incidents ...types.Incident) error {
	if len(incidents) == 0 {
		return nil
	}

	k.storeMu.Lock()
	defer k.storeMu.Unlock()
	return k.writeIncidents(incidents)
}

func (k *Keeper) writeIncidents(incidents []types.Incident) error {
	batch := k.db.NewBatch()
	defer batch.Close()

	for _, inc := range incidents {
		if err := k.setIncident(batch, inc); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}

func (k *Keeper) setIncident(batch dbm.Batch, inc types.Incident) error {
	if err := inc.Validate(); err != nil {
		return err
	}

	scope := types.ScopePrefix(inc.ChainID, inc.Account)
	prev, found, err := k.GetIncident(inc.ChainID, inc.Account, inc.Type, inc.ID)
	if err != nil {
		return err
	}

	newIndex := types.IncidentHeightKey(scope, inc)
	if found {
		if oldIndex := types.IncidentHeightKey(scope, prev); !bytes.Equal(oldIndex, newIndex) {
			if err := batch.Delete(oldIndex); err != nil {
				return err
			}
		}
	}

	bz, err := json.Marshal(inc)
	if err != nil {
		return err
	}
	if err := batch.Set(types.IncidentKey(scope, inc.Type, inc.ID), bz); err != nil {
		return err
	}
	return batch.Set(newIndex, []byte{})
}

// RecordPending stores a just-broadcast transaction as a pending tx_out
// incident. An existing record for the hash is left untouched.
func (k *Keeper) RecordPending(_ context.Context, chainID, address, txHash string, payload json.RawMessage) error {
	k.storeMu.Lock()
	defer k.storeMu.Unlock()

	_, found, err := k.GetIncident(chainID, address, types.TypeTxOut, txHash)
	if err != nil || found {
		return err
	}

	k.logger.Debug("recording pending transaction", "chain", chainID, "account", address, "hash", txHash)
	return k.writeIncidents([]types.Incident{{
		Type:    types.TypeTxOut,
		ID:      txHash,
		ChainID: chainID,
		Account: address,
		Stage:   types.StagePending,
		Payload: payload,
	}})
}

// DeleteIncident removes a record and its index entry.
func (k *Keeper) DeleteIncident(chainID, account string, typ types.IncidentType, id string) error {
	k.storeMu.Lock()
	defer k.storeMu.Unlock()

	inc, found, err := k.GetIncident(chainID, account, typ, id)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrIncidentNotFound.Wrapf("%s/%s", typ, id)
	}

	scope := types.ScopePrefix(chainID, account)
	batch := k.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(types.IncidentKey(scope, typ, id)); err != nil {
		return err
	}
	if err := batch.Delete(types.IncidentHeightKey(scope, inc)); err != nil {
		return err
	}
	return batch.WriteSync()
}
