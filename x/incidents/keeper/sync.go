package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"golang.org/x/sync/errgroup"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/metrics"
	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

// undecodedMsg stands in for a message type the registry does not know.
type undecodedMsg struct {
	TypeURL   string `json:"type_url"`
	Undecoded bool   `json:"undecoded"`
}

type txPayload struct {
	Memo      string    `json:"memo,omitempty"`
	Msgs      []any     `json:"msgs"`
	Fee       sdk.Coins `json:"fee,omitempty"`
	GasWanted int64     `json:"gas_wanted"`
	GasUsed   int64     `json:"gas_used"`
	RawLog    string    `json:"raw_log,omitempty"`
}

// Sync runs one pass for req. Transactions are read newest first until the
// stored watermark is reached, every transaction without a synced record is
// stored and returned in discovery order, and the watermark then moves to the
// tip read at the start of the pass. A failed pass leaves the watermark as it
// was; incidents stored before the failure stay and are skipped next time.
//
// The early stop at the watermark relies on the node returning results in
// strictly descending height order.
func (k *Keeper) Sync(ctx context.Context, req types.SyncRequest) ([]types.Incident, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	syncKey := req.SyncKey()
	unlock := k.syncLocks.Lock(syncKey)
	defer unlock()

	emitted, err := k.syncPass(ctx, req)
	if err != nil {
		metrics.SyncPassesTotal.WithLabelValues("error").Inc()
		k.logger.Error("sync pass failed", "key", syncKey, "emitted", len(emitted), "err", err)
		return emitted, err
	}
	metrics.SyncPassesTotal.WithLabelValues("ok").Inc()

	if len(emitted) > 0 && k.hooks != nil {
		k.hooks.AfterIncidentsSynced(ctx, emitted)
	}
	return emitted, nil
}

func (k *Keeper) syncPass(ctx context.Context, req types.SyncRequest) ([]types.Incident, error) {
	cursor, err := k.GetCursor(req)
	if err != nil {
		return nil, err
	}

	tip, err := k.client.LatestHeight(ctx)
	if err != nil {
		return nil, err
	}
	if tip <= 0 {
		return nil, types.ErrInvalidTip.Wrapf("chain %s reported height %d", req.Chain.ChainID, tip)
	}

	limit := req.PageLimit
	if limit == 0 {
		limit = types.DefaultPageLimit
	}

	var (
		emitted []types.Incident
		fetched uint64
		pageKey []byte
		seen    = make(map[string]struct{})
	)
	for {
		page, err := k.client.SearchTxs(ctx, client.TxSearchRequest{
			Events: req.Events,
			Limit:  limit,
			Offset: fetched,
			Key:    pageKey,
		})
		if err != nil {
			return emitted, fmt.Errorf("%w: offset %d: %w", types.ErrPageFailed, fetched, err)
		}
		k.logger.Debug("sync page", "key", req.SyncKey(), "offset", fetched, "txs", len(page.Txs), "total", page.Total)

		var (
			fresh   []types.Incident
			reached bool
		)
		for _, tx := range page.Txs {
			if _, dup := seen[tx.TxHash]; !dup {
				seen[tx.TxHash] = struct{}{}

				synced, err := k.HasSynced(req.Chain.ChainID, req.Account, req.Type, tx.TxHash)
				if err != nil {
					return emitted, err
				}
				if !synced {
					fresh = append(fresh, k.toIncident(req, tx))
				}
			}
			// a tx at the watermark height may have been indexed after
			// the previous pass read it, so it is recorded before stopping
			if tx.Height <= cursor.Height {
				reached = true
				break
			}
		}

		if err := k.SetIncidents(fresh...); err != nil {
			return emitted, err
		}
		for _, inc := range fresh {
			metrics.IncidentsEmitted.WithLabelValues(string(inc.Type)).Inc()
		}
		emitted = append(emitted, fresh...)
		fetched += uint64(len(page.Txs))

		if reached || uint64(len(page.Txs)) < limit {
			break
		}
		more := len(page.NextKey) > 0 || fetched < page.Total
		if !more {
			break
		}
		pageKey = page.NextKey
	}

	advanced, err := k.AdvanceWatermark(req, tip)
	if err != nil {
		return emitted, err
	}
	k.logger.Info("sync pass complete", "key", req.SyncKey(), "emitted", len(emitted), "watermark", advanced.Height)
	return emitted, nil
}

// SyncAll runs independent sync keys concurrently and returns the emitted
// incidents of every request in request order. A failing key does not cancel
// the others; the first error is returned once all passes are done.
func (k *Keeper) SyncAll(ctx context.Context, reqs []types.SyncRequest) ([][]types.Incident, error) {
	out := make([][]types.Incident, len(reqs))
	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			emitted, err := k.Sync(ctx, req)
			out[i] = emitted
			return err
		})
	}
	return out, g.Wait()
}

func (k *Keeper) toIncident(req types.SyncRequest, tx *sdk.TxResponse) types.Incident {
	payload := txPayload{
		Msgs:      []any{},
		GasWanted: tx.GasWanted,
		GasUsed:   tx.GasUsed,
		RawLog:    tx.RawLog,
	}

	if tx.Tx != nil {
		var decoded txtypes.Tx
		if err := decoded.Unmarshal(tx.Tx.Value); err != nil {
			k.logger.Error("undecodable transaction", "hash", tx.TxHash, "err", err)
		} else {
			if decoded.Body != nil {
				payload.Memo = decoded.Body.Memo
				for _, anyMsg := range decoded.Body.Messages {
					payload.Msgs = append(payload.Msgs, k.convertMsg(req, anyMsg))
				}
			}
			if decoded.AuthInfo != nil && decoded.AuthInfo.Fee != nil {
				payload.Fee = decoded.AuthInfo.Fee.Amount
			}
		}
	}

	bz, err := json.Marshal(payload)
	if err != nil {
		k.logger.Error("unencodable transaction payload", "hash", tx.TxHash, "err", err)
	}

	return types.Incident{
		Type:      req.Type,
		ID:        tx.TxHash,
		ChainID:   req.Chain.ChainID,
		Account:   req.Account,
		Stage:     types.StageSynced,
		Height:    tx.Height,
		Timestamp: tx.Timestamp,
		Code:      tx.Code,
		Payload:   bz,
	}
}

func (k *Keeper) convertMsg(req types.SyncRequest, anyMsg *codectypes.Any) any {
	amino, err := k.converter.ProtoToAmino(anyMsg, req.Chain.Bech32Prefix)
	if err != nil {
		k.logger.Debug("keeping undecoded message", "type_url", anyMsg.TypeUrl, "err", err)
		return undecodedMsg{TypeURL: anyMsg.TypeUrl, Undecoded: true}
	}
	return amino
}
