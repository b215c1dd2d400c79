package keeper

import (
	"context"
	"strings"
	"time"

	"github.com/TrustedSmartChain/walletcore/metrics"
	"github.com/TrustedSmartChain/walletcore/notify"
	incidenttypes "github.com/TrustedSmartChain/walletcore/x/incidents/types"
	"github.com/TrustedSmartChain/walletcore/x/tokenhistory/types"
)

// maxPages bounds one refresh against a contract that never reports an end.
const maxPages = 1000

// Refresh pulls the token history of req.Account page by page and merges it
// into the cache. Records already cached are skipped by content hash, so
// overlapping pages never duplicate an entry. New entries are persisted in one
// batch and returned in discovery order; they are then projected into
// token_in/token_out incidents and incoming ones are announced. Neither of
// those steps can undo the cache write.
func (k Keeper) Refresh(ctx context.Context, req types.RefreshRequest) ([]types.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = types.DefaultPageSize
	}

	scope := types.ScopePrefix(req.Chain.ChainID, req.Account, req.Contract, req.Kind)
	unlock := k.scopeLocks.Lock(string(scope))
	defer unlock()

	state, err := k.LoadState(scope)
	if err != nil {
		return nil, err
	}

	vk, err := k.computeKeeper.ActiveViewingKey(req.Chain, req.Account, req.Contract)
	if err != nil {
		return nil, err
	}
	defer vk.Wipe()
	viewingKey := vk.String()

	var fresh []types.Entry
	for page := uint32(0); page < maxPages; page++ {
		query, err := types.HistoryQuery(req.Kind, req.Account, viewingKey, page, pageSize)
		if err != nil {
			return nil, err
		}
		bz, err := k.computeKeeper.QueryContract(ctx, req.Signer, req.Chain, req.Contract, req.CodeHash, query)
		if err != nil {
			return nil, err
		}
		result, err := types.ParseHistoryPage(req.Kind, bz)
		if err != nil {
			return nil, err
		}

		for _, record := range result.Txs {
			e, added, err := state.Add(record)
			if err != nil {
				return nil, err
			}
			if added {
				fresh = append(fresh, e)
			}
		}
		k.logger.Debug("history page", "contract", req.Contract, "page", page, "txs", len(result.Txs), "cached", state.Len())

		if result.Total != nil && uint64(state.Len()) >= *result.Total {
			break
		}
		if uint32(len(result.Txs)) < pageSize {
			break
		}
	}

	if err := k.saveEntries(scope, fresh); err != nil {
		return nil, err
	}
	metrics.HistoryEntriesTotal.Add(float64(len(fresh)))
	k.logger.Info("history refreshed", "contract", req.Contract, "kind", req.Kind, "new", len(fresh), "cached", state.Len())

	k.project(req, fresh)
	return fresh, nil
}

// project turns new entries into ledger incidents and notifications. It
// only logs failures.
func (k Keeper) project(req types.RefreshRequest, entries []types.Entry) {
	var incidents []incidenttypes.Incident
	for _, e := range entries {
		mv, err := types.ClassifyRecord(e.Record, req.Account)
		if err != nil {
			k.logger.Error("unclassifiable history record", "hash", e.Hash, "err", err)
			continue
		}

		var typ incidenttypes.IncidentType
		switch mv.Direction {
		case types.DirectionIn:
			typ = incidenttypes.TypeTokenIn
		case types.DirectionOut:
			typ = incidenttypes.TypeTokenOut
		default:
			continue
		}

		incidents = append(incidents, incidenttypes.Incident{
			Type:      typ,
			ID:        req.Contract + ":" + e.Hash,
			ChainID:   req.Chain.ChainID,
			Account:   req.Account,
			Stage:     incidenttypes.StageSynced,
			Height:    mv.Height,
			Timestamp: mv.Timestamp(),
			Payload:   e.Record,
		})

		if typ == incidenttypes.TypeTokenIn {
			k.announce(req, e, mv)
		}
	}

	if k.incidentsKeeper == nil || len(incidents) == 0 {
		return
	}
	if err := k.incidentsKeeper.SetIncidents(incidents...); err != nil {
		k.logger.Error("failed to record token incidents", "contract", req.Contract, "count", len(incidents), "err", err)
	}
}

func (k Keeper) announce(req types.RefreshRequest, e types.Entry, mv types.Movement) {
	if k.notifier == nil {
		return
	}
	ts := mv.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	n := notify.Notification{
		Chain:     req.Chain.ChainID,
		Account:   req.Account,
		Kind:      string(incidenttypes.TypeTokenIn),
		Title:     "Received " + strings.ToUpper(mv.Denom),
		Body:      mv.String(),
		Reference: req.Contract + ":" + e.Hash,
		Timestamp: ts,
	}
	if !k.notifier.Enqueue(n) {
		k.logger.Error("token notification not queued", "reference", n.Reference)
	}
}
