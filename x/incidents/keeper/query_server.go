package keeper

import (
	"context"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

// Incidents lists the ledger of one account newest first (pending records
// first of all). Pagination.Reverse lists oldest first. A page key continues
// from where the previous page stopped; otherwise Offset entries are skipped.
func (k *Keeper) Incidents(_ context.Context, req *types.IncidentsRequest) (*types.IncidentsResponse, error) {
	if req == nil || req.ChainID == "" || req.Account == "" {
		return nil, types.ErrInvalidSyncRequest.Wrap("chain id and account are required")
	}
	if req.Type != "" {
		if err := req.Type.Validate(); err != nil {
			return nil, err
		}
	}

	page := req.Pagination
	if page == nil {
		page = &query.PageRequest{}
	}
	limit := page.Limit
	if limit == 0 {
		limit = types.DefaultPageLimit
	}
	newestFirst := !page.Reverse

	scope := types.ScopePrefix(req.ChainID, req.Account)
	prefix := types.IncidentHeightPrefix(scope)
	start, end := prefix, prefixEndBytes(prefix)
	if len(page.Key) != 0 {
		if newestFirst {
			end = append(append([]byte{}, page.Key...), 0x00)
		} else {
			start = page.Key
		}
	}

	var (
		iterator dbm.Iterator
		err      error
	)
	if newestFirst {
		iterator, err = k.db.ReverseIterator(start, end)
	} else {
		iterator, err = k.db.Iterator(start, end)
	}
	if err != nil {
		return nil, err
	}
	defer iterator.Close()

	var (
		incidents = make([]types.Incident, 0, min(limit, types.DefaultPageLimit))
		skipped   uint64
		total     uint64
		nextKey   []byte
	)
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		typ, id, ok := parseHeightKey(key, len(prefix))
		if !ok || (req.Type != "" && typ != req.Type) {
			continue
		}
		total++

		if len(page.Key) == 0 && skipped < page.Offset {
			skipped++
			continue
		}
		if uint64(len(incidents)) >= limit {
			if nextKey == nil {
				nextKey = append([]byte{}, key...)
			}
			if !page.CountTotal {
				break
			}
			continue
		}

		inc, found, err := k.GetIncident(req.ChainID, req.Account, typ, id)
		if err != nil {
			return nil, err
		}
		if !found {
			k.logger.Error("dangling incident index entry", "type", typ, "id", id)
			continue
		}
		incidents = append(incidents, inc)
	}

	resp := &types.IncidentsResponse{
		Incidents:  incidents,
		Pagination: &query.PageResponse{NextKey: nextKey},
	}
	if page.CountTotal && len(page.Key) == 0 {
		resp.Pagination.Total = total
	}
	return resp, nil
}

// parseHeightKey splits Prefix + Height (8) + len(type) + type + id.
func parseHeightKey(key []byte, prefixLen int) (types.IncidentType, string, bool) {
	if len(key) < prefixLen+8+1 {
		return "", "", false
	}
	rest := key[prefixLen+8:]
	typeLen := int(rest[0])
	if len(rest) < 1+typeLen {
		return "", "", false
	}
	return types.IncidentType(rest[1 : 1+typeLen]), string(rest[1+typeLen:]), true
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
