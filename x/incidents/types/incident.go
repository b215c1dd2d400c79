package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/cosmos/cosmos-sdk/types/query"

	"github.com/TrustedSmartChain/walletcore/client"
)

type IncidentType string

const (
	TypeTxIn     IncidentType = "tx_in"
	TypeTxOut    IncidentType = "tx_out"
	TypeTokenIn  IncidentType = "token_in"
	TypeTokenOut IncidentType = "token_out"
)

func (t IncidentType) Validate() error {
	switch t {
	case TypeTxIn, TypeTxOut, TypeTokenIn, TypeTokenOut:
		return nil
	default:
		return ErrInvalidIncident.Wrapf("type %q", string(t))
	}
}

type Stage string

const (
	StagePending Stage = "pending"
	StageSynced  Stage = "synced"
)

// Incident is one ledger record of an account. It is unique by (Type, ID)
// within the account scope; a synced record replaces a pending one.
type Incident struct {
	Type      IncidentType    `json:"type"`
	ID        string          `json:"id"`
	ChainID   string          `json:"chain_id"`
	Account   string          `json:"account"`
	Stage     Stage           `json:"stage"`
	Height    int64           `json:"height"`
	Timestamp string          `json:"timestamp,omitempty"`
	Code      uint32          `json:"code"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (inc Incident) Validate() error {
	if err := inc.Type.Validate(); err != nil {
		return err
	}
	if inc.ID == "" {
		return ErrInvalidIncident.Wrap("empty id")
	}
	if inc.ChainID == "" || inc.Account == "" {
		return ErrInvalidIncident.Wrapf("%s/%s: missing scope", inc.Type, inc.ID)
	}
	if inc.Stage != StagePending && inc.Stage != StageSynced {
		return ErrInvalidIncident.Wrapf("%s/%s: stage %q", inc.Type, inc.ID, string(inc.Stage))
	}
	return nil
}

// SyncCursor is the persisted progress of one (chain, query) pair. Height is
// the watermark and never decreases. It is the only resume point: a pass
// that fails part way starts again from the newest result, skipping the
// incidents it already stored.
type SyncCursor struct {
	ChainPath string `json:"chain_path"`
	QueryKey  string `json:"query_key"`
	Height    int64  `json:"height"`
}

// SyncRequest selects the transactions of Account matching every filter in
// Events and records them as incidents of Type.
type SyncRequest struct {
	Chain     client.ChainInfo
	Account   string
	Type      IncidentType
	Events    []string
	PageLimit uint64
}

func (r SyncRequest) Validate() error {
	if r.Chain.ChainID == "" {
		return ErrInvalidSyncRequest.Wrap("missing chain id")
	}
	if r.Account == "" {
		return ErrInvalidSyncRequest.Wrap("missing account")
	}
	if len(r.Events) == 0 {
		return ErrInvalidSyncRequest.Wrap("no event filters")
	}
	return r.Type.Validate()
}

func (r SyncRequest) Query() string {
	return strings.Join(r.Events, " AND ")
}

// SyncKey is chain:type:sha256(query). Passes for the same key never overlap.
func (r SyncRequest) SyncKey() string {
	sum := sha256.Sum256([]byte(r.Query()))
	return r.Chain.ChainID + ":" + string(r.Type) + ":" + hex.EncodeToString(sum[:])
}

func (r SyncRequest) ChainPath() string {
	return r.Chain.Namespace() + ":" + r.Chain.Reference()
}

// DefaultSyncRequests covers the native transactions sent and received by account.
func DefaultSyncRequests(chain client.ChainInfo, account string) []SyncRequest {
	return []SyncRequest{
		{
			Chain:   chain,
			Account: account,
			Type:    TypeTxOut,
			Events:  []string{EventFilter(EventMessageSender, account)},
		},
		{
			Chain:   chain,
			Account: account,
			Type:    TypeTxIn,
			Events:  []string{EventFilter(EventTransferRecipient, account)},
		},
	}
}

type IncidentsRequest struct {
	ChainID    string
	Account    string
	Type       IncidentType
	Pagination *query.PageRequest
}

type IncidentsResponse struct {
	Incidents  []Incident
	Pagination *query.PageResponse
}
