package types

import (
	"context"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"

	"github.com/TrustedSmartChain/walletcore/client"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

// ChainClient defines the chain endpoints sync reads.
type ChainClient interface {
	LatestHeight(ctx context.Context) (int64, error)
	SearchTxs(ctx context.Context, req client.TxSearchRequest) (*client.TxSearchPage, error)
}

// MessageConverter defines the expected interface for the msgs module.
type MessageConverter interface {
	ProtoToAmino(msg *codectypes.Any, prefix string) (msgtypes.AminoMsg, error)
}

// EventSource delivers committed transactions as they happen.
type EventSource interface {
	Subscribe(ctx context.Context, query string) (<-chan client.TxEvent, error)
}

// IncidentHooks are notified of newly stored synced incidents.
type IncidentHooks interface {
	AfterIncidentsSynced(ctx context.Context, incidents []Incident)
}
