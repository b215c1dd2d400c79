package types

import (
	"context"
	"encoding/json"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"

	"github.com/TrustedSmartChain/walletcore/client"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

// Signer is the signing-key capability of one account. Implementations never
// hand out private key bytes.
type Signer interface {
	Address() sdk.AccAddress
	PubKey() cryptotypes.PubKey
	Sign(msg []byte) ([]byte, error)
	ECDH(otherPubKey []byte) ([]byte, error)
}

// ChainClient defines the chain endpoints the pipeline uses.
type ChainClient interface {
	Account(ctx context.Context, address string) (client.AccountInfo, error)
	BroadcastTx(ctx context.Context, txBytes []byte, mode txtypes.BroadcastMode) (*sdk.TxResponse, error)
	Simulate(ctx context.Context, txBytes []byte) (*sdk.GasInfo, error)
}

// MessageConverter defines the expected interface for the msgs module.
type MessageConverter interface {
	AminoToProto(msg msgtypes.AminoMsg) (*msgtypes.CanonicalMessage, error)
	ProtoToAmino(msg *codectypes.Any, prefix string) (msgtypes.AminoMsg, error)
}

// PendingRecorder stores a just-broadcast transaction until sync observes it
// on chain.
type PendingRecorder interface {
	RecordPending(ctx context.Context, chainID, address, txHash string, payload json.RawMessage) error
}
