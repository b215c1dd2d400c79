package types

import (
	"fmt"
	"strings"

	"github.com/cometbft/cometbft/crypto/tmhash"
	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"

	"github.com/TrustedSmartChain/walletcore/client"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

type SignMode int

const (
	SignModeDirect SignMode = iota
	SignModeAminoJSON
)

func (m SignMode) Proto() (signing.SignMode, error) {
	switch m {
	case SignModeDirect:
		return signing.SignMode_SIGN_MODE_DIRECT, nil
	case SignModeAminoJSON:
		return signing.SignMode_SIGN_MODE_LEGACY_AMINO_JSON, nil
	default:
		return signing.SignMode_SIGN_MODE_UNSPECIFIED, ErrInvalidSignMode.Wrapf("%d", m)
	}
}

func ParseSignMode(s string) (SignMode, error) {
	switch strings.ToLower(s) {
	case "", "direct":
		return SignModeDirect, nil
	case "amino-json", "amino":
		return SignModeAminoJSON, nil
	default:
		return 0, ErrInvalidSignMode.Wrap(s)
	}
}

// ValidateBroadcastMode accepts SYNC and ASYNC only.
func ValidateBroadcastMode(mode txtypes.BroadcastMode) error {
	switch mode {
	case txtypes.BroadcastMode_BROADCAST_MODE_SYNC, txtypes.BroadcastMode_BROADCAST_MODE_ASYNC:
		return nil
	default:
		return ErrInvalidBroadcastMode.Wrapf("%s", mode)
	}
}

func ParseBroadcastMode(s string) (txtypes.BroadcastMode, error) {
	switch strings.ToLower(s) {
	case "sync":
		return txtypes.BroadcastMode_BROADCAST_MODE_SYNC, nil
	case "async":
		return txtypes.BroadcastMode_BROADCAST_MODE_ASYNC, nil
	default:
		return txtypes.BroadcastMode_BROADCAST_MODE_UNSPECIFIED, ErrInvalidBroadcastMode.Wrap(s)
	}
}

// SignerState is read from the chain for every signing operation.
type SignerState struct {
	AccountNumber uint64
	Sequence      uint64
	ChainID       string
}

// SignedTransaction is the signed form handed to broadcast.
type SignedTransaction struct {
	BodyBytes     []byte
	AuthInfoBytes []byte
	Signatures    [][]byte
}

// Bytes serializes the transaction as TxRaw.
func (t SignedTransaction) Bytes() ([]byte, error) {
	raw := txtypes.TxRaw{
		BodyBytes:     t.BodyBytes,
		AuthInfoBytes: t.AuthInfoBytes,
		Signatures:    t.Signatures,
	}
	return raw.Marshal()
}

// TxHash is the uppercase hex sha256 of the serialized transaction.
func TxHash(txBytes []byte) string {
	return fmt.Sprintf("%X", tmhash.Sum(txBytes))
}

// BroadcastRequest describes one transaction. Messages are converted from
// Amino; Canonical messages are appended after them as given.
type BroadcastRequest struct {
	Chain         client.ChainInfo
	Signer        Signer
	Messages      []msgtypes.AminoMsg
	Canonical     []*msgtypes.CanonicalMessage
	Memo          string
	GasLimit      uint64
	Fee           GasFee
	Mode          txtypes.BroadcastMode
	SignMode      SignMode
	TimeoutHeight uint64
}

type BroadcastResult struct {
	TxHash    string `json:"txhash"`
	Code      uint32 `json:"code"`
	Codespace string `json:"codespace,omitempty"`
	RawLog    string `json:"raw_log,omitempty"`
	Height    int64  `json:"height"`
	GasWanted int64  `json:"gas_wanted"`
	GasUsed   int64  `json:"gas_used"`
}

func NewBroadcastResult(resp *sdk.TxResponse) *BroadcastResult {
	return &BroadcastResult{
		TxHash:    resp.TxHash,
		Code:      resp.Code,
		Codespace: resp.Codespace,
		RawLog:    resp.RawLog,
		Height:    resp.Height,
		GasWanted: resp.GasWanted,
		GasUsed:   resp.GasUsed,
	}
}
