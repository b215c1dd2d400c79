package keeper

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	errorsmod "cosmossdk.io/errors"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"

	"github.com/TrustedSmartChain/walletcore/helpers"
	"github.com/TrustedSmartChain/walletcore/metrics"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
	"github.com/TrustedSmartChain/walletcore/x/txpipe/types"
)

// preparedTx is everything produced while signing one request.
type preparedTx struct {
	address string
	state   types.SignerState
	amino   []msgtypes.AminoMsg
	fee     sdk.Coins
	gas     uint64
	signed  types.SignedTransaction
	txBytes []byte
}

type pendingPayload struct {
	Memo   string              `json:"memo,omitempty"`
	Msgs   []msgtypes.AminoMsg `json:"msgs"`
	Fee    sdk.Coins           `json:"fee"`
	Gas    uint64              `json:"gas"`
	Mode   string              `json:"mode"`
	Height int64               `json:"height,omitempty"`
}

// Broadcast signs req with freshly read signer state and submits it. A
// transaction the chain rejects returns its result together with
// ErrChainRejected. The serialized transaction is returned whenever signing
// succeeded.
func (k Keeper) Broadcast(ctx context.Context, req types.BroadcastRequest) (*types.BroadcastResult, []byte, error) {
	mode := modeLabel(req.Mode)
	if err := types.ValidateBroadcastMode(req.Mode); err != nil {
		metrics.BroadcastTotal.WithLabelValues(mode, "invalid").Inc()
		return nil, nil, err
	}

	unlock := k.locks.Lock(lockKey(req))
	defer unlock()

	tx, err := k.prepare(ctx, req)
	if err != nil {
		metrics.BroadcastTotal.WithLabelValues(mode, "error").Inc()
		return nil, nil, err
	}

	resp, err := k.client.BroadcastTx(ctx, tx.txBytes, req.Mode)
	if err != nil {
		metrics.BroadcastTotal.WithLabelValues(mode, "error").Inc()
		return nil, tx.txBytes, err
	}

	result := types.NewBroadcastResult(resp)
	if result.TxHash == "" {
		result.TxHash = types.TxHash(tx.txBytes)
	}
	if resp.Code != 0 {
		metrics.BroadcastTotal.WithLabelValues(mode, "rejected").Inc()
		k.logger.Info("transaction rejected", "hash", result.TxHash, "code", resp.Code, "codespace", resp.Codespace)
		return result, tx.txBytes, types.ErrChainRejected.Wrapf("code %d (%s): %s", resp.Code, resp.Codespace, resp.RawLog)
	}

	metrics.BroadcastTotal.WithLabelValues(mode, "ok").Inc()
	k.logger.Info("transaction broadcast", "hash", result.TxHash, "chain", req.Chain.ChainID, "sequence", tx.state.Sequence)

	k.recordPending(ctx, req, tx, result)
	return result, tx.txBytes, nil
}

// Simulate runs the signing pipeline and asks the node for a gas estimate.
// Nothing is broadcast or recorded.
func (k Keeper) Simulate(ctx context.Context, req types.BroadcastRequest) (uint64, error) {
	unlock := k.locks.Lock(lockKey(req))
	defer unlock()

	tx, err := k.prepare(ctx, req)
	if err != nil {
		metrics.SimulateTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	info, err := k.client.Simulate(ctx, tx.txBytes)
	if err != nil {
		metrics.SimulateTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.SimulateTotal.WithLabelValues("ok").Inc()
	return info.GasUsed, nil
}

// Sign builds and signs req without submitting it.
func (k Keeper) Sign(ctx context.Context, req types.BroadcastRequest) (*types.SignedTransaction, error) {
	unlock := k.locks.Lock(lockKey(req))
	defer unlock()

	tx, err := k.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return &tx.signed, nil
}

func (k Keeper) prepare(ctx context.Context, req types.BroadcastRequest) (*preparedTx, error) {
	if req.Signer == nil {
		return nil, types.ErrWrongKeyType.Wrap("no signer")
	}
	signMode, err := req.SignMode.Proto()
	if err != nil {
		return nil, err
	}

	anys, amino, err := k.collectMessages(req)
	if err != nil {
		return nil, err
	}

	gas := req.GasLimit
	if gas == 0 {
		gas = types.DefaultGasLimit
	}
	fee, err := req.Fee.Compute(gas, req.Chain)
	if err != nil {
		return nil, err
	}

	address, err := sdk.Bech32ifyAddressBytes(req.Chain.Bech32Prefix, req.Signer.Address())
	if err != nil {
		return nil, errorsmod.Wrapf(msgtypes.ErrInvalidAddress, "signer: %s", err)
	}

	// never cached: a stale sequence is rejected by the chain
	acc, err := k.client.Account(ctx, address)
	if err != nil {
		return nil, err
	}
	state := types.SignerState{
		AccountNumber: acc.AccountNumber,
		Sequence:      acc.Sequence,
		ChainID:       req.Chain.ChainID,
	}

	body := txtypes.TxBody{
		Messages:      anys,
		Memo:          req.Memo,
		TimeoutHeight: req.TimeoutHeight,
	}
	bodyBytes, err := body.Marshal()
	if err != nil {
		return nil, err
	}

	pkAny, err := codectypes.NewAnyWithValue(req.Signer.PubKey())
	if err != nil {
		return nil, err
	}
	authInfo := txtypes.AuthInfo{
		SignerInfos: []*txtypes.SignerInfo{{
			PublicKey: pkAny,
			ModeInfo: &txtypes.ModeInfo{
				Sum: &txtypes.ModeInfo_Single_{Single: &txtypes.ModeInfo_Single{Mode: signMode}},
			},
			Sequence: state.Sequence,
		}},
		Fee: &txtypes.Fee{Amount: fee, GasLimit: gas},
	}
	authInfoBytes, err := authInfo.Marshal()
	if err != nil {
		return nil, err
	}

	var signBytes []byte
	switch req.SignMode {
	case types.SignModeAminoJSON:
		signBytes, err = types.AminoSignBytes(state, fee, gas, req.Memo, amino, req.TimeoutHeight)
	default:
		signBytes, err = types.DirectSignBytes(bodyBytes, authInfoBytes, state)
	}
	if err != nil {
		return nil, err
	}

	sig, err := req.Signer.Sign(signBytes)
	if err != nil {
		return nil, err
	}

	signed := types.SignedTransaction{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		Signatures:    [][]byte{sig},
	}
	txBytes, err := signed.Bytes()
	if err != nil {
		return nil, err
	}

	k.logger.Debug("signed transaction", "address", address, "chain", state.ChainID, "account_number", state.AccountNumber, "sequence", state.Sequence, "msgs", len(anys))

	return &preparedTx{
		address: address,
		state:   state,
		amino:   amino,
		fee:     fee,
		gas:     gas,
		signed:  signed,
		txBytes: txBytes,
	}, nil
}

// collectMessages converts every message to its Any form and its Amino form
// as the chain renders it. Each message that names a signer must name the
// request signer.
func (k Keeper) collectMessages(req types.BroadcastRequest) ([]*codectypes.Any, []msgtypes.AminoMsg, error) {
	canonical := make([]*msgtypes.CanonicalMessage, 0, len(req.Messages)+len(req.Canonical))
	for i, m := range req.Messages {
		cm, err := k.converter.AminoToProto(m)
		if err != nil {
			return nil, nil, errorsmod.Wrapf(err, "message %d", i)
		}
		canonical = append(canonical, cm)
	}
	canonical = append(canonical, req.Canonical...)
	if len(canonical) == 0 {
		return nil, nil, types.ErrNoMessages
	}

	signer := req.Signer.Address()
	anys := make([]*codectypes.Any, 0, len(canonical))
	amino := make([]msgtypes.AminoMsg, 0, len(canonical))
	for i, cm := range canonical {
		if addr, ok := cm.Signer(); ok && !bytes.Equal(addr, signer) {
			return nil, nil, types.ErrMultipleSigners.Wrapf("message %d (%s)", i, cm.ID)
		}
		if cm.Prefix == "" {
			withPrefix := *cm
			withPrefix.Prefix = req.Chain.Bech32Prefix
			cm = &withPrefix
		}

		anyMsg, err := cm.Encode()
		if err != nil {
			return nil, nil, errorsmod.Wrapf(err, "message %d", i)
		}
		am, err := k.converter.ProtoToAmino(anyMsg, req.Chain.Bech32Prefix)
		if err != nil {
			return nil, nil, errorsmod.Wrapf(err, "message %d", i)
		}
		anys = append(anys, anyMsg)
		amino = append(amino, am)
	}
	return anys, amino, nil
}

// recordPending is best effort; sync later replaces the record.
func (k Keeper) recordPending(ctx context.Context, req types.BroadcastRequest, tx *preparedTx, result *types.BroadcastResult) {
	if k.recorder == nil {
		return
	}
	payload, err := json.Marshal(pendingPayload{
		Memo:   req.Memo,
		Msgs:   tx.amino,
		Fee:    tx.fee,
		Gas:    tx.gas,
		Mode:   modeLabel(req.Mode),
		Height: result.Height,
	})
	if err == nil {
		err = k.recorder.RecordPending(ctx, req.Chain.ChainID, tx.address, result.TxHash, payload)
	}
	if err != nil {
		k.logger.Error("failed to record pending transaction", "hash", result.TxHash, "err", err)
	}
}

func lockKey(req types.BroadcastRequest) string {
	var addr string
	if req.Signer != nil {
		addr = req.Signer.Address().String()
	}
	return helpers.LockKey(addr, req.Chain.ChainID)
}

func modeLabel(mode txtypes.BroadcastMode) string {
	return strings.ToLower(strings.TrimPrefix(mode.String(), "BROADCAST_MODE_"))
}
