package keeper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"regexp"

	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/x/compute/types"
	msgtypes "github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

var encryptedErrorRe = regexp.MustCompile(`encrypted: ([A-Za-z0-9+/]+=*)`)

// NewEnvelope starts an encrypted interaction with a fresh random nonce.
func (k Keeper) NewEnvelope(ctx context.Context, signer types.Signer, chain client.ChainInfo) (*types.Envelope, error) {
	consensusKey, err := k.ConsensusKey(ctx, chain)
	if err != nil {
		return nil, err
	}

	var nonce [types.NonceSize]byte
	if _, err := io.ReadFull(k.rand, nonce[:]); err != nil {
		return nil, err
	}
	return types.NewEnvelope(signer, chain.ChainID, consensusKey, nonce), nil
}

// ExecuteMsg builds the Amino execute message for contract with msg
// encrypted. The returned envelope decrypts the execution result.
func (k Keeper) ExecuteMsg(
	ctx context.Context,
	signer types.Signer,
	chain client.ChainInfo,
	contract, codeHash string,
	msg json.RawMessage,
	funds sdk.Coins,
) (msgtypes.AminoMsg, *types.Envelope, error) {
	codeHash, err := k.CodeHash(ctx, chain, contract, codeHash)
	if err != nil {
		return msgtypes.AminoMsg{}, nil, err
	}

	env, err := k.NewEnvelope(ctx, signer, chain)
	if err != nil {
		return msgtypes.AminoMsg{}, nil, err
	}
	sealed, err := env.Encrypt(codeHash, msg)
	if err != nil {
		return msgtypes.AminoMsg{}, nil, err
	}

	sender, err := sdk.Bech32ifyAddressBytes(chain.Bech32Prefix, signer.Address())
	if err != nil {
		return msgtypes.AminoMsg{}, nil, errorsmod.Wrapf(msgtypes.ErrInvalidAddress, "sender: %s", err)
	}

	sentFunds := make([]any, 0, len(funds))
	for _, c := range funds {
		sentFunds = append(sentFunds, map[string]any{"denom": c.Denom, "amount": c.Amount.String()})
	}

	return msgtypes.AminoMsg{
		Type: msgtypes.AminoMsgExecuteContract,
		Value: map[string]any{
			"sender":     sender,
			"contract":   contract,
			"msg":        base64.StdEncoding.EncodeToString(sealed),
			"sent_funds": sentFunds,
		},
	}, env, nil
}

// QueryContract runs an encrypted smart query and returns the decrypted
// answer. A contract error carrying an encrypted payload is decrypted with the
// query nonce and returned inside ErrContractQuery.
func (k Keeper) QueryContract(
	ctx context.Context,
	signer types.Signer,
	chain client.ChainInfo,
	contract, codeHash string,
	query json.RawMessage,
) ([]byte, error) {
	codeHash, err := k.CodeHash(ctx, chain, contract, codeHash)
	if err != nil {
		return nil, err
	}

	env, err := k.NewEnvelope(ctx, signer, chain)
	if err != nil {
		return nil, err
	}
	sealed, err := env.Encrypt(codeHash, query)
	if err != nil {
		return nil, err
	}

	resp, err := k.client.QueryContract(ctx, contract, sealed)
	env.MarkSent()
	if err != nil {
		return nil, k.recoverQueryError(env, contract, err)
	}

	plaintext, err := env.Decrypt(resp)
	if err != nil {
		return nil, err
	}
	k.logger.Debug("contract query", "chain", chain.ChainID, "contract", contract)
	return plaintext, nil
}

func (k Keeper) recoverQueryError(env *types.Envelope, contract string, queryErr error) error {
	if errorsmod.IsOf(queryErr, client.ErrTimeout, client.ErrTransport) {
		return queryErr
	}

	m := encryptedErrorRe.FindStringSubmatch(queryErr.Error())
	if m == nil {
		return types.ErrContractQuery.Wrapf("%s: %s", contract, queryErr)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil {
		return types.ErrContractQuery.Wrapf("%s: %s", contract, queryErr)
	}
	plaintext, err := env.Decrypt(ciphertext)
	if err != nil {
		k.logger.Error("undecryptable contract error", "contract", contract, "err", err)
		return types.ErrContractQuery.Wrap(contract)
	}
	return types.ErrContractQuery.Wrapf("%s: %s", contract, plaintext)
}
