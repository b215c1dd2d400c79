package types

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	ErrMissingConsensusKey = sdkerrors.Register(ModuleName, 1100, "missing consensus io key")
	ErrMissingUtilityKey   = sdkerrors.Register(ModuleName, 1101, "missing utility key")
	ErrInvalidCodeHash     = sdkerrors.Register(ModuleName, 1102, "invalid code hash")
	ErrDecrypt             = sdkerrors.Register(ModuleName, 1103, "decryption failed")
	ErrNonceConsumed       = sdkerrors.Register(ModuleName, 1104, "envelope nonce already consumed")
	ErrContractQuery       = sdkerrors.Register(ModuleName, 1105, "contract query failed")
	ErrInvalidViewingKey   = sdkerrors.Register(ModuleName, 1106, "invalid viewing key")
	ErrMissingViewingKey   = sdkerrors.Register(ModuleName, 1107, "no active viewing key")
	ErrInvalidEnvelope     = sdkerrors.Register(ModuleName, 1108, "invalid envelope")
	ErrSecretNotFound      = sdkerrors.Register(ModuleName, 1109, "secret not found")
)
