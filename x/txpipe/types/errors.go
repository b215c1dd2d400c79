package types

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	ErrInvalidBroadcastMode = sdkerrors.Register(ModuleName, 1100, "invalid broadcast mode")
	ErrChainRejected        = sdkerrors.Register(ModuleName, 1101, "transaction rejected by chain")
	ErrMultipleSigners      = sdkerrors.Register(ModuleName, 1102, "messages require a signer other than the account")
	ErrWrongKeyType         = sdkerrors.Register(ModuleName, 1103, "unsupported key type")
	ErrInvalidFee           = sdkerrors.Register(ModuleName, 1104, "invalid fee")
	ErrNoMessages           = sdkerrors.Register(ModuleName, 1105, "transaction has no messages")
	ErrInvalidGasLimit      = sdkerrors.Register(ModuleName, 1106, "invalid gas limit")
	ErrInvalidSignMode      = sdkerrors.Register(ModuleName, 1107, "invalid sign mode")
)
