package types

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	ErrInvalidKind           = sdkerrors.Register(ModuleName, 1100, "invalid history kind")
	ErrMalformedPage         = sdkerrors.Register(ModuleName, 1101, "malformed history page")
	ErrInvalidRefreshRequest = sdkerrors.Register(ModuleName, 1102, "invalid refresh request")
	ErrCorruptCache          = sdkerrors.Register(ModuleName, 1103, "corrupt history cache")
)
