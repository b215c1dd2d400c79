package types

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	ErrUnsupportedMessage  = sdkerrors.Register(ModuleName, 1100, "unsupported message type")
	ErrInvalidAddress      = sdkerrors.Register(ModuleName, 1101, "invalid address")
	ErrInvalidField        = sdkerrors.Register(ModuleName, 1102, "invalid message field")
	ErrDuplicateDescriptor = sdkerrors.Register(ModuleName, 1103, "duplicate message descriptor")
	ErrMissingPrefix       = sdkerrors.Register(ModuleName, 1104, "address prefix required")
	ErrMalformedProto      = sdkerrors.Register(ModuleName, 1105, "malformed proto encoding")
)
