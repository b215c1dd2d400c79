package client

import (
	sdkerrors "cosmossdk.io/errors"
)

const codespace = "client"

var (
	ErrTimeout         = sdkerrors.Register(codespace, 1100, "remote call timed out")
	ErrTransport       = sdkerrors.Register(codespace, 1101, "remote endpoint unavailable")
	ErrAccountNotFound = sdkerrors.Register(codespace, 1102, "account not found")
	ErrMalformedReply  = sdkerrors.Register(codespace, 1103, "malformed remote reply")
	ErrSubscription    = sdkerrors.Register(codespace, 1104, "event subscription failed")
)
