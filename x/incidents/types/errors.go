package types

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	ErrInvalidTip         = sdkerrors.Register(ModuleName, 1100, "invalid chain tip height")
	ErrPageFailed         = sdkerrors.Register(ModuleName, 1101, "transaction page request failed")
	ErrIncidentNotFound   = sdkerrors.Register(ModuleName, 1102, "incident not found")
	ErrInvalidIncident    = sdkerrors.Register(ModuleName, 1103, "invalid incident")
	ErrInvalidSyncRequest = sdkerrors.Register(ModuleName, 1104, "invalid sync request")
)
