package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"

	"github.com/TrustedSmartChain/walletcore/x/msgs/types"
)

// Keeper converts messages between their Amino and Proto forms.
type Keeper struct {
	registry *types.Registry
	logger   log.Logger
}

// NewKeeper creates a new Keeper instance
func NewKeeper(registry *types.Registry, logger log.Logger) Keeper {
	if registry == nil {
		registry = types.NewDefaultRegistry()
	}
	return Keeper{
		registry: registry,
		logger:   logger.With(log.ModuleKey, "x/"+types.ModuleName),
	}
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}

func (k Keeper) Registry() *types.Registry {
	return k.registry
}

// AminoToProto converts an Amino message into canonical form. The account
// prefix found on its addresses is kept for re-encoding string address fields.
func (k Keeper) AminoToProto(msg types.AminoMsg) (*types.CanonicalMessage, error) {
	desc, err := k.registry.ByAminoType(msg.Type)
	if err != nil {
		return nil, err
	}

	data, prefix, err := desc.FromAmino(msg.Value)
	if err != nil {
		return nil, err
	}

	k.logger.Debug("amino to proto", "amino_type", msg.Type, "type_url", desc.TypeURL)
	return types.NewCanonicalMessage(desc, data, prefix), nil
}

// AminoToProtoAll converts every message or none.
func (k Keeper) AminoToProtoAll(msgs []types.AminoMsg) ([]*types.CanonicalMessage, error) {
	out := make([]*types.CanonicalMessage, 0, len(msgs))
	for i, msg := range msgs {
		cm, err := k.AminoToProto(msg)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "message %d", i)
		}
		out = append(out, cm)
	}
	return out, nil
}

// ProtoToAmino converts a packed proto message into its Amino form. Proto
// bytes carry no chain prefix, so prefix is mandatory.
func (k Keeper) ProtoToAmino(msg *codectypes.Any, prefix string) (types.AminoMsg, error) {
	if prefix == "" {
		return types.AminoMsg{}, types.ErrMissingPrefix
	}

	cm, err := k.Decode(msg)
	if err != nil {
		return types.AminoMsg{}, err
	}

	aminoMsg, err := cm.Descriptor().ToAmino(cm.Data, prefix)
	if err != nil {
		return types.AminoMsg{}, err
	}

	k.logger.Debug("proto to amino", "type_url", msg.TypeUrl, "amino_type", aminoMsg.Type)
	return aminoMsg, nil
}

// Decode parses a packed proto message into canonical form.
func (k Keeper) Decode(msg *codectypes.Any) (*types.CanonicalMessage, error) {
	if msg == nil {
		return nil, types.ErrUnsupportedMessage.Wrap("nil message")
	}

	desc, err := k.registry.ByTypeURL(msg.TypeUrl)
	if err != nil {
		return nil, err
	}

	data, err := desc.Decode(msg.Value)
	if err != nil {
		return nil, err
	}
	return types.NewCanonicalMessage(desc, data, ""), nil
}
