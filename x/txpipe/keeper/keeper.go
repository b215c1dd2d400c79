package keeper

import (
	"cosmossdk.io/log"

	"github.com/TrustedSmartChain/walletcore/helpers"
	"github.com/TrustedSmartChain/walletcore/x/txpipe/types"
)

type Keeper struct {
	logger log.Logger

	converter types.MessageConverter
	client    types.ChainClient
	recorder  types.PendingRecorder

	// signing is serialized per address and chain
	locks *helpers.KeyedMutex
}

// NewKeeper creates a new Keeper instance. recorder may be nil, in which case
// broadcast transactions are not tracked as pending incidents.
func NewKeeper(
	converter types.MessageConverter,
	client types.ChainClient,
	recorder types.PendingRecorder,
	logger log.Logger,
) Keeper {
	logger = logger.With(log.ModuleKey, "x/"+types.ModuleName)

	return Keeper{
		logger:    logger,
		converter: converter,
		client:    client,
		recorder:  recorder,
		locks:     helpers.NewKeyedMutex(),
	}
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}
