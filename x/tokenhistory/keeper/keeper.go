package keeper

import (
	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/TrustedSmartChain/walletcore/helpers"
	"github.com/TrustedSmartChain/walletcore/x/tokenhistory/types"
)

type Keeper struct {
	db     dbm.DB
	logger log.Logger

	computeKeeper   types.ComputeKeeper
	incidentsKeeper types.IncidentsKeeper
	notifier        types.Notifier

	scopeLocks *helpers.KeyedMutex
}

// NewKeeper creates a new Keeper instance. notifier may be nil.
func NewKeeper(
	db dbm.DB,
	computeKeeper types.ComputeKeeper,
	incidentsKeeper types.IncidentsKeeper,
	notifier types.Notifier,
	logger log.Logger,
) Keeper {
	return Keeper{
		db:              db,
		logger:          logger.With(log.ModuleKey, "x/"+types.ModuleName),
		computeKeeper:   computeKeeper,
		incidentsKeeper: incidentsKeeper,
		notifier:        notifier,
		scopeLocks:      helpers.NewKeyedMutex(),
	}
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}
