package keeper

import (
	"sync"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/TrustedSmartChain/walletcore/helpers"
	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

type Keeper struct {
	db     dbm.DB
	logger log.Logger

	client    types.ChainClient
	converter types.MessageConverter
	hooks     types.IncidentHooks

	syncLocks *helpers.KeyedMutex
	// guards read-modify-write of incident records and cursors
	storeMu *sync.Mutex
}

// NewKeeper creates a new Keeper instance
func NewKeeper(
	db dbm.DB,
	client types.ChainClient,
	converter types.MessageConverter,
	logger log.Logger,
) *Keeper {
	logger = logger.With(log.ModuleKey, "x/"+types.ModuleName)

	return &Keeper{
		db:        db,
		logger:    logger,
		client:    client,
		converter: converter,
		syncLocks: helpers.NewKeyedMutex(),
		storeMu:   &sync.Mutex{},
	}
}

// SetHooks sets the incident hooks. It may only be called once.
func (k *Keeper) SetHooks(h types.IncidentHooks) *Keeper {
	if k.hooks != nil {
		panic("cannot set incident hooks twice")
	}
	k.hooks = h
	return k
}

func (k *Keeper) Logger() log.Logger {
	return k.logger
}
